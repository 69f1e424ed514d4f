package dto

import "github.com/jhoicas/tienda-admin-api/internal/domain/entity"

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token firmado, usuario y la matriz de permisos vigente del rol.
type LoginResponse struct {
	Token       string                  `json:"token"`
	User        UserResponse            `json:"user"`
	Permissions entity.PermissionMatrix `json:"permissions"`
}

// BootstrapRequest alta del primer super administrador.
type BootstrapRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// BootstrapStatusResponse indica si todavía falta el super administrador inicial.
type BootstrapStatusResponse struct {
	Required bool `json:"required"`
}

// MeResponse perfil del principal resuelto en la petición actual.
type MeResponse struct {
	User        UserResponse            `json:"user"`
	RoleActive  bool                    `json:"role_active"`
	Permissions entity.PermissionMatrix `json:"permissions"`
}
