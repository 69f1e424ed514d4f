package dto

import (
	"time"

	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
)

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"` // nombre del rol: admin, manager, support, viewer, super_admin
}

// UpdateUserRequest cambios parciales de perfil y estado.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ChangeRoleRequest reasignación de rol por nombre.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Role          string     `json:"role"`
	RoleID        string     `json:"role_id"`
	IsActive      bool       `json:"is_active"`
	LoginAttempts int        `json:"login_attempts"`
	LockUntil     *time.Time `json:"lock_until,omitempty"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UserListResponse listado paginado de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// NewUserResponse convierte la entidad; roleName puede venir vacío si el rol no se resolvió.
func NewUserResponse(u *entity.User, roleName string) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          roleName,
		RoleID:        u.RoleID,
		IsActive:      u.IsActive,
		LoginAttempts: u.LoginAttempts,
		LockUntil:     u.LockUntil,
		LastLogin:     u.LastLogin,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
