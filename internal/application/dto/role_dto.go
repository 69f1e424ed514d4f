package dto

import (
	"time"

	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
)

// CreateRoleRequest entrada para crear un rol. Las acciones omitidas en permissions quedan en false.
type CreateRoleRequest struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Permissions entity.PermissionMatrix `json:"permissions"`
	IsActive    *bool                   `json:"is_active,omitempty"`
}

// ReplacePermissionsRequest matriz nueva completa; lo omitido queda en false. permissions es obligatorio.
type ReplacePermissionsRequest struct {
	Permissions *entity.PermissionMatrix `json:"permissions"`
}

// RoleStatusRequest activa o desactiva un rol.
type RoleStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

// RoleResponse salida de un rol.
type RoleResponse struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Permissions entity.PermissionMatrix `json:"permissions"`
	IsActive    bool                    `json:"is_active"`
	CreatedBy   *string                 `json:"created_by,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// RoleListResponse listado de roles ordenado por nombre.
type RoleListResponse struct {
	Items []RoleResponse `json:"items"`
}

// NewRoleResponse convierte la entidad.
func NewRoleResponse(r *entity.Role) *RoleResponse {
	if r == nil {
		return nil
	}
	return &RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
		IsActive:    r.IsActive,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
