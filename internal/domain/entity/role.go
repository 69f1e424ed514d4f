package entity

import "time"

// Nombres de rol válidos (conjunto cerrado).
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSupport    = "support"
	RoleViewer     = "viewer"
)

// RoleNames devuelve el conjunto cerrado de nombres de rol en orden alfabético.
func RoleNames() []string {
	return []string{RoleAdmin, RoleManager, RoleSuperAdmin, RoleSupport, RoleViewer}
}

// IsValidRoleName informa si name pertenece al conjunto cerrado de roles.
func IsValidRoleName(name string) bool {
	switch name {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleSupport, RoleViewer:
		return true
	}
	return false
}

// Role rol con su matriz de permisos.
type Role struct {
	ID          string
	Name        string
	Description string
	Permissions PermissionMatrix
	IsActive    bool
	CreatedBy   *string // referencia débil al usuario creador
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsSuperAdmin informa si es el rol raíz, cuya matriz es inmutable.
func (r *Role) IsSuperAdmin() bool {
	return r != nil && r.Name == RoleSuperAdmin
}

// PresetPermissions matrices sugeridas para los roles por defecto (usadas por cmd/seed_roles).
func PresetPermissions(name string) PermissionMatrix {
	switch name {
	case RoleSuperAdmin, RoleAdmin:
		return FullPermissions()
	case RoleManager:
		return PermissionMatrix{
			User:      UserPermissions{View: true},
			Category:  CRUDPermissions{View: true, Create: true, Edit: true, Delete: true},
			Product:   CRUDPermissions{View: true, Create: true, Edit: true, Delete: true},
			Order:     OrderPermissions{View: true, Create: true, Edit: true, Delete: true, UpdateStatus: true},
			Inventory: CRUDPermissions{View: true, Create: true, Edit: true, Delete: true},
			Analytics: AnalyticsPermissions{View: true, Export: true},
			Settings:  SettingsPermissions{View: true},
		}
	case RoleSupport:
		return PermissionMatrix{
			User:      UserPermissions{View: true},
			Category:  CRUDPermissions{View: true},
			Product:   CRUDPermissions{View: true},
			Order:     OrderPermissions{View: true, Edit: true, UpdateStatus: true},
			Inventory: CRUDPermissions{View: true},
		}
	case RoleViewer:
		var m PermissionMatrix
		for _, ms := range permissionSchema {
			_ = m.Set(ms.Module, ActionView, true)
		}
		return m
	}
	return PermissionMatrix{}
}
