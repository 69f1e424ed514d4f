package rbac

import (
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
)

// Principal identidad resuelta para la petición actual: usuario, rol vivo y sus permisos.
type Principal struct {
	UserID   string
	Email    string
	Name     string
	IsActive bool
	Role     *entity.Role
}

// Permissions devuelve la matriz del rol, o una matriz vacía si no hay rol.
func (p *Principal) Permissions() entity.PermissionMatrix {
	if p == nil || p.Role == nil {
		return entity.PermissionMatrix{}
	}
	return p.Role.Permissions
}

// RoleName nombre del rol o "" si no hay.
func (p *Principal) RoleName() string {
	if p == nil || p.Role == nil {
		return ""
	}
	return p.Role.Name
}

// Reason motivo tipado de una decisión, pensado para logs y auditoría.
type Reason string

const (
	ReasonAllowed                Reason = "ALLOWED"
	ReasonNotAuthenticated       Reason = "NOT_AUTHENTICATED"
	ReasonAccountDeactivated     Reason = "ACCOUNT_DEACTIVATED"
	ReasonRoleInactive           Reason = "ROLE_INACTIVE"
	ReasonUnknownPermission      Reason = "UNKNOWN_PERMISSION"
	ReasonInsufficientPermission Reason = "INSUFFICIENT_PERMISSION"
)

// Decision resultado de Authorize.
type Decision struct {
	Allowed bool
	Reason  Reason
	Module  entity.Module
	Action  entity.Action
}

// Err traduce una denegación al error de dominio equivalente; nil si se permite.
func (d Decision) Err() error {
	switch d.Reason {
	case ReasonAllowed:
		return nil
	case ReasonNotAuthenticated:
		return domain.ErrNotAuthenticated
	case ReasonAccountDeactivated:
		return domain.ErrAccountDeactivated
	case ReasonRoleInactive:
		return domain.ErrRoleInactive
	case ReasonUnknownPermission:
		return domain.ErrUnknownPermission
	default:
		return domain.ErrInsufficientPermission
	}
}

// Authorize decide si principal puede ejecutar action sobre module.
// Es una función pura: no muta estado y dos llamadas iguales devuelven la misma decisión.
// Un par módulo/acción fuera del esquema se deniega siempre.
func Authorize(principal *Principal, module entity.Module, action entity.Action) Decision {
	d := Decision{Module: module, Action: action}
	switch {
	case principal == nil || principal.Role == nil:
		d.Reason = ReasonNotAuthenticated
		return d
	case !principal.IsActive:
		d.Reason = ReasonAccountDeactivated
		return d
	case !principal.Role.IsActive:
		d.Reason = ReasonRoleInactive
		return d
	}

	allowed, known := principal.Role.Permissions.Lookup(module, action)
	switch {
	case !known:
		d.Reason = ReasonUnknownPermission
	case !allowed:
		d.Reason = ReasonInsufficientPermission
	default:
		d.Allowed = true
		d.Reason = ReasonAllowed
	}
	return d
}

// Require atajo para casos de uso: devuelve el error de la denegación o nil.
func Require(principal *Principal, module entity.Module, action entity.Action) error {
	return Authorize(principal, module, action).Err()
}
