package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/rbac"
)

// RequirePermission devuelve un middleware Fiber que consulta el guard RBAC para module.action
// antes de ejecutar el handler. Debe usarse DESPUÉS de Authenticate (necesita LocalPrincipal).
//
// Comportamiento:
//   - 401 Unauthorized → no hay principal en el contexto.
//   - 403 Forbidden    → principal autenticado sin el permiso (code = motivo de la decisión).
//
// En ambos casos el handler no se ejecuta y no hay mutación.
func (g *Guard) RequirePermission(module entity.Module, action entity.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := GetPrincipal(c)
		d := rbac.Authorize(principal, module, action)
		if g.metrics != nil {
			g.metrics.ObserveDecision(string(module), string(action), string(d.Reason))
		}
		if d.Allowed {
			return c.Next()
		}

		g.log.Warn().
			Str("user_id", GetUserID(c)).
			Str("role", principal.RoleName()).
			Str("module", string(module)).
			Str("action", string(action)).
			Str("reason", string(d.Reason)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("acceso denegado")

		return writeDecision(c, d)
	}
}

func writeDecision(c *fiber.Ctx, d rbac.Decision) error {
	status := fiber.StatusForbidden
	msg := "sin permiso " + string(d.Module) + "." + string(d.Action)
	switch d.Reason {
	case rbac.ReasonNotAuthenticated:
		status = fiber.StatusUnauthorized
		msg = "se requiere autenticación"
	case rbac.ReasonAccountDeactivated:
		msg = "cuenta desactivada"
	case rbac.ReasonRoleInactive:
		msg = "el rol asignado está inactivo"
	case rbac.ReasonUnknownPermission:
		msg = "permiso desconocido " + string(d.Module) + "." + string(d.Action)
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: string(d.Reason), Message: msg})
}
