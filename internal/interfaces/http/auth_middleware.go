package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/rbac"
	"github.com/jhoicas/tienda-admin-api/pkg/logger"
	"github.com/jhoicas/tienda-admin-api/pkg/metrics"
)

// LocalPrincipal clave de c.Locals con el *rbac.Principal resuelto.
const LocalPrincipal = "principal"

// principalResolver contrato mínimo del middleware; lo implementa *auth.AuthUseCase.
type principalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (*rbac.Principal, error)
}

// Guard agrupa los middlewares de autenticación y autorización.
type Guard struct {
	resolver   principalResolver
	cookieName string
	log        *logger.Logger
	metrics    *metrics.Metrics
}

// NewGuard construye el guard. log y m pueden ser nil.
func NewGuard(resolver principalResolver, cookieName string, log *logger.Logger, m *metrics.Metrics) *Guard {
	if log == nil {
		log = logger.Nop()
	}
	return &Guard{resolver: resolver, cookieName: cookieName, log: log, metrics: m}
}

// Authenticate extrae el token (cookie primero, luego Authorization: Bearer), resuelve el principal
// contra la BD en cada petición y lo deja en c.Locals(LocalPrincipal).
//
// Comportamiento:
//   - 401 → sin token, token inválido/expirado, usuario o rol inexistente, cuenta desactivada.
//   - 503 → fallo de infraestructura al resolver (no se confunde con una denegación).
func (g *Guard) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := extractToken(c, g.cookieName)
		if !ok {
			g.observeFailure("missing_token")
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "se requiere cookie de sesión o Authorization: Bearer <token>"})
		}
		principal, err := g.resolver.ResolvePrincipal(c.UserContext(), token)
		if err != nil {
			code, status, msg := resolveErrorInfo(err)
			g.observeFailure(strings.ToLower(code))
			if status == fiber.StatusServiceUnavailable {
				g.log.Error().Err(err).Str("path", c.Path()).Msg("fallo resolviendo principal")
			} else {
				g.log.Debug().Err(err).Str("path", c.Path()).Msg("principal rechazado")
			}
			return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
		}
		c.Locals(LocalPrincipal, principal)
		return c.Next()
	}
}

func (g *Guard) observeFailure(reason string) {
	if g.metrics != nil {
		g.metrics.ObservePrincipalFailure(reason)
	}
}

// extractToken busca el token en la cookie y, si no está, en el header Authorization con prefijo Bearer.
func extractToken(c *fiber.Ctx, cookieName string) (string, bool) {
	if cookieName != "" {
		if v := strings.TrimSpace(c.Cookies(cookieName)); v != "" {
			return v, true
		}
	}
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func resolveErrorInfo(err error) (code string, status int, msg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredential):
		return "INVALID_TOKEN", fiber.StatusUnauthorized, "token inválido o expirado"
	case errors.Is(err, domain.ErrPrincipalNotFound):
		return "PRINCIPAL_NOT_FOUND", fiber.StatusUnauthorized, "el usuario de la sesión ya no existe"
	case errors.Is(err, domain.ErrRoleNotFound):
		return "ROLE_NOT_FOUND", fiber.StatusUnauthorized, "el rol del usuario no existe"
	case errors.Is(err, domain.ErrAccountDeactivated):
		return "ACCOUNT_DEACTIVATED", fiber.StatusUnauthorized, "cuenta desactivada"
	default:
		return "AUTH_UNAVAILABLE", fiber.StatusServiceUnavailable, "no se pudo verificar la sesión, intente más tarde"
	}
}

// GetPrincipal devuelve el principal del contexto (después de Authenticate) o nil.
func GetPrincipal(c *fiber.Ctx) *rbac.Principal {
	p, _ := c.Locals(LocalPrincipal).(*rbac.Principal)
	return p
}

// GetUserID devuelve el id del principal o "".
func GetUserID(c *fiber.Ctx) string {
	if p := GetPrincipal(c); p != nil {
		return p.UserID
	}
	return ""
}

// GetRole devuelve el nombre del rol vivo del principal o "".
func GetRole(c *fiber.Ctx) string {
	return GetPrincipal(c).RoleName()
}
