package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tienda-admin-api/internal/application/auth"
	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/pkg/metrics"
)

// SessionCookie parámetros de la cookie de sesión.
type SessionCookie struct {
	Name   string
	Secure bool
}

// AuthHandler maneja login, logout, bootstrap y perfil.
type AuthHandler struct {
	uc      *auth.AuthUseCase
	cookie  SessionCookie
	metrics *metrics.Metrics
}

// NewAuthHandler construye el handler de auth. m puede ser nil.
func NewAuthHandler(uc *auth.AuthUseCase, cookie SessionCookie, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{uc: uc, cookie: cookie, metrics: m}
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  Devuelve el token y además lo deja en una cookie http-only. Tras varios intentos fallidos la cuenta se bloquea.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      423   {object}  dto.ErrorResponse
// @Failure      429   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	if in.Email == "" || in.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "email y password son requeridos"})
	}
	out, err := h.uc.Login(c.UserContext(), in)
	h.observeLogin(err)
	if err != nil {
		return writeError(c, err)
	}
	h.setSession(c, out.Token, time.Now().Add(h.uc.TokenTTL()))
	return c.JSON(out)
}

// Logout godoc
// @Summary      Cerrar sesión
// @Description  Borra la cookie de sesión. El token sigue siendo válido hasta que expire si el cliente lo conserva.
// @Tags         auth
// @Success      204
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.setSession(c, "", time.Unix(0, 0))
	return c.SendStatus(fiber.StatusNoContent)
}

// Me godoc
// @Summary      Perfil del usuario autenticado
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.MeResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	out, err := h.uc.Me(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// BootstrapStatus godoc
// @Summary      Indica si falta crear el super administrador
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.BootstrapStatusResponse
// @Router       /api/auth/bootstrap [get]
func (h *AuthHandler) BootstrapStatus(c *fiber.Ctx) error {
	out, err := h.uc.BootstrapStatus(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Bootstrap godoc
// @Summary      Crear el super administrador inicial
// @Description  Solo funciona una vez: cuando ya existe un super_admin responde 409.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BootstrapRequest  true  "email, password, name"
// @Success      201   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/bootstrap [post]
func (h *AuthHandler) Bootstrap(c *fiber.Ctx) error {
	var in dto.BootstrapRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.BootstrapSuperAdmin(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	h.setSession(c, out.Token, time.Now().Add(h.uc.TokenTTL()))
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *AuthHandler) setSession(c *fiber.Ctx, token string, expires time.Time) {
	if h.cookie.Name == "" {
		return
	}
	ck := &fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if token == "" {
		ck.MaxAge = -1
	}
	c.Cookie(ck)
}

func (h *AuthHandler) observeLogin(err error) {
	if h.metrics == nil {
		return
	}
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrIncorrectCredentials):
		outcome = "invalid_credentials"
	case errors.Is(err, domain.ErrAccountLocked):
		outcome = "locked"
	case errors.Is(err, domain.ErrAccountDeactivated):
		outcome = "deactivated"
	default:
		outcome = "error"
	}
	h.metrics.ObserveLogin(outcome)
}
