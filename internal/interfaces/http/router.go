package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jhoicas/tienda-admin-api/internal/application/auth"
	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/application/usecase"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/pkg/logger"
	"github.com/jhoicas/tienda-admin-api/pkg/metrics"
)

// LoginLimit límite de peticiones a login por IP. Max <= 0 lo desactiva.
type LoginLimit struct {
	Max    int
	Window time.Duration
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	RoleUC     *usecase.RoleUseCase
	UserUC     *usecase.UserUseCase
	SettingsUC *usecase.SettingsUseCase
	AuditUC    *usecase.AuditUseCase
	Cookie     SessionCookie
	LoginLimit LoginLimit
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	guard := NewGuard(deps.AuthUC, deps.Cookie.Name, deps.Logger, deps.Metrics)
	authn := guard.Authenticate()
	can := guard.RequirePermission

	api := app.Group("/api")

	// Auth (público salvo /me)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.Cookie, deps.Metrics)
	authGroup.Post("/login", loginLimiter(deps.LoginLimit), authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/bootstrap", authHandler.BootstrapStatus)
	authGroup.Post("/bootstrap", authHandler.Bootstrap)
	authGroup.Get("/me", authn, authHandler.Me)

	// Roles
	roles := api.Group("/roles", authn)
	roleHandler := NewRoleHandler(deps.RoleUC)
	roles.Get("/", can(entity.ModuleUser, entity.ActionView), roleHandler.List)
	roles.Get("/schema", can(entity.ModuleUser, entity.ActionView), roleHandler.Schema)
	roles.Post("/", can(entity.ModuleUser, entity.ActionCreate), roleHandler.Create)
	roles.Get("/:id", can(entity.ModuleUser, entity.ActionView), roleHandler.GetByID)
	roles.Put("/:id/permissions", can(entity.ModuleUser, entity.ActionChangeRole), roleHandler.ReplacePermissions)
	roles.Patch("/:id/status", can(entity.ModuleUser, entity.ActionChangeRole), roleHandler.SetStatus)

	// Users
	users := api.Group("/users", authn)
	userHandler := NewUserHandler(deps.UserUC, deps.AuthUC)
	users.Get("/", can(entity.ModuleUser, entity.ActionView), userHandler.List)
	users.Post("/", can(entity.ModuleUser, entity.ActionCreate), userHandler.Create)
	users.Get("/:id", can(entity.ModuleUser, entity.ActionView), userHandler.GetByID)
	users.Put("/:id", can(entity.ModuleUser, entity.ActionEdit), userHandler.Update)
	users.Put("/:id/role", can(entity.ModuleUser, entity.ActionChangeRole), userHandler.ChangeRole)
	users.Post("/:id/unlock", can(entity.ModuleUser, entity.ActionEdit), userHandler.Unlock)
	users.Delete("/:id", can(entity.ModuleUser, entity.ActionDelete), userHandler.Delete)

	// Settings
	settings := api.Group("/settings", authn)
	settingsHandler := NewSettingsHandler(deps.SettingsUC)
	settings.Get("/", can(entity.ModuleSettings, entity.ActionView), settingsHandler.List)
	settings.Put("/", can(entity.ModuleSettings, entity.ActionEdit), settingsHandler.Update)

	// Audit
	audit := api.Group("/audit", authn)
	auditHandler := NewAuditHandler(deps.AuditUC)
	audit.Get("/", can(entity.ModuleSettings, entity.ActionView), auditHandler.List)
}

func loginLimiter(cfg LoginLimit) fiber.Handler {
	if cfg.Max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "TOO_MANY_REQUESTS", Message: "demasiados intentos, espere un momento"})
		},
	})
}
