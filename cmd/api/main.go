package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	_ "github.com/jhoicas/tienda-admin-api/docs"
	"github.com/jhoicas/tienda-admin-api/internal/app"
	httpRouter "github.com/jhoicas/tienda-admin-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-admin-api/pkg/config"
	"github.com/jhoicas/tienda-admin-api/pkg/logger"
	"github.com/jhoicas/tienda-admin-api/pkg/metrics"
)

// @title                       Tienda Admin API
// @version                     1.0
// @description                 Control de acceso por roles del panel de administración de la tienda.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	container, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización")
	}
	defer container.Close()

	m := metrics.New("tienda_admin")

	server := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	server.Use(recover.New())
	server.Use(requestid.New())
	server.Use(httpRouter.RequestObserver(log.Named("http"), m))

	// Swagger UI: http://localhost:<port>/docs (solo si existe el swagger.json generado)
	if cfg.App.DocsPath != "" {
		if _, err := os.Stat(cfg.App.DocsPath); err == nil {
			server.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.App.DocsPath,
				Path:     "docs",
				Title:    "Tienda Admin API",
			}))
		} else {
			log.Warn().Str("path", cfg.App.DocsPath).Msg("swagger.json no encontrado, /docs desactivado")
		}
	}

	server.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	server.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpRouter.Router(server, httpRouter.RouterDeps{
		AuthUC:     container.AuthUC,
		RoleUC:     container.RoleUC,
		UserUC:     container.UserUC,
		SettingsUC: container.SettingsUC,
		AuditUC:    container.AuditUC,
		Cookie:     httpRouter.SessionCookie{Name: cfg.JWT.CookieName, Secure: cfg.JWT.CookieSecure},
		LoginLimit: httpRouter.LoginLimit{
			Max:    cfg.RateLimit.LoginMax,
			Window: time.Duration(cfg.RateLimit.LoginWindow) * time.Second,
		},
		Logger:  log.Named("authz"),
		Metrics: m,
	})

	go func() {
		if err := server.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
