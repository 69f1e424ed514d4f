// seed_roles crea el super administrador (si todavía no existe) y los roles predefinidos
// admin, manager, support y viewer con su matriz de permisos por defecto.
//
// Uso: go run ./cmd/seed_roles -email admin@tienda.com -password '...' [-name 'Administrador']
// También acepta SEED_ADMIN_EMAIL, SEED_ADMIN_PASSWORD y SEED_ADMIN_NAME.
// Si el super admin ya existe, inicia sesión con esas credenciales y actúa en su nombre.
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/jhoicas/tienda-admin-api/internal/app"
	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/pkg/config"
	"github.com/jhoicas/tienda-admin-api/pkg/logger"
)

var descriptions = map[string]string{
	entity.RoleAdmin:   "Administración completa de la tienda",
	entity.RoleManager: "Catálogo, pedidos e inventario; solo lectura de usuarios y configuración",
	entity.RoleSupport: "Atención de pedidos",
	entity.RoleViewer:  "Solo lectura",
}

func main() {
	email := flag.String("email", os.Getenv("SEED_ADMIN_EMAIL"), "email del super administrador")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "password del super administrador")
	name := flag.String("name", os.Getenv("SEED_ADMIN_NAME"), "nombre del super administrador")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if *email == "" || *password == "" {
		log.Fatal().Msg("email y password son requeridos (-email/-password o SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD)")
	}

	ctx := context.Background()
	container, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización")
	}
	defer container.Close()

	status, err := container.AuthUC.BootstrapStatus(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("estado de bootstrap")
	}

	var session *dto.LoginResponse
	if status.Required {
		session, err = container.AuthUC.BootstrapSuperAdmin(ctx, dto.BootstrapRequest{Email: *email, Password: *password, Name: *name})
		if err != nil {
			log.Fatal().Err(err).Msg("crear super administrador")
		}
		log.Info().Str("email", session.User.Email).Msg("super administrador creado")
	} else {
		session, err = container.AuthUC.Login(ctx, dto.LoginRequest{Email: *email, Password: *password})
		if err != nil {
			log.Fatal().Err(err).Msg("login del super administrador")
		}
	}

	principal, err := container.AuthUC.ResolvePrincipal(ctx, session.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("resolver principal")
	}

	created := 0
	for _, roleName := range []string{entity.RoleAdmin, entity.RoleManager, entity.RoleSupport, entity.RoleViewer} {
		_, err := container.RoleUC.Create(ctx, principal, dto.CreateRoleRequest{
			Name:        roleName,
			Description: descriptions[roleName],
			Permissions: entity.PresetPermissions(roleName),
		})
		switch {
		case err == nil:
			created++
			log.Info().Str("role", roleName).Msg("rol creado")
		case errors.Is(err, domain.ErrDuplicateRole):
			log.Info().Str("role", roleName).Msg("rol ya existe, se omite")
		default:
			log.Fatal().Err(err).Str("role", roleName).Msg("crear rol")
		}
	}
	log.Info().Int("created", created).Msg("seed de roles terminado")
}
