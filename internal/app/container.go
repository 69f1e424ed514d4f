// Package app arma el grafo de dependencias compartido por los binarios (api y seed_roles).
package app

import (
	"context"
	"fmt"

	"github.com/jhoicas/tienda-admin-api/internal/application/auth"
	"github.com/jhoicas/tienda-admin-api/internal/application/usecase"
	"github.com/jhoicas/tienda-admin-api/internal/domain/lockout"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
	"github.com/jhoicas/tienda-admin-api/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-admin-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-admin-api/pkg/config"
	"github.com/jhoicas/tienda-admin-api/pkg/jwt"
	"github.com/jhoicas/tienda-admin-api/pkg/logger"
)

// Container casos de uso listos para usar y el cierre de los recursos de almacenamiento.
type Container struct {
	AuthUC     *auth.AuthUseCase
	RoleUC     *usecase.RoleUseCase
	UserUC     *usecase.UserUseCase
	SettingsUC *usecase.SettingsUseCase
	AuditUC    *usecase.AuditUseCase

	closeFn func()
}

// Close libera el pool de conexiones (no-op en memoria).
func (c *Container) Close() {
	if c.closeFn != nil {
		c.closeFn()
	}
}

type storage struct {
	users    repository.UserRepository
	roles    repository.RoleRepository
	settings repository.SettingRepository
	audit    repository.AuditRepository
	tx       auth.TxRunner
	closeFn  func()
}

// Build conecta el almacenamiento según DB_DRIVER, aplica migraciones si DB_AUTO_MIGRATE y construye los casos de uso.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	tokens, err := jwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		st.closeFn()
		return nil, fmt.Errorf("jwt: %w", err)
	}

	auditUC := usecase.NewAuditUseCase(st.audit, log.Named("audit"))
	policy := lockout.Policy{MaxAttempts: cfg.Auth.MaxLoginAttempts, Window: cfg.Auth.LockWindow()}
	authUC := auth.NewAuthUseCase(st.users, st.roles, st.tx, tokens, policy,
		auth.WithLogger(log.Named("auth")),
		auth.WithAudit(auditUC),
	)

	return &Container{
		AuthUC:     authUC,
		RoleUC:     usecase.NewRoleUseCase(st.roles, auditUC),
		UserUC:     usecase.NewUserUseCase(st.users, st.roles, st.tx, auditUC),
		SettingsUC: usecase.NewSettingsUseCase(st.settings, auditUC),
		AuditUC:    auditUC,
		closeFn:    st.closeFn,
	}, nil
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.DB.Driver == "memory" {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			users:    s.Users(),
			roles:    s.Roles(),
			settings: s.Settings(),
			audit:    s.Audit(),
			tx:       s,
			closeFn:  func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migraciones: %w", err)
		}
		for _, name := range applied {
			log.Info().Str("migration", name).Msg("migración aplicada")
		}
	}
	return &storage{
		users:    postgres.NewUserRepository(pool),
		roles:    postgres.NewRoleRepository(pool),
		settings: postgres.NewSettingRepository(pool),
		audit:    postgres.NewAuditRepository(pool),
		tx:       postgres.NewTxRunner(pool),
		closeFn:  pool.Close,
	}, nil
}
