package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
)

var _ repository.SettingRepository = (*SettingRepo)(nil)

// SettingRepo configuración de tienda en la tabla store_settings.
type SettingRepo struct {
	pool *pgxpool.Pool
}

// NewSettingRepository construye el adaptador.
func NewSettingRepository(pool *pgxpool.Pool) *SettingRepo {
	return &SettingRepo{pool: pool}
}

// List devuelve todas las claves ordenadas.
func (r *SettingRepo) List(ctx context.Context) ([]*entity.Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value, updated_by, updated_at FROM store_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()
	var list []*entity.Setting
	for rows.Next() {
		var s entity.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedBy, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// Upsert escribe todas las claves dentro de una transacción.
func (r *SettingRepo) Upsert(ctx context.Context, settings []*entity.Setting) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const query = `
		INSERT INTO store_settings (key, value, updated_by, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	for _, s := range settings {
		if _, err := tx.Exec(ctx, query, s.Key, s.Value, s.UpdatedBy, s.UpdatedAt); err != nil {
			return fmt.Errorf("upsert setting %s: %w", s.Key, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
