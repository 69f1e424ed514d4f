package repository

import (
	"context"

	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
)

// SettingRepository persistencia de la configuración de tienda.
type SettingRepository interface {
	List(ctx context.Context) ([]*entity.Setting, error)
	// Upsert escribe todas las claves en una única transacción.
	Upsert(ctx context.Context, settings []*entity.Setting) error
}
