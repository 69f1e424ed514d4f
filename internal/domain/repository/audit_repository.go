package repository

import (
	"context"

	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
)

// AuditRepository registro append-only de acciones administrativas.
type AuditRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	List(ctx context.Context, limit, offset int) ([]*entity.AuditLog, int, error)
}
