package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo registro de auditoría append-only. Usable con pool o tx.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create inserta una entrada.
func (r *AuditRepo) Create(ctx context.Context, l *entity.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, user_id, entity, entity_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.q.Exec(ctx, query, l.ID, l.UserID, l.Entity, l.EntityID, l.Action, l.Details, l.CreatedAt); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List devuelve las entradas más recientes primero.
func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]*entity.AuditLog, int, error) {
	query := `
		SELECT id, user_id, entity, entity_id, action, details, created_at, COUNT(*) OVER()
		FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	var (
		list  []*entity.AuditLog
		total int
	)
	for rows.Next() {
		var l entity.AuditLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Entity, &l.EntityID, &l.Action, &l.Details, &l.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan audit log: %w", err)
		}
		list = append(list, &l)
	}
	return list, total, rows.Err()
}
