package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

type AuditRepo struct {
	s  *Store
	tx bool
}

func (r *AuditRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	defer r.s.lockWrite(r.tx)()
	r.s.seq++
	if log.ID == "" {
		log.ID = fmt.Sprintf("audit-%d", r.s.seq)
	}
	c := *log
	r.s.audit = append(r.s.audit, &c)
	return nil
}

// List devuelve lo más reciente primero.
func (r *AuditRepo) List(ctx context.Context, limit, offset int) ([]*entity.AuditLog, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*entity.AuditLog, 0, len(r.s.audit))
	for i := len(r.s.audit) - 1; i >= 0; i-- {
		c := *r.s.audit[i]
		all = append(all, &c)
	}
	return page(all, limit, offset), len(all), nil
}
