package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
)

var _ repository.SettingRepository = (*SettingRepo)(nil)

type SettingRepo struct {
	s *Store
}

func (r *SettingRepo) List(ctx context.Context) ([]*entity.Setting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.Setting, 0, len(r.s.settings))
	for _, st := range r.s.settings {
		c := *st
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return list, nil
}

// Upsert escribe el lote completo bajo el mismo lock.
func (r *SettingRepo) Upsert(ctx context.Context, settings []*entity.Setting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, st := range settings {
		c := *st
		r.s.settings[st.Key] = &c
	}
	return nil
}
