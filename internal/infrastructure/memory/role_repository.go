package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

type RoleRepo struct {
	s  *Store
	tx bool
}

func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	defer r.s.lockWrite(r.tx)()
	for _, existing := range r.s.roles {
		if existing.Name == role.Name {
			return domain.ErrDuplicateRole
		}
	}
	r.s.roles[role.ID] = copyRole(role)
	return nil
}

func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyRole(r.s.roles[id]), nil
}

func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, role := range r.s.roles {
		if role.Name == name {
			return copyRole(role), nil
		}
	}
	return nil, nil
}

func (r *RoleRepo) GetByNameForUpdate(ctx context.Context, name string) (*entity.Role, error) {
	return r.GetByName(ctx, name)
}

func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		list = append(list, copyRole(role))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *RoleRepo) ReplacePermissions(ctx context.Context, id string, permissions entity.PermissionMatrix) error {
	defer r.s.lockWrite(r.tx)()
	role, ok := r.s.roles[id]
	if !ok {
		return domain.ErrNotFound
	}
	role.Permissions = permissions
	role.UpdatedAt = time.Now()
	return nil
}

func (r *RoleRepo) SetActive(ctx context.Context, id string, active bool) error {
	defer r.s.lockWrite(r.tx)()
	role, ok := r.s.roles[id]
	if !ok {
		return domain.ErrNotFound
	}
	role.IsActive = active
	role.UpdatedAt = time.Now()
	return nil
}
