package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación en memoria de UserRepository, con las mismas restricciones que la tabla users.
type UserRepo struct {
	s  *Store
	tx bool
}

func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	defer r.s.lockWrite(r.tx)()
	user.Email = strings.ToLower(user.Email)
	if r.emailTaken(user.Email, "") {
		return domain.ErrEmailAlreadyExists
	}
	if _, ok := r.s.roles[user.RoleID]; !ok {
		return domain.ErrRoleNotFound
	}
	r.s.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyUser(r.s.users[id]), nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range r.s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

// GetByIDForUpdate igual que GetByID; la exclusión la da Store.RunAuth.
func (r *UserRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	defer r.s.lockWrite(r.tx)()
	cur, ok := r.s.users[user.ID]
	if !ok {
		return domain.ErrNotFound
	}
	email := strings.ToLower(user.Email)
	if r.emailTaken(email, user.ID) {
		return domain.ErrEmailAlreadyExists
	}
	if _, ok := r.s.roles[user.RoleID]; !ok {
		return domain.ErrRoleNotFound
	}
	cur.Email = email
	cur.PasswordHash = user.PasswordHash
	cur.Name = user.Name
	cur.RoleID = user.RoleID
	cur.IsActive = user.IsActive
	cur.UpdatedAt = user.UpdatedAt
	return nil
}

func (r *UserRepo) UpdateLoginState(ctx context.Context, user *entity.User) error {
	defer r.s.lockWrite(r.tx)()
	cur, ok := r.s.users[user.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.LoginAttempts = user.LoginAttempts
	cur.LockUntil = copyTime(user.LockUntil)
	cur.LastLogin = copyTime(user.LastLogin)
	cur.UpdatedAt = time.Now()
	return nil
}

// List ordena por created_at descendente, como la consulta SQL.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, copyUser(u))
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return page(all, limit, offset), len(all), nil
}

func (r *UserRepo) ExistsWithRole(ctx context.Context, roleID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.RoleID == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	defer r.s.lockWrite(r.tx)()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) emailTaken(email, exceptID string) bool {
	for id, u := range r.s.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
