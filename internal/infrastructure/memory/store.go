// Package memory implementa los puertos de persistencia en memoria. Se usa con DB_DRIVER=memory
// (demos y desarrollo sin PostgreSQL) y como dobles en los tests de los casos de uso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/tienda-admin-api/internal/application/auth"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
)

var _ auth.TxRunner = (*Store)(nil)

// Store guarda todas las tablas detrás de un único mutex. RunAuth serializa las transacciones
// con txMu, equivalente a tomar FOR UPDATE sobre cualquier fila. Los repositorios que entrega
// RunAuth escriben con txMu ya tomado; los de Users(), Roles() y Audit() lo toman en cada escritura.
type Store struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	users    map[string]*entity.User
	roles    map[string]*entity.Role
	settings map[string]*entity.Setting
	audit    []*entity.AuditLog
	seq      int64
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*entity.User),
		roles:    make(map[string]*entity.Role),
		settings: make(map[string]*entity.Setting),
	}
}

func (s *Store) Users() *UserRepo       { return &UserRepo{s: s} }
func (s *Store) Roles() *RoleRepo       { return &RoleRepo{s: s} }
func (s *Store) Settings() *SettingRepo { return &SettingRepo{s: s} }
func (s *Store) Audit() *AuditRepo      { return &AuditRepo{s: s} }

// RunAuth ejecuta fn en exclusión mutua con otras transacciones; si fn falla se restaura
// el estado previo de usuarios, roles y auditoría.
func (s *Store) RunAuth(ctx context.Context, fn func(
	users repository.UserRepository,
	roles repository.RoleRepository,
	audit repository.AuditRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(&UserRepo{s: s, tx: true}, &RoleRepo{s: s, tx: true}, &AuditRepo{s: s, tx: true}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// lockWrite toma mu para una escritura. Fuera de RunAuth espera además a txMu: una transacción
// fallida restaura su snapshot y borraría lo escrito mientras tanto.
func (s *Store) lockWrite(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

type snapshot struct {
	users map[string]*entity.User
	roles map[string]*entity.Role
	audit int
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		users: make(map[string]*entity.User, len(s.users)),
		roles: make(map[string]*entity.Role, len(s.roles)),
		audit: len(s.audit),
	}
	for k, u := range s.users {
		snap.users[k] = copyUser(u)
	}
	for k, r := range s.roles {
		snap.roles[k] = copyRole(r)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.roles = snap.roles
	if len(s.audit) > snap.audit {
		s.audit = s.audit[:snap.audit]
	}
}

func copyUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	c := *u
	c.LockUntil = copyTime(u.LockUntil)
	c.LastLogin = copyTime(u.LastLogin)
	return &c
}

func copyRole(r *entity.Role) *entity.Role {
	if r == nil {
		return nil
	}
	c := *r
	if r.CreatedBy != nil {
		v := *r.CreatedBy
		c.CreatedBy = &v
	}
	return &c
}
