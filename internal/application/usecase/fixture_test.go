package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-admin-api/internal/application/usecase"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/rbac"
	"github.com/jhoicas/tienda-admin-api/internal/infrastructure/memory"
)

type env struct {
	store    *memory.Store
	audit    *usecase.AuditUseCase
	roles    *usecase.RoleUseCase
	users    *usecase.UserUseCase
	settings *usecase.SettingsUseCase
	roleIDs  map[string]*entity.Role
}

// newEnv crea un store con todos los roles predefinidos.
func newEnv(t *testing.T) *env {
	t.Helper()
	s := memory.NewStore()
	audit := usecase.NewAuditUseCase(s.Audit(), nil)
	e := &env{
		store:    s,
		audit:    audit,
		roles:    usecase.NewRoleUseCase(s.Roles(), audit),
		users:    usecase.NewUserUseCase(s.Users(), s.Roles(), s, audit),
		settings: usecase.NewSettingsUseCase(s.Settings(), audit),
		roleIDs:  map[string]*entity.Role{},
	}
	for _, name := range entity.RoleNames() {
		r := &entity.Role{
			ID:          uuid.New().String(),
			Name:        name,
			Description: name,
			Permissions: entity.PresetPermissions(name),
			IsActive:    true,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		require.NoError(t, s.Roles().Create(context.Background(), r))
		e.roleIDs[name] = r
	}
	return e
}

// actor crea un usuario con el rol dado y devuelve su principal.
func (e *env) actor(t *testing.T, email, roleName string) *rbac.Principal {
	t.Helper()
	role := e.roleIDs[roleName]
	require.NotNil(t, role, roleName)
	u := &entity.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      email,
		RoleID:    role.ID,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	r, err := e.store.Roles().GetByID(context.Background(), role.ID)
	require.NoError(t, err)
	return &rbac.Principal{UserID: u.ID, Email: u.Email, Name: u.Name, IsActive: true, Role: r}
}

func (e *env) auditActions(t *testing.T) []string {
	t.Helper()
	logs, _, err := e.store.Audit().List(context.Background(), 100, 0)
	require.NoError(t, err)
	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Entity+"."+l.Action)
	}
	return out
}
