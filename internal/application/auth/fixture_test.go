package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/tienda-admin-api/internal/application/auth"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/lockout"
	"github.com/jhoicas/tienda-admin-api/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-admin-api/pkg/jwt"
)

const testPassword = "correcta-123"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recorded struct {
	entity, entityID, action string
}

// recorder AuditRecorder en memoria.
type recorder struct {
	mu      sync.Mutex
	entries []recorded
}

func (r *recorder) Record(_ context.Context, _ *string, entityName, entityID, action, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, recorded{entityName, entityID, action})
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.entity+"."+e.action)
	}
	return out
}

type fixture struct {
	store  *memory.Store
	clock  *clock
	tokens *jwt.Issuer
	audit  *recorder
	uc     *auth.AuthUseCase
}

func newFixture(t *testing.T, maxAttempts int) *fixture {
	t.Helper()
	tokens, err := jwt.NewIssuer("test-secret", "tienda-admin-test", 60)
	require.NoError(t, err)
	f := &fixture{
		store:  memory.NewStore(),
		clock:  &clock{now: time.Now()},
		tokens: tokens,
		audit:  &recorder{},
	}
	f.uc = auth.NewAuthUseCase(f.store.Users(), f.store.Roles(), f.store, tokens,
		lockout.Policy{MaxAttempts: maxAttempts, Window: 2 * time.Hour},
		auth.WithClock(f.clock.Now),
		auth.WithAudit(f.audit),
	)
	return f
}

func (f *fixture) addRole(t *testing.T, name string, m entity.PermissionMatrix) *entity.Role {
	t.Helper()
	r := &entity.Role{
		ID:          uuid.New().String(),
		Name:        name,
		Description: name,
		Permissions: m,
		IsActive:    true,
		CreatedAt:   f.clock.Now(),
		UpdatedAt:   f.clock.Now(),
	}
	require.NoError(t, f.store.Roles().Create(context.Background(), r))
	return r
}

func (f *fixture) addUser(t *testing.T, email string, role *entity.Role) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	u := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         email,
		RoleID:       role.ID,
		IsActive:     true,
		CreatedAt:    f.clock.Now(),
		UpdatedAt:    f.clock.Now(),
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) reload(t *testing.T, id string) *entity.User {
	t.Helper()
	u, err := f.store.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}
