package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-admin-api/internal/application/auth"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/lockout"
	"github.com/jhoicas/tienda-admin-api/internal/domain/rbac"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
	"github.com/jhoicas/tienda-admin-api/internal/infrastructure/memory"
)

func tokenFor(t *testing.T, f *fixture, u *entity.User, roleName string) string {
	t.Helper()
	tok, err := f.tokens.Generate(u.ID, u.Email, roleName)
	require.NoError(t, err)
	return tok
}

func resolve(t *testing.T, f *fixture, u *entity.User) *rbac.Principal {
	t.Helper()
	p, err := f.uc.ResolvePrincipal(context.Background(), tokenFor(t, f, u, ""))
	require.NoError(t, err)
	return p
}

func TestResolvePrincipal_Correcto(t *testing.T) {
	f := newFixture(t, 5)
	role := f.addRole(t, entity.RoleManager, entity.PresetPermissions(entity.RoleManager))
	u := f.addUser(t, "ana@tienda.com", role)

	p, err := f.uc.ResolvePrincipal(context.Background(), tokenFor(t, f, u, entity.RoleManager))
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, u.Email, p.Email)
	assert.True(t, p.IsActive)
	assert.Equal(t, entity.RoleManager, p.RoleName())
	assert.Equal(t, role.Permissions, p.Permissions())
}

func TestResolvePrincipal_TokenInvalido(t *testing.T) {
	f := newFixture(t, 5)
	for _, tok := range []string{"", "token.invalido.aqui"} {
		_, err := f.uc.ResolvePrincipal(context.Background(), tok)
		assert.ErrorIs(t, err, domain.ErrInvalidCredential, tok)
	}
}

func TestResolvePrincipal_UsuarioEliminado(t *testing.T) {
	f := newFixture(t, 5)
	role := f.addRole(t, entity.RoleViewer, entity.PresetPermissions(entity.RoleViewer))
	u := f.addUser(t, "ana@tienda.com", role)
	tok := tokenFor(t, f, u, entity.RoleViewer)

	require.NoError(t, f.store.Users().Delete(context.Background(), u.ID))
	_, err := f.uc.ResolvePrincipal(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrPrincipalNotFound)
}

func TestResolvePrincipal_RolInexistente(t *testing.T) {
	f := newFixture(t, 5)
	role := f.addRole(t, entity.RoleViewer, entity.PresetPermissions(entity.RoleViewer))
	u := f.addUser(t, "ana@tienda.com", role)

	// mismo usuario, catálogo de roles vacío
	uc := auth.NewAuthUseCase(f.store.Users(), memory.NewStore().Roles(), f.store, f.tokens, lockout.Policy{MaxAttempts: 5})
	_, err := uc.ResolvePrincipal(context.Background(), tokenFor(t, f, u, entity.RoleViewer))
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestResolvePrincipal_CuentaDesactivada(t *testing.T) {
	f := newFixture(t, 5)
	role := f.addRole(t, entity.RoleAdmin, entity.FullPermissions())
	u := f.addUser(t, "ana@tienda.com", role)
	tok := tokenFor(t, f, u, entity.RoleAdmin)

	u.IsActive = false
	require.NoError(t, f.store.Users().Update(context.Background(), u))

	_, err := f.uc.ResolvePrincipal(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrAccountDeactivated)
}

type failingUsers struct {
	repository.UserRepository
}

func (failingUsers) GetByID(context.Context, string) (*entity.User, error) {
	return nil, errors.New("conexión rechazada")
}

func TestResolvePrincipal_FalloDeAlmacenamientoNoEsDenegacion(t *testing.T) {
	f := newFixture(t, 5)
	role := f.addRole(t, entity.RoleAdmin, entity.FullPermissions())
	u := f.addUser(t, "ana@tienda.com", role)

	uc := auth.NewAuthUseCase(failingUsers{f.store.Users()}, f.store.Roles(), f.store, f.tokens, lockout.Policy{MaxAttempts: 5})
	_, err := uc.ResolvePrincipal(context.Background(), tokenFor(t, f, u, entity.RoleAdmin))
	require.Error(t, err)
	for _, sentinel := range []error{
		domain.ErrInvalidCredential, domain.ErrPrincipalNotFound, domain.ErrRoleNotFound,
		domain.ErrAccountDeactivated, domain.ErrInsufficientPermission,
	} {
		assert.NotErrorIs(t, err, sentinel)
	}
	assert.Contains(t, err.Error(), "conexión rechazada")
}

// Un cambio de rol se aplica en la siguiente resolución del mismo token, sin nuevo login.
func TestResolvePrincipal_CambioDeRolInmediato(t *testing.T) {
	f := newFixture(t, 5)
	viewer := f.addRole(t, entity.RoleViewer, entity.PresetPermissions(entity.RoleViewer))
	admin := f.addRole(t, entity.RoleAdmin, entity.FullPermissions())
	u := f.addUser(t, "ana@tienda.com", viewer)
	tok := tokenFor(t, f, u, entity.RoleViewer)

	p, err := f.uc.ResolvePrincipal(context.Background(), tok)
	require.NoError(t, err)
	assert.False(t, rbac.Authorize(p, entity.ModuleOrder, entity.ActionDelete).Allowed)

	u.RoleID = admin.ID
	require.NoError(t, f.store.Users().Update(context.Background(), u))

	p, err = f.uc.ResolvePrincipal(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, p.RoleName(), "manda el rol vivo, no el del token")
	assert.True(t, rbac.Authorize(p, entity.ModuleOrder, entity.ActionDelete).Allowed)
}

func TestResolvePrincipal_CambioDePermisosInmediato(t *testing.T) {
	f := newFixture(t, 5)
	role := f.addRole(t, entity.RoleSupport, entity.PresetPermissions(entity.RoleSupport))
	u := f.addUser(t, "ana@tienda.com", role)
	tok := tokenFor(t, f, u, entity.RoleSupport)

	p, err := f.uc.ResolvePrincipal(context.Background(), tok)
	require.NoError(t, err)
	require.True(t, rbac.Authorize(p, entity.ModuleOrder, entity.ActionUpdateStatus).Allowed)

	require.NoError(t, f.store.Roles().ReplacePermissions(context.Background(), role.ID, entity.PermissionMatrix{}))
	p, err = f.uc.ResolvePrincipal(context.Background(), tok)
	require.NoError(t, err)
	assert.False(t, rbac.Authorize(p, entity.ModuleOrder, entity.ActionUpdateStatus).Allowed)

	require.NoError(t, f.store.Roles().SetActive(context.Background(), role.ID, false))
	p, err = f.uc.ResolvePrincipal(context.Background(), tok)
	require.NoError(t, err, "un rol inactivo se resuelve; la denegación la da el guard")
	assert.Equal(t, rbac.ReasonRoleInactive, rbac.Authorize(p, entity.ModuleOrder, entity.ActionView).Reason)
}

func TestMe(t *testing.T) {
	f := newFixture(t, 5)
	role := f.addRole(t, entity.RoleSupport, entity.PresetPermissions(entity.RoleSupport))
	u := f.addUser(t, "ana@tienda.com", role)

	out, err := f.uc.Me(context.Background(), resolve(t, f, u))
	require.NoError(t, err)
	assert.Equal(t, u.ID, out.User.ID)
	assert.Equal(t, entity.RoleSupport, out.User.Role)
	assert.True(t, out.RoleActive)
	assert.Equal(t, role.Permissions, out.Permissions)

	_, err = f.uc.Me(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}
