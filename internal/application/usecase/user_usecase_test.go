package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
)

func newUserReq(email, role string) dto.CreateUserRequest {
	return dto.CreateUserRequest{Email: email, Password: "password-123", Name: "Nuevo", Role: role}
}

func TestUserCreate(t *testing.T) {
	e := newEnv(t)
	admin := e.actor(t, "admin@tienda.com", entity.RoleAdmin)

	out, err := e.users.Create(context.Background(), admin, newUserReq("Luis@Tienda.com", entity.RoleSupport))
	require.NoError(t, err)
	assert.Equal(t, "luis@tienda.com", out.Email)
	assert.Equal(t, entity.RoleSupport, out.Role)
	assert.True(t, out.IsActive)

	stored, err := e.store.Users().GetByEmail(context.Background(), "luis@tienda.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password-123")))
	assert.Contains(t, e.auditActions(t), "user.create")

	_, err = e.users.Create(context.Background(), admin, newUserReq("luis@tienda.com", entity.RoleViewer))
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestUserCreate_Validaciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.actor(t, "admin@tienda.com", entity.RoleAdmin)

	_, err := e.users.Create(ctx, admin, newUserReq("luis@tienda.com", "auditor"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	req := newUserReq("luis@tienda.com", entity.RoleViewer)
	req.Password = "corta"
	_, err = e.users.Create(ctx, admin, req)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.users.Create(ctx, admin, newUserReq("luis@tienda.com", entity.RoleSuperAdmin))
	assert.ErrorIs(t, err, domain.ErrForbidden, "solo un super_admin asigna super_admin")

	root := e.actor(t, "root@tienda.com", entity.RoleSuperAdmin)
	_, err = e.users.Create(ctx, root, newUserReq("luis@tienda.com", entity.RoleSuperAdmin))
	assert.NoError(t, err)

	viewer := e.actor(t, "viewer@tienda.com", entity.RoleViewer)
	_, err = e.users.Create(ctx, viewer, newUserReq("otro@tienda.com", entity.RoleViewer))
	assert.ErrorIs(t, err, domain.ErrInsufficientPermission)
}

func TestUserList(t *testing.T) {
	e := newEnv(t)
	admin := e.actor(t, "admin@tienda.com", entity.RoleAdmin)
	e.actor(t, "a@tienda.com", entity.RoleViewer)
	e.actor(t, "b@tienda.com", entity.RoleSupport)

	out, err := e.users.List(context.Background(), admin, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, 3, out.Page.Total)
	for _, u := range out.Items {
		assert.NotEmpty(t, u.Role, "cada usuario lleva el nombre de su rol")
	}
}

func TestUserUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.actor(t, "admin@tienda.com", entity.RoleAdmin)
	target := e.actor(t, "ana@tienda.com", entity.RoleViewer)

	name := "Ana María"
	inactive := false
	out, err := e.users.Update(ctx, admin, target.UserID, dto.UpdateUserRequest{Name: &name, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, name, out.Name)
	assert.False(t, out.IsActive)

	blank := " "
	_, err = e.users.Update(ctx, admin, target.UserID, dto.UpdateUserRequest{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.users.Update(ctx, admin, admin.UserID, dto.UpdateUserRequest{IsActive: &inactive})
	assert.ErrorIs(t, err, domain.ErrForbidden, "nadie se desactiva a sí mismo")

	root := e.actor(t, "root@tienda.com", entity.RoleSuperAdmin)
	_, err = e.users.Update(ctx, admin, root.UserID, dto.UpdateUserRequest{IsActive: &inactive})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.users.Update(ctx, admin, "no-existe", dto.UpdateUserRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserChangeRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.actor(t, "admin@tienda.com", entity.RoleAdmin)
	target := e.actor(t, "ana@tienda.com", entity.RoleViewer)

	out, err := e.users.ChangeRole(ctx, admin, target.UserID, entity.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleManager, out.Role)
	assert.Equal(t, e.roleIDs[entity.RoleManager].ID, out.RoleID)
	assert.Contains(t, e.auditActions(t), "user.change_role")

	_, err = e.users.ChangeRole(ctx, admin, admin.UserID, entity.RoleSuperAdmin)
	assert.ErrorIs(t, err, domain.ErrForbidden, "no se cambia el rol propio")

	_, err = e.users.ChangeRole(ctx, admin, target.UserID, entity.RoleSuperAdmin)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	root := e.actor(t, "root@tienda.com", entity.RoleSuperAdmin)
	_, err = e.users.ChangeRole(ctx, admin, root.UserID, entity.RoleViewer)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.users.ChangeRole(ctx, root, target.UserID, entity.RoleSuperAdmin)
	assert.NoError(t, err)

	manager := e.actor(t, "manager@tienda.com", entity.RoleManager)
	_, err = e.users.ChangeRole(ctx, manager, target.UserID, entity.RoleViewer)
	assert.ErrorIs(t, err, domain.ErrInsufficientPermission)
}

func TestUserDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.actor(t, "admin@tienda.com", entity.RoleAdmin)
	target := e.actor(t, "ana@tienda.com", entity.RoleViewer)

	require.NoError(t, e.users.Delete(ctx, admin, target.UserID))
	_, err := e.users.GetByID(ctx, admin, target.UserID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, e.users.Delete(ctx, admin, admin.UserID), domain.ErrForbidden)

	root := e.actor(t, "root@tienda.com", entity.RoleSuperAdmin)
	assert.ErrorIs(t, e.users.Delete(ctx, admin, root.UserID), domain.ErrForbidden)
	assert.ErrorIs(t, e.users.Delete(ctx, admin, "no-existe"), domain.ErrNotFound)
}

func TestUserMutaciones_ConcurrentesNoSePisan(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.actor(t, "admin@tienda.com", entity.RoleAdmin)

	for i := 0; i < 20; i++ {
		target := e.actor(t, uuid.New().String()+"@tienda.com", entity.RoleViewer)
		inactive := false
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := e.users.Update(ctx, admin, target.UserID, dto.UpdateUserRequest{IsActive: &inactive})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := e.users.ChangeRole(ctx, admin, target.UserID, entity.RoleManager)
			assert.NoError(t, err)
		}()
		wg.Wait()

		got, err := e.users.GetByID(ctx, admin, target.UserID)
		require.NoError(t, err)
		assert.False(t, got.IsActive, "la desactivación no se pierde")
		assert.Equal(t, entity.RoleManager, got.Role, "el cambio de rol no se pierde")
	}
}

func TestUser_IDsNoUUIDoInexistentes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.actor(t, "admin@tienda.com", entity.RoleAdmin)
	name := "x"

	for _, id := range []string{"abc", "", uuid.New().String()} {
		_, err := e.users.GetByID(ctx, admin, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
		_, err = e.users.Update(ctx, admin, id, dto.UpdateUserRequest{Name: &name})
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
		_, err = e.users.ChangeRole(ctx, admin, id, entity.RoleViewer)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
		assert.ErrorIs(t, e.users.Delete(ctx, admin, id), domain.ErrNotFound, id)
	}
}

func TestUserChangeRole_RechazoNoModifica(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.actor(t, "admin@tienda.com", entity.RoleAdmin)
	target := e.actor(t, "ana@tienda.com", entity.RoleViewer)

	_, err := e.users.ChangeRole(ctx, admin, target.UserID, "inventado")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := e.users.GetByID(ctx, admin, target.UserID)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleViewer, got.Role)
	assert.NotContains(t, e.auditActions(t), "user.change_role")
}

func TestUserCreate_EmailConNombre(t *testing.T) {
	e := newEnv(t)
	admin := e.actor(t, "admin@tienda.com", entity.RoleAdmin)
	_, err := e.users.Create(context.Background(), admin, newUserReq("Ana <ana@tienda.com>", entity.RoleViewer))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
