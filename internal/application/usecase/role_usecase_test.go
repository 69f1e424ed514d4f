package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/application/usecase"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/rbac"
	"github.com/jhoicas/tienda-admin-api/internal/infrastructure/memory"
)

func TestRoleList_OrdenadoPorNombre(t *testing.T) {
	e := newEnv(t)
	actor := e.actor(t, "admin@tienda.com", entity.RoleAdmin)

	out, err := e.roles.List(context.Background(), actor)
	require.NoError(t, err)
	names := make([]string, 0, len(out.Items))
	for _, r := range out.Items {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"admin", "manager", "super_admin", "support", "viewer"}, names)
}

func TestRoleList_SinPermiso(t *testing.T) {
	e := newEnv(t)
	_, err := e.roles.List(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestRoleGet(t *testing.T) {
	e := newEnv(t)
	actor := e.actor(t, "viewer@tienda.com", entity.RoleViewer)

	out, err := e.roles.GetByName(context.Background(), actor, entity.RoleSupport)
	require.NoError(t, err)
	assert.Equal(t, entity.PresetPermissions(entity.RoleSupport), out.Permissions)

	_, err = e.roles.GetByID(context.Background(), actor, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.roles.GetByName(context.Background(), actor, "otro")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRole_IDNoUUID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	root := e.actor(t, "root@tienda.com", entity.RoleSuperAdmin)

	_, err := e.roles.GetByID(ctx, root, "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.roles.ReplacePermissions(ctx, root, "abc", entity.PermissionMatrix{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.roles.SetActive(ctx, root, "abc", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Store vacío: crear un rol nuevo y luego intentar duplicarlo.
func TestRoleCreate(t *testing.T) {
	s := memory.NewStore()
	uc := usecase.NewRoleUseCase(s.Roles(), usecase.NewAuditUseCase(s.Audit(), nil))
	actor := &rbac.Principal{
		UserID:   "u-root",
		IsActive: true,
		Role:     &entity.Role{Name: entity.RoleSuperAdmin, Permissions: entity.FullPermissions(), IsActive: true},
	}

	out, err := uc.Create(context.Background(), actor, dto.CreateRoleRequest{
		Name:        entity.RoleSupport,
		Description: "Atención de pedidos",
		Permissions: entity.PermissionMatrix{Order: entity.OrderPermissions{View: true, UpdateStatus: true}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.True(t, out.IsActive, "activo por defecto")
	require.NotNil(t, out.CreatedBy)
	assert.Equal(t, "u-root", *out.CreatedBy)
	assert.Equal(t, []string{"order.view", "order.update_status"}, out.Permissions.Granted())

	_, err = uc.Create(context.Background(), actor, dto.CreateRoleRequest{Name: entity.RoleSupport, Description: "otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicateRole)

	inactive := false
	out, err = uc.Create(context.Background(), actor, dto.CreateRoleRequest{Name: entity.RoleViewer, Description: "lectura", IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, out.IsActive)
}

func TestRoleCreate_Validaciones(t *testing.T) {
	e := newEnv(t)
	admin := e.actor(t, "admin@tienda.com", entity.RoleAdmin)
	ctx := context.Background()

	_, err := e.roles.Create(ctx, admin, dto.CreateRoleRequest{Name: "auditor", Description: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "nombre fuera del conjunto cerrado")

	_, err = e.roles.Create(ctx, admin, dto.CreateRoleRequest{Name: entity.RoleSuperAdmin, Description: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.roles.Create(ctx, admin, dto.CreateRoleRequest{Name: entity.RoleManager, Description: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = e.roles.Create(ctx, admin, dto.CreateRoleRequest{Name: entity.RoleManager, Description: "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicateRole)

	manager := e.actor(t, "manager@tienda.com", entity.RoleManager)
	_, err = e.roles.Create(ctx, manager, dto.CreateRoleRequest{Name: entity.RoleManager, Description: "x"})
	assert.ErrorIs(t, err, domain.ErrInsufficientPermission)
}

func TestRoleReplacePermissions(t *testing.T) {
	e := newEnv(t)
	admin := e.actor(t, "admin@tienda.com", entity.RoleAdmin)
	support := e.roleIDs[entity.RoleSupport]

	out, err := e.roles.ReplacePermissions(context.Background(), admin, support.ID,
		entity.PermissionMatrix{Analytics: entity.AnalyticsPermissions{View: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"analytics.view"}, out.Permissions.Granted(), "reemplazo completo, no fusión")

	stored, err := e.store.Roles().GetByID(context.Background(), support.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Permissions, stored.Permissions)
	assert.Contains(t, e.auditActions(t), "role.update_permissions")
}

func TestRoleReplacePermissions_Restricciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	root := e.actor(t, "root@tienda.com", entity.RoleSuperAdmin)

	_, err := e.roles.ReplacePermissions(ctx, root, e.roleIDs[entity.RoleSuperAdmin].ID, entity.PermissionMatrix{})
	assert.ErrorIs(t, err, domain.ErrForbidden, "la matriz de super_admin es inmutable")

	_, err = e.roles.ReplacePermissions(ctx, root, "no-existe", entity.PermissionMatrix{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	manager := e.actor(t, "manager@tienda.com", entity.RoleManager)
	_, err = e.roles.ReplacePermissions(ctx, manager, e.roleIDs[entity.RoleViewer].ID, entity.FullPermissions())
	assert.ErrorIs(t, err, domain.ErrInsufficientPermission)
}

func TestRoleSetActive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.actor(t, "admin@tienda.com", entity.RoleAdmin)

	out, err := e.roles.SetActive(ctx, admin, e.roleIDs[entity.RoleViewer].ID, false)
	require.NoError(t, err)
	assert.False(t, out.IsActive)

	_, err = e.roles.SetActive(ctx, admin, e.roleIDs[entity.RoleSuperAdmin].ID, false)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err = e.roles.SetActive(ctx, admin, e.roleIDs[entity.RoleSuperAdmin].ID, true)
	require.NoError(t, err, "activar super_admin no es problema")
	assert.True(t, out.IsActive)
}

func TestRoleSchema(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, entity.PermissionSchema(), e.roles.Schema())
}
