package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/rbac"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
)

// RoleUseCase gestión del catálogo de roles. Cada operación recibe el principal explícitamente.
type RoleUseCase struct {
	repo  repository.RoleRepository
	audit *AuditUseCase
}

// NewRoleUseCase construye el caso de uso.
func NewRoleUseCase(repo repository.RoleRepository, audit *AuditUseCase) *RoleUseCase {
	return &RoleUseCase{repo: repo, audit: audit}
}

// List devuelve todos los roles por nombre ascendente. Requiere user.view.
func (uc *RoleUseCase) List(ctx context.Context, actor *rbac.Principal) (*dto.RoleListResponse, error) {
	if err := rbac.Require(actor, entity.ModuleUser, entity.ActionView); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RoleResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *dto.NewRoleResponse(r))
	}
	return &dto.RoleListResponse{Items: items}, nil
}

// GetByID obtiene un rol. Requiere user.view.
func (uc *RoleUseCase) GetByID(ctx context.Context, actor *rbac.Principal, id string) (*dto.RoleResponse, error) {
	if err := rbac.Require(actor, entity.ModuleUser, entity.ActionView); err != nil {
		return nil, err
	}
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	role, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewRoleResponse(role), nil
}

// GetByName obtiene un rol por nombre. Requiere user.view.
func (uc *RoleUseCase) GetByName(ctx context.Context, actor *rbac.Principal, name string) (*dto.RoleResponse, error) {
	if err := rbac.Require(actor, entity.ModuleUser, entity.ActionView); err != nil {
		return nil, err
	}
	role, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewRoleResponse(role), nil
}

// Create crea un rol. Requiere user.create. super_admin solo nace por bootstrap.
// La matriz llega ya completa: las acciones omitidas en el JSON se rellenaron con false al decodificar.
func (uc *RoleUseCase) Create(ctx context.Context, actor *rbac.Principal, in dto.CreateRoleRequest) (*dto.RoleResponse, error) {
	if err := rbac.Require(actor, entity.ModuleUser, entity.ActionCreate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if !entity.IsValidRoleName(name) {
		return nil, fmt.Errorf("%w: nombre de rol desconocido %q", domain.ErrInvalidInput, name)
	}
	if name == entity.RoleSuperAdmin {
		return nil, fmt.Errorf("%w: super_admin solo se crea en el bootstrap", domain.ErrForbidden)
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description es requerida", domain.ErrInvalidInput)
	}
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateRole
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	now := time.Now()
	role := &entity.Role{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Permissions: in.Permissions,
		IsActive:    active,
		CreatedBy:   actorID(actor),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, role); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actorID(actor), "role", role.ID, "create", name)
	return dto.NewRoleResponse(role), nil
}

// ReplacePermissions sustituye la matriz completa del rol. Requiere user.change_role.
// La matriz de super_admin es inmutable.
func (uc *RoleUseCase) ReplacePermissions(ctx context.Context, actor *rbac.Principal, id string, matrix entity.PermissionMatrix) (*dto.RoleResponse, error) {
	if err := rbac.Require(actor, entity.ModuleUser, entity.ActionChangeRole); err != nil {
		return nil, err
	}
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	role, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}
	if role.IsSuperAdmin() {
		return nil, fmt.Errorf("%w: los permisos de super_admin no se pueden editar", domain.ErrForbidden)
	}
	if err := uc.repo.ReplacePermissions(ctx, id, matrix); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actorID(actor), "role", id, "update_permissions", strings.Join(matrix.Granted(), ","))
	return uc.reload(ctx, id)
}

// SetActive activa o desactiva un rol. Requiere user.change_role. super_admin no se puede desactivar.
func (uc *RoleUseCase) SetActive(ctx context.Context, actor *rbac.Principal, id string, active bool) (*dto.RoleResponse, error) {
	if err := rbac.Require(actor, entity.ModuleUser, entity.ActionChangeRole); err != nil {
		return nil, err
	}
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	role, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}
	if role.IsSuperAdmin() && !active {
		return nil, fmt.Errorf("%w: super_admin no se puede desactivar", domain.ErrForbidden)
	}
	if err := uc.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actorID(actor), "role", id, "set_active", fmt.Sprintf("is_active=%t", active))
	return uc.reload(ctx, id)
}

// Schema catálogo fijo de módulos y acciones.
func (uc *RoleUseCase) Schema() []entity.ModuleSchema {
	return entity.PermissionSchema()
}

func (uc *RoleUseCase) reload(ctx context.Context, id string) (*dto.RoleResponse, error) {
	role, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewRoleResponse(role), nil
}
