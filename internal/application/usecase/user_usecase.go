package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/tienda-admin-api/internal/application/auth"
	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/rbac"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserUseCase administración de cuentas del panel. Cada operación exige el permiso user.* correspondiente.
// Las mutaciones sobre un usuario existente leen con bloqueo dentro de una transacción.
type UserUseCase struct {
	users repository.UserRepository
	roles repository.RoleRepository
	tx    auth.TxRunner
	audit *AuditUseCase
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(users repository.UserRepository, roles repository.RoleRepository, tx auth.TxRunner, audit *AuditUseCase) *UserUseCase {
	return &UserUseCase{users: users, roles: roles, tx: tx, audit: audit}
}

// List lista usuarios con paginación. Requiere user.view.
func (uc *UserUseCase) List(ctx context.Context, actor *rbac.Principal, page dto.PageRequest) (*dto.UserListResponse, error) {
	if err := rbac.Require(actor, entity.ModuleUser, entity.ActionView); err != nil {
		return nil, err
	}
	page.Normalize()
	list, total, err := uc.users.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	names, err := uc.roleNames(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *dto.NewUserResponse(u, names[u.RoleID]))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// GetByID obtiene un usuario. Requiere user.view.
func (uc *UserUseCase) GetByID(ctx context.Context, actor *rbac.Principal, id string) (*dto.UserResponse, error) {
	if err := rbac.Require(actor, entity.ModuleUser, entity.ActionView); err != nil {
		return nil, err
	}
	user, role, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user, roleName(role)), nil
}

// Create da de alta un usuario con el rol indicado por nombre. Requiere user.create;
// asignar super_admin exige que el actor también lo sea.
func (uc *UserUseCase) Create(ctx context.Context, actor *rbac.Principal, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := rbac.Require(actor, entity.ModuleUser, entity.ActionCreate); err != nil {
		return nil, err
	}
	if err := auth.ValidateCredentials(in.Email, in.Password); err != nil {
		return nil, err
	}
	role, err := roleForAssignment(ctx, uc.roles, actor, in.Role)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		RoleID:       role.ID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actorID(actor), "user", user.ID, "create", email+" role="+role.Name)
	return dto.NewUserResponse(user, role.Name), nil
}

// Update cambia nombre y/o estado activo. Requiere user.edit.
// Nadie puede desactivarse a sí mismo; desactivar a un super_admin exige ser super_admin.
func (uc *UserUseCase) Update(ctx context.Context, actor *rbac.Principal, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := rbac.Require(actor, entity.ModuleUser, entity.ActionEdit); err != nil {
		return nil, err
	}
	var (
		user *entity.User
		role *entity.Role
	)
	err := uc.tx.RunAuth(ctx, func(users repository.UserRepository, roles repository.RoleRepository, _ repository.AuditRepository) error {
		var err error
		user, role, err = loadForUpdate(ctx, users, roles, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return fmt.Errorf("%w: name no puede estar vacío", domain.ErrInvalidInput)
			}
			user.Name = name
		}
		if in.IsActive != nil && *in.IsActive != user.IsActive {
			if !*in.IsActive {
				if user.ID == actor.UserID {
					return fmt.Errorf("%w: no puede desactivar su propia cuenta", domain.ErrForbidden)
				}
				if role.IsSuperAdmin() && !actor.Role.IsSuperAdmin() {
					return fmt.Errorf("%w: solo un super_admin puede desactivar a otro", domain.ErrForbidden)
				}
			}
			user.IsActive = *in.IsActive
		}
		user.UpdatedAt = time.Now()
		return users.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actorID(actor), "user", user.ID, "update", fmt.Sprintf("is_active=%t", user.IsActive))
	return dto.NewUserResponse(user, roleName(role)), nil
}

// ChangeRole reasigna el rol de un usuario. Requiere user.change_role.
// El cambio aplica en la siguiente petición del usuario, sin volver a iniciar sesión.
func (uc *UserUseCase) ChangeRole(ctx context.Context, actor *rbac.Principal, id, newRole string) (*dto.UserResponse, error) {
	if err := rbac.Require(actor, entity.ModuleUser, entity.ActionChangeRole); err != nil {
		return nil, err
	}
	var (
		user          *entity.User
		current, role *entity.Role
	)
	err := uc.tx.RunAuth(ctx, func(users repository.UserRepository, roles repository.RoleRepository, _ repository.AuditRepository) error {
		var err error
		user, current, err = loadForUpdate(ctx, users, roles, id)
		if err != nil {
			return err
		}
		if user.ID == actor.UserID {
			return fmt.Errorf("%w: no puede cambiar su propio rol", domain.ErrForbidden)
		}
		if current.IsSuperAdmin() && !actor.Role.IsSuperAdmin() {
			return fmt.Errorf("%w: solo un super_admin puede cambiar el rol de otro", domain.ErrForbidden)
		}
		role, err = roleForAssignment(ctx, roles, actor, newRole)
		if err != nil {
			return err
		}
		user.RoleID = role.ID
		user.UpdatedAt = time.Now()
		return users.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actorID(actor), "user", user.ID, "change_role", roleName(current)+" -> "+role.Name)
	return dto.NewUserResponse(user, role.Name), nil
}

// Delete elimina un usuario. Requiere user.delete. Un token ya emitido para él falla en la siguiente resolución.
func (uc *UserUseCase) Delete(ctx context.Context, actor *rbac.Principal, id string) error {
	if err := rbac.Require(actor, entity.ModuleUser, entity.ActionDelete); err != nil {
		return err
	}
	var user *entity.User
	err := uc.tx.RunAuth(ctx, func(users repository.UserRepository, roles repository.RoleRepository, _ repository.AuditRepository) error {
		var (
			role *entity.Role
			err  error
		)
		user, role, err = loadForUpdate(ctx, users, roles, id)
		if err != nil {
			return err
		}
		if user.ID == actor.UserID {
			return fmt.Errorf("%w: no puede eliminar su propia cuenta", domain.ErrForbidden)
		}
		if role.IsSuperAdmin() && !actor.Role.IsSuperAdmin() {
			return fmt.Errorf("%w: solo un super_admin puede eliminar a otro", domain.ErrForbidden)
		}
		return users.Delete(ctx, user.ID)
	})
	if err != nil {
		return err
	}
	uc.audit.Record(ctx, actorID(actor), "user", user.ID, "delete", user.Email)
	return nil
}

func (uc *UserUseCase) load(ctx context.Context, id string) (*entity.User, *entity.Role, error) {
	if !isUUID(id) {
		return nil, nil, domain.ErrNotFound
	}
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, domain.ErrNotFound
	}
	role, err := uc.roles.GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, nil, err
	}
	return user, role, nil
}

// loadForUpdate igual que load pero con la fila del usuario bloqueada hasta el fin de la transacción.
func loadForUpdate(ctx context.Context, users repository.UserRepository, roles repository.RoleRepository, id string) (*entity.User, *entity.Role, error) {
	if !isUUID(id) {
		return nil, nil, domain.ErrNotFound
	}
	user, err := users.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, domain.ErrNotFound
	}
	role, err := roles.GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, nil, err
	}
	return user, role, nil
}

func roleForAssignment(ctx context.Context, roles repository.RoleRepository, actor *rbac.Principal, name string) (*entity.Role, error) {
	name = strings.TrimSpace(name)
	if !entity.IsValidRoleName(name) {
		return nil, fmt.Errorf("%w: rol desconocido %q", domain.ErrInvalidInput, name)
	}
	if name == entity.RoleSuperAdmin && !actor.Role.IsSuperAdmin() {
		return nil, fmt.Errorf("%w: solo un super_admin puede asignar super_admin", domain.ErrForbidden)
	}
	role, err := roles.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, domain.ErrRoleNotFound
	}
	return role, nil
}

func (uc *UserUseCase) roleNames(ctx context.Context) (map[string]string, error) {
	roles, err := uc.roles.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(roles))
	for _, r := range roles {
		out[r.ID] = r.Name
	}
	return out, nil
}

func roleName(r *entity.Role) string {
	if r == nil {
		return ""
	}
	return r.Name
}

// isUUID los ids son uuid; cualquier otro valor no puede existir y se trata como no encontrado.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
