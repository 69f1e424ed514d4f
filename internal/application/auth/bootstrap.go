package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength longitud mínima de contraseña para cuentas nuevas.
const MinPasswordLength = 8

// BootstrapStatus informa si todavía no existe ningún usuario con rol super_admin.
func (uc *AuthUseCase) BootstrapStatus(ctx context.Context) (*dto.BootstrapStatusResponse, error) {
	role, err := uc.roles.GetByName(ctx, entity.RoleSuperAdmin)
	if err != nil {
		return nil, fmt.Errorf("bootstrap status: %w", err)
	}
	if role == nil {
		return &dto.BootstrapStatusResponse{Required: true}, nil
	}
	exists, err := uc.users.ExistsWithRole(ctx, role.ID)
	if err != nil {
		return nil, fmt.Errorf("bootstrap status: %w", err)
	}
	return &dto.BootstrapStatusResponse{Required: !exists}, nil
}

// BootstrapSuperAdmin da de alta el primer super administrador sin pasar por la autorización normal.
// Si el rol super_admin no existe se crea con todos los permisos. Con un super_admin ya presente devuelve ErrConflict.
// La fila del rol queda bloqueada durante la transacción, así dos altas simultáneas no pueden pasar ambas.
func (uc *AuthUseCase) BootstrapSuperAdmin(ctx context.Context, in dto.BootstrapRequest) (*dto.LoginResponse, error) {
	email := normalizeEmail(in.Email)
	if err := validateCredentials(email, in.Password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := in.Name
	if name == "" {
		name = email
	}

	var (
		user *entity.User
		role *entity.Role
	)
	err = uc.tx.RunAuth(ctx, func(users repository.UserRepository, roles repository.RoleRepository, audit repository.AuditRepository) error {
		now := uc.now()
		r, err := roles.GetByNameForUpdate(ctx, entity.RoleSuperAdmin)
		if err != nil {
			return err
		}
		if r == nil {
			r = &entity.Role{
				ID:          uuid.New().String(),
				Name:        entity.RoleSuperAdmin,
				Description: "Acceso total al panel de administración",
				Permissions: entity.FullPermissions(),
				IsActive:    true,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := roles.Create(ctx, r); err != nil {
				if errors.Is(err, domain.ErrDuplicateRole) {
					// Otro bootstrap creó el rol en paralelo.
					return domain.ErrConflict
				}
				return err
			}
		} else {
			exists, err := users.ExistsWithRole(ctx, r.ID)
			if err != nil {
				return err
			}
			if exists {
				return domain.ErrConflict
			}
		}

		existing, err := users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailAlreadyExists
		}
		u := &entity.User{
			ID:           uuid.New().String(),
			Email:        email,
			PasswordHash: string(hash),
			Name:         name,
			RoleID:       r.ID,
			IsActive:     true,
			LastLogin:    &now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, u); err != nil {
			return err
		}
		if err := audit.Create(ctx, &entity.AuditLog{
			ID:        uuid.New().String(),
			UserID:    &u.ID,
			Entity:    "user",
			EntityID:  u.ID,
			Action:    "bootstrap_super_admin",
			Details:   email,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		user, role = u, r
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := uc.tokens.Generate(user.ID, user.Email, role.Name)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	uc.log.Warn().Str("user_id", user.ID).Str("email", user.Email).Msg("super administrador inicial creado")

	return &dto.LoginResponse{
		Token:       token,
		User:        *dto.NewUserResponse(user, role.Name),
		Permissions: role.Permissions,
	}, nil
}

// ValidateCredentials reglas mínimas de email y contraseña para cuentas nuevas.
func ValidateCredentials(email, password string) error {
	return validateCredentials(normalizeEmail(email), password)
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email y password son requeridos", domain.ErrInvalidInput)
	}
	// solo la dirección desnuda: "Ana <ana@x.com>" se guardaría tal cual y nunca podría iniciar sesión
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: email inválido", domain.ErrInvalidInput)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password debe tener al menos %d caracteres", domain.ErrInvalidInput, MinPasswordLength)
	}
	return nil
}
