package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/lockout"
	"github.com/jhoicas/tienda-admin-api/internal/domain/rbac"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
	"github.com/jhoicas/tienda-admin-api/pkg/jwt"
	"github.com/jhoicas/tienda-admin-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash se compara cuando el email no existe, para que la respuesta tarde lo mismo que con un usuario real.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("tienda-admin-dummy-password"), bcrypt.DefaultCost)

// AuthUseCase autenticación con bloqueo por intentos, resolución del principal y bootstrap del super admin.
type AuthUseCase struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	tx     TxRunner
	tokens *jwt.Issuer
	policy lockout.Policy
	audit  AuditRecorder
	log    *logger.Logger
	now    func() time.Time
}

// Option configura dependencias opcionales del caso de uso.
type Option func(*AuthUseCase)

// WithClock reemplaza time.Now (tests de ventana de bloqueo).
func WithClock(now func() time.Time) Option {
	return func(uc *AuthUseCase) { uc.now = now }
}

// WithLogger inyecta el logger.
func WithLogger(l *logger.Logger) Option {
	return func(uc *AuthUseCase) { uc.log = l }
}

// WithAudit inyecta el registro de auditoría.
func WithAudit(a AuditRecorder) Option {
	return func(uc *AuthUseCase) { uc.audit = a }
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	users repository.UserRepository,
	roles repository.RoleRepository,
	tx TxRunner,
	tokens *jwt.Issuer,
	policy lockout.Policy,
	opts ...Option,
) *AuthUseCase {
	uc := &AuthUseCase{
		users:  users,
		roles:  roles,
		tx:     tx,
		tokens: tokens,
		policy: policy,
		log:    logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Login verifica email/password bajo la política de bloqueo y emite un JWT con id, email y nombre de rol.
//
// Errores hacia el cliente:
//   - ErrIncorrectCredentials: email inexistente o password incorrecto (la causa concreta solo se loguea).
//   - ErrAccountLocked: bloqueo vigente, o este intento alcanzó el umbral.
//   - ErrAccountDeactivated: password correcto pero cuenta inactiva.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	email := normalizeEmail(in.Email)
	candidate, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if candidate == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
		uc.log.Info().Str("email", email).Str("cause", "user_not_found").Msg("login rechazado")
		return nil, domain.ErrIncorrectCredentials
	}

	var (
		outcome error
		cause   string
		user    *entity.User
	)
	err = uc.tx.RunAuth(ctx, func(users repository.UserRepository, _ repository.RoleRepository, _ repository.AuditRepository) error {
		u, err := users.GetByIDForUpdate(ctx, candidate.ID)
		if err != nil {
			return err
		}
		if u == nil {
			outcome, cause = domain.ErrIncorrectCredentials, "user_deleted"
			return nil
		}
		now := uc.now()
		if err := uc.policy.Check(u, now); err != nil {
			outcome, cause = err, "locked"
			if !u.IsActive {
				outcome, cause = domain.ErrAccountDeactivated, "inactive"
			}
			return nil
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
			locked := uc.policy.RegisterFailure(u, now)
			if err := users.UpdateLoginState(ctx, u); err != nil {
				return err
			}
			outcome, cause = domain.ErrIncorrectCredentials, "bad_password"
			if locked {
				outcome, cause = domain.ErrAccountLocked, "bad_password_locked"
			}
			user = u
			return nil
		}
		if !u.IsActive {
			outcome, cause = domain.ErrAccountDeactivated, "inactive"
			return nil
		}
		uc.policy.RegisterSuccess(u, now)
		if err := users.UpdateLoginState(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if outcome != nil {
		ev := uc.log.Info().Str("email", email).Str("user_id", candidate.ID).Str("cause", cause)
		if user != nil {
			ev = ev.Int("login_attempts", user.LoginAttempts)
		}
		ev.Msg("login rechazado")
		if cause == "bad_password_locked" {
			uc.record(ctx, &candidate.ID, "session", candidate.ID, "lock", "cuenta bloqueada por intentos fallidos")
		}
		return nil, outcome
	}

	role, err := uc.roles.GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if role == nil {
		return nil, domain.ErrRoleNotFound
	}
	token, err := uc.tokens.Generate(user.ID, user.Email, role.Name)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	uc.log.Info().Str("user_id", user.ID).Str("role", role.Name).Msg("login correcto")
	uc.record(ctx, &user.ID, "session", user.ID, "login", "")

	return &dto.LoginResponse{
		Token:       token,
		User:        *dto.NewUserResponse(user, role.Name),
		Permissions: role.Permissions,
	}, nil
}

// UnlockAccount desbloqueo administrativo: limpia contador y bloqueo. Requiere user.edit.
func (uc *AuthUseCase) UnlockAccount(ctx context.Context, actor *rbac.Principal, userID string) error {
	if err := rbac.Require(actor, entity.ModuleUser, entity.ActionEdit); err != nil {
		return err
	}
	if _, err := uuid.Parse(userID); err != nil {
		return domain.ErrNotFound
	}
	err := uc.tx.RunAuth(ctx, func(users repository.UserRepository, _ repository.RoleRepository, _ repository.AuditRepository) error {
		u, err := users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return domain.ErrNotFound
		}
		uc.policy.Reset(u, uc.now())
		return users.UpdateLoginState(ctx, u)
	})
	if err != nil {
		return err
	}
	uc.record(ctx, &actor.UserID, "user", userID, "unlock", "")
	return nil
}

// TokenTTL vida útil de los tokens emitidos (para la cookie).
func (uc *AuthUseCase) TokenTTL() time.Duration {
	return uc.tokens.Expiration()
}

func (uc *AuthUseCase) record(ctx context.Context, actorID *string, entityName, entityID, action, details string) {
	if uc.audit == nil {
		return
	}
	uc.audit.Record(ctx, actorID, entityName, entityID, action, details)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
