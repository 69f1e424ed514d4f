package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/rbac"
	"github.com/jhoicas/tienda-admin-api/pkg/jwt"
)

// ResolvePrincipal convierte un token en el principal de la petición, leyendo usuario y rol vivos.
// No hay caché: un cambio de rol o de permisos se ve en la siguiente petición con el mismo token.
//
// Errores: ErrInvalidCredential, ErrPrincipalNotFound, ErrRoleNotFound, ErrAccountDeactivated;
// cualquier otro es un fallo de almacenamiento y no debe tratarse como denegación.
func (uc *AuthUseCase) ResolvePrincipal(ctx context.Context, token string) (*rbac.Principal, error) {
	if token == "" {
		return nil, domain.ErrInvalidCredential
	}
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrInvalidToken) {
			uc.log.Debug().Err(err).Msg("token rechazado")
			return nil, domain.ErrInvalidCredential
		}
		return nil, err
	}

	user, err := uc.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolver usuario: %w", err)
	}
	if user == nil {
		return nil, domain.ErrPrincipalNotFound
	}
	role, err := uc.roles.GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("resolver rol: %w", err)
	}
	if role == nil {
		return nil, domain.ErrRoleNotFound
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDeactivated
	}
	if claims.Role != role.Name {
		// El rol del token es solo informativo: manda el rol vivo.
		uc.log.Debug().
			Str("user_id", user.ID).
			Str("token_role", claims.Role).
			Str("live_role", role.Name).
			Msg("rol del token difiere del rol actual")
	}

	return &rbac.Principal{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		IsActive: user.IsActive,
		Role:     role,
	}, nil
}

// Me construye el perfil del principal con su matriz vigente.
func (uc *AuthUseCase) Me(ctx context.Context, p *rbac.Principal) (*dto.MeResponse, error) {
	if p == nil {
		return nil, domain.ErrNotAuthenticated
	}
	user, err := uc.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	if user == nil {
		return nil, domain.ErrPrincipalNotFound
	}
	return &dto.MeResponse{
		User:        *dto.NewUserResponse(user, p.RoleName()),
		RoleActive:  p.Role.IsActive,
		Permissions: p.Permissions(),
	}, nil
}
