package repository

import (
	"context"

	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Los Get devuelven (nil, nil) cuando el registro no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByIDForUpdate lee el usuario bloqueando la fila hasta el fin de la transacción.
	// Solo tiene sentido dentro de un TxRunner.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	// UpdateLoginState persiste solo login_attempts, lock_until, last_login.
	UpdateLoginState(ctx context.Context, user *entity.User) error
	List(ctx context.Context, limit, offset int) ([]*entity.User, int, error)
	ExistsWithRole(ctx context.Context, roleID string) (bool, error)
	Delete(ctx context.Context, id string) error
}
