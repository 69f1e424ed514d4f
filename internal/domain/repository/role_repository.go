package repository

import (
	"context"

	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
)

// RoleRepository define el puerto de persistencia para Role.
// Create devuelve domain.ErrDuplicateRole si el nombre ya existe.
type RoleRepository interface {
	Create(ctx context.Context, role *entity.Role) error
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	// GetByNameForUpdate bloquea la fila del rol hasta el fin de la transacción (bootstrap de super_admin).
	GetByNameForUpdate(ctx context.Context, name string) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)
	// ReplacePermissions sustituye la matriz completa en una sola escritura (last-write-wins).
	ReplacePermissions(ctx context.Context, id string, permissions entity.PermissionMatrix) error
	SetActive(ctx context.Context, id string, active bool) error
}
