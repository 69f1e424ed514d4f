package auth

import (
	"context"

	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de BD con repositorios atados a ella.
// Los intentos de login sobre una misma cuenta se serializan con GetByIDForUpdate dentro de fn.
type TxRunner interface {
	RunAuth(ctx context.Context, fn func(
		users repository.UserRepository,
		roles repository.RoleRepository,
		audit repository.AuditRepository,
	) error) error
}

// AuditRecorder registra acciones fuera de transacción; los fallos se loguean y no se propagan.
type AuditRecorder interface {
	Record(ctx context.Context, actorID *string, entity, entityID, action, details string)
}
