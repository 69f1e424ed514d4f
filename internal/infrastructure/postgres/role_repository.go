package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
)

var _ repository.RoleRepository = (*RoleRepo)(nil)

const roleColumns = `id, name, description, permissions, is_active, created_by, created_at, updated_at`

// RoleRepo implementación del puerto RoleRepository. La matriz se guarda como JSONB en una sola columna,
// de modo que cualquier escritura la reemplaza entera.
type RoleRepo struct {
	q Querier
}

// NewRoleRepository construye el adaptador de persistencia para roles. Pasar pool o tx (Querier).
func NewRoleRepository(q Querier) *RoleRepo {
	return &RoleRepo{q: q}
}

// Create persiste un nuevo rol. Devuelve ErrDuplicateRole si el nombre ya existe.
func (r *RoleRepo) Create(ctx context.Context, role *entity.Role) error {
	query := `
		INSERT INTO roles (` + roleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		role.ID, role.Name, role.Description, role.Permissions, role.IsActive,
		role.CreatedBy, role.CreatedAt, role.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRole
		}
		return fmt.Errorf("insert role: %w", err)
	}
	return nil
}

// GetByID obtiene un rol por ID.
func (r *RoleRepo) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	return r.scanOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
}

// GetByName obtiene un rol por nombre.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (*entity.Role, error) {
	return r.scanOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name)
}

// GetByNameForUpdate obtiene un rol por nombre bloqueando la fila.
func (r *RoleRepo) GetByNameForUpdate(ctx context.Context, name string) (*entity.Role, error) {
	return r.scanOne(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1 FOR UPDATE`, name)
}

func (r *RoleRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.Role, error) {
	role, err := scanRole(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

func scanRole(row pgx.Row) (*entity.Role, error) {
	var role entity.Role
	if err := row.Scan(
		&role.ID, &role.Name, &role.Description, &role.Permissions, &role.IsActive,
		&role.CreatedBy, &role.CreatedAt, &role.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &role, nil
}

// List devuelve todos los roles ordenados por nombre ascendente.
func (r *RoleRepo) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.q.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		list = append(list, role)
	}
	return list, rows.Err()
}

// ReplacePermissions sustituye la matriz completa. Dos ediciones concurrentes: gana la última, nunca se mezclan.
func (r *RoleRepo) ReplacePermissions(ctx context.Context, id string, permissions entity.PermissionMatrix) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE roles SET permissions = $2, updated_at = now() WHERE id = $1`,
		id, permissions,
	)
	if err != nil {
		return fmt.Errorf("replace role permissions: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive activa o desactiva un rol.
func (r *RoleRepo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE roles SET is_active = $2, updated_at = now() WHERE id = $1`,
		id, active,
	)
	if err != nil {
		return fmt.Errorf("set role active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
