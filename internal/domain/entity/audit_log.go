package entity

import "time"

// AuditLog registro inmutable de una mutación administrativa.
type AuditLog struct {
	ID        string
	UserID    *string // nil para acciones del sistema (bootstrap)
	Entity    string  // "role", "user", "settings", "session"
	EntityID  string
	Action    string // "create", "update_permissions", "login", ...
	Details   string
	CreatedAt time.Time
}
