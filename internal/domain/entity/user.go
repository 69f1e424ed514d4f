package entity

import "time"

// User cuenta de administración. Los campos de bloqueo los actualiza cada intento de login.
type User struct {
	ID            string
	Email         string // siempre en minúsculas
	PasswordHash  string // bcrypt hash, nunca plano en dominio después de persistir
	Name          string
	RoleID        string
	IsActive      bool
	LoginAttempts int
	LockUntil     *time.Time
	LastLogin     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLocked informa si la cuenta sigue bloqueada en el instante now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && now.Before(*u.LockUntil)
}
