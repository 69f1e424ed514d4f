package lockout

import (
	"time"

	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
)

// Policy máquina de estados Unlocked / Locked(until) aplicada a cada intento de login.
// Las mutaciones se aplican sobre un usuario leído con bloqueo de fila; el llamador persiste el resultado.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
}

// Check rechaza con ErrAccountLocked mientras now < LockUntil, sin mirar la contraseña.
func (p Policy) Check(u *entity.User, now time.Time) error {
	if u.IsLocked(now) {
		return domain.ErrAccountLocked
	}
	return nil
}

// RegisterFailure incrementa el contador y bloquea al alcanzar MaxAttempts.
// Si había un bloqueo ya vencido, el contador vuelve a empezar desde este intento.
// Devuelve true si este intento dejó la cuenta bloqueada.
func (p Policy) RegisterFailure(u *entity.User, now time.Time) bool {
	if u.LockUntil != nil && !now.Before(*u.LockUntil) {
		u.LoginAttempts = 0
		u.LockUntil = nil
	}
	u.LoginAttempts++
	u.UpdatedAt = now
	if u.LoginAttempts >= p.MaxAttempts {
		until := now.Add(p.Window)
		u.LockUntil = &until
		return true
	}
	return false
}

// RegisterSuccess limpia contador y bloqueo y registra el último acceso.
func (p Policy) RegisterSuccess(u *entity.User, now time.Time) {
	u.LoginAttempts = 0
	u.LockUntil = nil
	u.LastLogin = &now
	u.UpdatedAt = now
}

// Reset desbloqueo administrativo.
func (p Policy) Reset(u *entity.User, now time.Time) {
	u.LoginAttempts = 0
	u.LockUntil = nil
	u.UpdatedAt = now
}
