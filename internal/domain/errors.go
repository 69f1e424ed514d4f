package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrForbidden          = errors.New("acceso denegado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")

	// Autenticación y resolución del principal.
	ErrIncorrectCredentials = errors.New("correo o contraseña incorrectos")
	ErrInvalidCredential    = errors.New("credencial inválida o expirada")
	ErrPrincipalNotFound    = errors.New("el usuario del token ya no existe")
	ErrRoleNotFound         = errors.New("el rol asignado no existe")
	ErrAccountDeactivated   = errors.New("cuenta desactivada")
	ErrAccountLocked        = errors.New("cuenta bloqueada temporalmente por intentos fallidos")

	// Roles y autorización.
	ErrDuplicateRole          = errors.New("el rol ya existe")
	ErrInvalidPermissionShape = errors.New("matriz de permisos con claves desconocidas")
	ErrUnknownPermission      = errors.New("permiso desconocido")
	ErrInsufficientPermission = errors.New("permisos insuficientes")
	ErrNotAuthenticated       = errors.New("no autenticado")
	ErrRoleInactive           = errors.New("rol inactivo")
)
