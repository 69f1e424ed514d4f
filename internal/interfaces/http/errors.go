package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
)

// localInternalError causa de un 500; RequestObserver la añade a la línea de log de la petición.
const localInternalError = "internal_error"

// writeError traduce errores de casos de uso a HTTP. Los errores no tipados son fallos internos:
// se loguean y el cliente recibe un 500 genérico, nunca un 403.
func writeError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		c.Locals(localInternalError, err)
		msg = "error interno, intente más tarde"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return fiber.StatusUnauthorized, "NOT_AUTHENTICATED"
	case errors.Is(err, domain.ErrIncorrectCredentials):
		return fiber.StatusUnauthorized, "INVALID_CREDENTIALS"
	case errors.Is(err, domain.ErrAccountLocked):
		return fiber.StatusLocked, "ACCOUNT_LOCKED"
	case errors.Is(err, domain.ErrAccountDeactivated):
		return fiber.StatusForbidden, "ACCOUNT_DEACTIVATED"
	case errors.Is(err, domain.ErrInsufficientPermission):
		return fiber.StatusForbidden, "INSUFFICIENT_PERMISSION"
	case errors.Is(err, domain.ErrRoleInactive):
		return fiber.StatusForbidden, "ROLE_INACTIVE"
	case errors.Is(err, domain.ErrUnknownPermission):
		return fiber.StatusForbidden, "UNKNOWN_PERMISSION"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrRoleNotFound):
		return fiber.StatusNotFound, "ROLE_NOT_FOUND"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidPermissionShape):
		return fiber.StatusBadRequest, "INVALID_PERMISSION_SHAPE"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrDuplicateRole):
		return fiber.StatusConflict, "DUPLICATE_ROLE"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, "EMAIL_EXISTS"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// badBody responde 400 a un fallo de BodyParser; una matriz con claves desconocidas produce INVALID_PERMISSION_SHAPE.
func badBody(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidPermissionShape) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PERMISSION_SHAPE", Message: err.Error()})
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// ErrorHandler manejador global de Fiber: rutas inexistentes, pánicos recuperados y errores no atendidos por los handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "HTTP_ERROR"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "ROUTE_NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return writeError(c, err)
}
