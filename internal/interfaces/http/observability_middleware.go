package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tienda-admin-api/pkg/logger"
	"github.com/jhoicas/tienda-admin-api/pkg/metrics"
)

// RequestObserver registra latencia y status por ruta (patrón, no path concreto) y deja una línea de log por petición.
// Los 500 incluyen la causa que dejó writeError.
func RequestObserver(log *logger.Logger, m *metrics.Metrics) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// deja que el ErrorHandler de la app fije el status antes de medir
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		if m != nil {
			m.ObserveRequest(c.Method(), route, strconv.Itoa(status), elapsed)
		}
		ev := log.Debug()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		if cause, ok := c.Locals(localInternalError).(error); ok {
			ev = ev.Err(cause)
		}
		ev.Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("elapsed", elapsed).
			Str("user_id", GetUserID(c)).
			Msg("request")
		return err
	}
}

func requestID(c *fiber.Ctx) string {
	if v, ok := c.Locals("requestid").(string); ok {
		return v
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
