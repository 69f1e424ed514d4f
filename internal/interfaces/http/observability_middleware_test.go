package http_test

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/tienda-admin-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-admin-api/pkg/logger"
)

func TestRequestObserver_ErrorInternoSeLogueaConLaCausa(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "test", Level: "debug", Output: &buf})

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Use(apphttp.RequestObserver(log, nil))
	app.Get("/falla", func(c *fiber.Ctx) error {
		return errors.New("conexión rechazada")
	})
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/falla", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL", errorCode(t, body))
	assert.NotContains(t, string(body), "conexión rechazada", "la causa no llega al cliente")

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"error":"conexión rechazada"`)
	assert.Contains(t, out, `"path":"/falla"`)

	buf.Reset()
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotContains(t, buf.String(), `"error"`)
}
