package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func middlewareApp() *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())

	app.Get("/upgrade-only", func(ctx *fiber.Ctx) error {
		return fiber.ErrUpgradeRequired
	})
	app.Get("/broken", func(ctx *fiber.Ctx) error {
		return errors.New("connection reset by peer")
	})
	app.Get("/panics", func(ctx *fiber.Ctx) error {
		panic("boom")
	})
	return app
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := middlewareApp()

	t.Run("unknown path keeps the router's 404", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/no/such/route", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("status-carrying errors pass through", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/upgrade-only", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("plain errors demote to a generic 500", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/broken", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)

		body := decodeJSON(t, resp)
		assert.Equal(t, "Internal server error", body["error"])
	})

	t.Run("panics demote to a generic 500", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/panics", nil))
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)

		body := decodeJSON(t, resp)
		assert.Equal(t, "Internal server error", body["error"])
	})
}
