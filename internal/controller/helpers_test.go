package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "controller-test-secret"

type routeRegistrar interface {
	RegisterRoutes(r fiber.Router)
}

func newTestApp(t *testing.T, controllers ...routeRegistrar) *fiber.App {
	t.Helper()
	t.Setenv("JWT_SECRET", testJWTSecret)

	app := fiber.New()
	for _, c := range controllers {
		c.RegisterRoutes(app)
	}
	return app
}

func signTestToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"email":   "user@example.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
