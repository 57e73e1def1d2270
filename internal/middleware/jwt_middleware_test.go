package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"katalog/internal/middleware"
	"katalog/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware_test_secret"

func signed(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func newTestApp() *fiber.App {
	auth := services.NewAuthService(nil, secret, zerolog.Nop())
	app := fiber.New()
	app.Get("/whoami", middleware.AuthRequired(auth, zerolog.Nop()), func(c *fiber.Ctx) error {
		cred, ok := middleware.UserFromContext(c.UserContext())
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"user_id": cred.UserID, "username": cred.Username, "local": c.Locals("user_id")})
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp()
	valid := signed(t, jwt.MapClaims{"user_id": "u-1", "username": "rina", "exp": time.Now().Add(time.Hour).Unix()}, secret)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + valid, http.StatusUnauthorized},
		{"bad signature", "Bearer " + signed(t, jwt.MapClaims{"user_id": "u-1", "exp": time.Now().Add(time.Hour).Unix()}, "other"), http.StatusUnauthorized},
		{"expired", "Bearer " + signed(t, jwt.MapClaims{"user_id": "u-1", "exp": time.Now().Add(-time.Hour).Unix()}, secret), http.StatusUnauthorized},
		{"missing user_id", "Bearer " + signed(t, jwt.MapClaims{"username": "rina", "exp": time.Now().Add(time.Hour).Unix()}, secret), http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status == http.StatusOK {
				var body map[string]any
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "u-1", body["user_id"])
				assert.Equal(t, "rina", body["username"])
				assert.Equal(t, "u-1", body["local"])
			}
		})
	}
}

func TestUserFromContext(t *testing.T) {
	_, ok := middleware.UserFromContext(context.Background())
	assert.False(t, ok)

	ctx := middleware.WithUser(context.Background(), services.Credential{UserID: "u-2", Username: "budi"})
	cred, ok := middleware.UserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u-2", cred.UserID)
}
