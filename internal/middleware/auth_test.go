package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/VtlBz/foodgram-project/internal/services"
	"github.com/VtlBz/foodgram-project/internal/testsupport"
	"github.com/VtlBz/foodgram-project/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	db := testsupport.NewDB(t)
	tokens, err := services.NewTokenService("middleware-test-secret", time.Hour, "foodgram")
	require.NoError(t, err)
	user := testsupport.CreateUser(t, db, "vasya")
	token, err := tokens.Issue(user.ID)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorResponse})
	app.Use(RequestLogger(), Authenticate(db, tokens))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		if u := CurrentUser(c); u != nil {
			return c.SendString(u.Username)
		}
		return c.SendString("anonymous")
	})
	app.Get("/private", RequireUser(), func(c *fiber.Ctx) error {
		assert.NotNil(t, CurrentToken(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"anonymous", "/whoami", "", http.StatusOK, "anonymous"},
		{"token scheme", "/whoami", "Token " + token, http.StatusOK, "vasya"},
		{"bearer scheme", "/whoami", "Bearer " + token, http.StatusOK, "vasya"},
		{"unknown scheme", "/whoami", "Basic " + token, http.StatusOK, "anonymous"},
		{"invalid token", "/whoami", "Token nope", http.StatusUnauthorized, ""},
		{"private anonymous", "/private", "", http.StatusUnauthorized, ""},
		{"private", "/private", "Token " + token, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.body != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.body, string(body))
			}
		})
	}
}
