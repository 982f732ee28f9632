package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/VtlBz/foodgram-project/internal/config"
	"github.com/VtlBz/foodgram-project/internal/handlers"
	"github.com/VtlBz/foodgram-project/internal/models"
	"github.com/VtlBz/foodgram-project/internal/services"
	"github.com/VtlBz/foodgram-project/internal/storage"
	"github.com/VtlBz/foodgram-project/internal/testsupport"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const pngURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type testServer struct {
	app    *fiber.App
	db     *gorm.DB
	tokens *services.TokenService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Defaults()
	cfg.DBType = "sqlite-pure"
	cfg.DBDatabase = ":memory:"
	cfg.SecretKey = "handler-test-secret-value"
	cfg.MediaRoot = t.TempDir()

	db := testsupport.NewDB(t)
	store, err := storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	require.NoError(t, err)
	tokens, err := services.NewTokenService(cfg.SecretKey, time.Hour, cfg.TokenIssuer)
	require.NoError(t, err)

	app := handlers.NewApp(handlers.Deps{Config: cfg, DB: db, Store: store, Tokens: tokens})
	return &testServer{app: app, db: db, tokens: tokens}
}

func (s *testServer) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := s.tokens.Issue(user.ID)
	require.NoError(t, err)
	return token
}

// do sends a request and returns the response with its body read.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return out
}

type object = map[string]interface{}

type page struct {
	Count    int64    `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []object `json:"results"`
}

func newRequest(method, path, authorization string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	return req
}
