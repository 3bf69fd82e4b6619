package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/inkwell-io/blog-service/internal/api/http"
	"github.com/inkwell-io/blog-service/internal/api/http/handlers"
	"github.com/inkwell-io/blog-service/internal/auth"
	"github.com/inkwell-io/blog-service/internal/config"
	"github.com/inkwell-io/blog-service/internal/domain"
	"github.com/inkwell-io/blog-service/internal/observability"
	"github.com/inkwell-io/blog-service/internal/service"
	"github.com/inkwell-io/blog-service/internal/storage"
)

// memoryUserRepo backs the transport tests without Postgres. Email
// uniqueness is enforced under a lock, like the real unique index.
type memoryUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	r.seq++
	user.ID = "user-" + strconv.Itoa(r.seq)
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

func (r *memoryUserRepo) AdjustPostCount(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PostCount += delta
	return nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			TokenTTLHours: 24,
			BcryptCost:    bcrypt.MinCost,
		},
		Upload: config.UploadConfig{
			MaxAvatarBytes:    500_000,
			MaxThumbnailBytes: 2_000_000,
		},
	}

	logger := zap.NewNop()
	uploads, err := storage.NewUploadStore(t.TempDir(), logger)
	require.NoError(t, err)

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo: newMemoryUserRepo(),
		Uploads:  uploads,
		Logger:   logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)

	api := app.Group("/api/users")
	usersHandler := handlers.NewUsersHandler(authService)
	gate := auth.NewMiddleware(authService.TokenManager())
	api.Post("/register", usersHandler.Register)
	api.Post("/login", usersHandler.Login)
	api.Patch("/edit-user", gate.Handle, usersHandler.EditUser)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body map[string]any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestRegisterLoginFlow(t *testing.T) {
	app := newTestApp(t)

	resp, body := postJSON(t, app, "/api/users/register", map[string]any{
		"name":      "Alice",
		"email":     "alice@x.com",
		"password":  "secret1",
		"password2": "secret1",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	resp, body = postJSON(t, app, "/api/users/login", map[string]any{
		"email":    "ALICE@x.com",
		"password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)

	data := body["data"].(map[string]any)
	token := data["auth"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)
}

func TestRegisterDuplicateEmailStatus(t *testing.T) {
	app := newTestApp(t)

	payload := map[string]any{
		"name": "Alice", "email": "alice@x.com",
		"password": "secret1", "password2": "secret1",
	}
	resp, _ := postJSON(t, app, "/api/users/register", payload, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	payload["name"] = "Alice2"
	payload["email"] = "ALICE@x.com"
	resp, body := postJSON(t, app, "/api/users/register", payload, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, "DUPLICATE_EMAIL", body["error"].(map[string]any)["code"])
}

func TestLoginFailureStatus(t *testing.T) {
	app := newTestApp(t)

	resp, body := postJSON(t, app, "/api/users/login", map[string]any{
		"email": "ghost@x.com", "password": "whatever",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "INVALID_CREDENTIALS", body["error"].(map[string]any)["code"])
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/users/edit-user", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEditUserWithToken(t *testing.T) {
	app := newTestApp(t)

	_, _ = postJSON(t, app, "/api/users/register", map[string]any{
		"name": "Alice", "email": "alice@x.com",
		"password": "secret1", "password2": "secret1",
	}, nil)
	_, loginBody := postJSON(t, app, "/api/users/login", map[string]any{
		"email": "alice@x.com", "password": "secret1",
	}, nil)
	token := loginBody["data"].(map[string]any)["auth"].(map[string]any)["token"].(string)

	payload, err := json.Marshal(map[string]any{
		"name":             "Alice B",
		"email":            "alice@x.com",
		"current_password": "secret1",
		"new_password":     "secret2",
		"new_password2":    "secret2",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/api/users/edit-user", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	user := body["data"].(map[string]any)["user"].(map[string]any)
	require.Equal(t, "Alice B", user["name"])
}
