package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	apperrors "github.com/inkwell-io/blog-service/pkg/util"
)

func newGatedApp(t *testing.T, tm *TokenManager) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})
	app.Get("/protected", NewMiddleware(tm).Handle, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"sub": principal.SubjectID, "name": principal.Name})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	app := newGatedApp(t, tm)

	token, _, err := tm.Generate("user-1", "Alice")
	require.NoError(t, err)

	resp := doRequest(t, app, "Bearer "+token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMiddlewareMissingHeader(t *testing.T) {
	app := newGatedApp(t, NewTokenManager("test-secret", time.Hour))

	resp := doRequest(t, app, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareSchemeIsCaseSensitive(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	app := newGatedApp(t, tm)

	token, _, err := tm.Generate("user-1", "Alice")
	require.NoError(t, err)

	// A valid token behind a lower-cased scheme keyword is still rejected.
	for _, header := range []string{"bearer " + token, "BEARER " + token, "Token " + token, "Bearer" + token} {
		resp := doRequest(t, app, header)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "header %q", header)
	}
}

func TestMiddlewareRejectsForeignSignature(t *testing.T) {
	foreign := NewTokenManager("other-secret", time.Hour)
	token, _, err := foreign.Generate("user-1", "Alice")
	require.NoError(t, err)

	app := newGatedApp(t, NewTokenManager("test-secret", time.Hour))
	resp := doRequest(t, app, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	claims := &Claims{
		Name: "Alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	app := newGatedApp(t, NewTokenManager("test-secret", time.Hour))
	resp := doRequest(t, app, "Bearer "+expired)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMiddlewareStateless(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	app := newGatedApp(t, tm)

	token, _, err := tm.Generate("user-1", "Alice")
	require.NoError(t, err)

	// Same still-valid token is treated identically on every request.
	for i := 0; i < 3; i++ {
		resp := doRequest(t, app, "Bearer "+token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
}
