package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/inkwell-io/blog-service/pkg/util"
)

const principalKey = "auth_principal"

// The scheme keyword is matched case-sensitively, trailing space included.
const bearerPrefix = "Bearer "

// Principal is the authenticated identity for the current request,
// reconstructed from token claims alone. The gate is stateless: no session
// store, no per-request user lookup, and two requests carrying the same
// still-valid token are treated identically.
type Principal struct {
	SubjectID string
	Name      string
}

// Middleware validates bearer tokens on protected routes.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs the request gate.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes. It rejects the
// request before any handler logic runs unless the Authorization header
// carries a verifiable, unexpired token.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	token, found := strings.CutPrefix(authHeader, bearerPrefix)
	if !found || token == "" {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return apperrors.NewTokenExpired()
		}
		return apperrors.NewInvalidToken()
	}

	c.Locals(principalKey, &Principal{
		SubjectID: claims.SubjectID(),
		Name:      claims.Name,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated identity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
