package httpserver

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/peakform/backend/internal/token"
)

// ErrNotAuthenticated covers every way a session cookie can fail: absent,
// expired, malformed, or carrying the wrong purpose. Callers get one
// uniform answer so the response does not leak which check failed.
var ErrNotAuthenticated = errors.New("Not authenticated", errors.CategoryAuth).
	WithTextCode("NOT_AUTHENTICATED")

// Identity is the authenticated caller, derived exactly once at the request
// boundary and passed explicitly into commands. Handlers never read auth
// state from ambient context.
type Identity struct {
	UserID uuid.UUID
}

func (s *Server) identityFromRequest(c *fiber.Ctx) (Identity, error) {
	raw := c.Cookies(s.cfg.Auth.CookieName)
	if raw == "" {
		return Identity{}, ErrNotAuthenticated
	}

	claims, err := s.tokens.Verify(raw, token.PurposeSession)
	if err != nil {
		return Identity{}, ErrNotAuthenticated
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, ErrNotAuthenticated
	}

	return Identity{UserID: uid}, nil
}

func (s *Server) setSessionCookie(c *fiber.Ctx, signed string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cfg.Auth.CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
