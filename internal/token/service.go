// Package token mints and verifies the signed tokens the platform hands
// out: email verification links and session cookies. Tokens are HS256 JWTs
// tagged with a purpose claim so a verification link can never be replayed
// as a session.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

const (
	// PurposeEmail tags tokens embedded in verification links.
	PurposeEmail = "email"
	// PurposeSession tags tokens stored in the session cookie.
	PurposeSession = "session"
)

// ErrTokenExpired is returned for structurally valid but stale tokens.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed is returned when a token cannot be parsed or verified.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED")

// ErrPurposeMismatch is returned when a valid token carries the wrong
// purpose claim for the operation.
var ErrPurposeMismatch = errors.New("token purpose mismatch", errors.CategoryAuth).
	WithTextCode("TOKEN_PURPOSE_MISMATCH")

// Claims are the platform's JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose,omitempty"`
}

type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// Service signs and verifies platform tokens.
type Service struct {
	signingKey []byte
	issuer     string
	logger     Logger
}

type Option func(*Service)

func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(signingKey []byte, issuer string, opts ...Option) *Service {
	s := &Service{
		signingKey: signingKey,
		issuer:     issuer,
		logger:     noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Mint signs a token for the given subject and purpose.
func (s *Service) Mint(subject, purpose string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("token subject must not be empty", errors.CategoryBadInput)
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Purpose: purpose,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}
	return signed, nil
}

// Verify parses a raw token, checks the signature and issuer, and enforces
// the expected purpose.
func (s *Service) Verify(raw, purpose string) (*Claims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if s.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			s.logger.Error("token verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.Purpose != purpose {
		return nil, ErrPurposeMismatch
	}

	return claims, nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Error(string, ...any) {}
