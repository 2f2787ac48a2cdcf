package httpserver

import (
	"fmt"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"

	"github.com/peakform/backend/internal/accounts"
	"github.com/peakform/backend/internal/mailer"
	"github.com/peakform/backend/internal/sanitize"
	"github.com/peakform/backend/internal/token"
)

// AuthCallback lands email verification links. With a token_hash/type pair
// it verifies the token and activates the pending account; without one it
// acts as a plain auth redirect toward `next`.
func (s *Server) AuthCallback(c *fiber.Ctx) error {
	tokenHash := c.Query("token_hash")
	verificationType := c.Query("type")

	if tokenHash == "" || verificationType == "" {
		return c.Redirect(s.safeNext(c.Query("next")), fiber.StatusFound)
	}

	if verificationType != token.PurposeEmail {
		return s.redirectVerifyError(c, "unsupported verification type")
	}

	claims, err := s.tokens.Verify(tokenHash, token.PurposeEmail)
	if err != nil {
		return s.redirectVerifyError(c, publicMessage(err))
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return s.redirectVerifyError(c, "invalid verification token")
	}

	err = s.activate.Execute(c.UserContext(), accounts.ActivatePendingUserMessage{
		UserID: uid,
	})
	if err != nil && !goerrors.IsNotFound(err) {
		s.logger.Error("activation failed during verification callback",
			"user_id", uid.String(), "error", err)
		q := url.Values{}
		q.Set("error", "server_error")
		return c.Redirect(s.signInURL(q), fiber.StatusFound)
	}

	// not-found here means the link was followed again after a successful
	// activation: the account is already live
	message := "Email verified successfully. You can now sign in."
	if goerrors.IsNotFound(err) {
		message = "Email already verified. You can sign in."
	}

	q := url.Values{}
	q.Set("verified", "true")
	q.Set("message", message)
	return c.Redirect(s.signInURL(q), fiber.StatusFound)
}

func (s *Server) redirectVerifyError(c *fiber.Ctx, message string) error {
	q := url.Values{}
	q.Set("error", "verification_failed")
	q.Set("message", message)
	return c.Redirect(s.signInURL(q), fiber.StatusFound)
}

func (s *Server) signInURL(q url.Values) string {
	return s.cfg.Auth.SignInPath + "?" + q.Encode()
}

// safeNext constrains redirect targets to relative, single-slash paths.
// Anything else falls back to the configured dashboard path.
func (s *Server) safeNext(next string) string {
	fallback := trimOrDefault(s.cfg.Auth.DefaultRedirect, "/dashboard")

	next = strings.TrimSpace(next)
	if next == "" {
		return fallback
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	if u, err := url.Parse(next); err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}

// SignupRequest is the registration payload, populated from the sanitized
// form body.
type SignupRequest struct {
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Email           string `form:"email" json:"email"`
	Phone           string `form:"phone_number" json:"phone_number"`
	Role            string `form:"user_role" json:"user_role"`
	ExperienceLevel string `form:"experience_level" json:"experience_level"`
	Password        string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Role, validation.Required, validation.In(accounts.RoleAthlete, accounts.RoleCoach)),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(&r.ExperienceLevel, validation.By(r.checkExperienceLevel)),
	)
}

func (r SignupRequest) checkExperienceLevel(any) error {
	if r.Role != accounts.RoleAthlete {
		return nil
	}
	if !accounts.ValidExperienceLevel(r.ExperienceLevel) {
		return fmt.Errorf("must be one of beginner, intermediate, advanced")
	}
	return nil
}

func (s *Server) SignupPost(c *fiber.Ctx) error {
	raw := map[string]any{}
	if err := c.BodyParser(&raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse payload",
		})
	}

	clean := sanitize.FormData(raw)
	payload := SignupRequest{
		FirstName:       stringAt(clean, "first_name"),
		LastName:        stringAt(clean, "last_name"),
		Email:           stringAt(clean, "email"),
		Phone:           stringAt(clean, "phone_number"),
		Role:            stringAt(clean, "user_role"),
		ExperienceLevel: stringAt(clean, "experience_level"),
		Password:        stringAt(clean, "password"),
	}

	if s.Debug {
		fmt.Println("======= AUTH SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(payload.redacted()))
		fmt.Println("==========================")
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var created *accounts.PendingUser
	err := s.register.Execute(c.UserContext(), accounts.RegisterPendingUserMessage{
		FirstName:       payload.FirstName,
		LastName:        payload.LastName,
		Email:           payload.Email,
		Phone:           payload.Phone,
		Role:            payload.Role,
		ExperienceLevel: payload.ExperienceLevel,
		Password:        payload.Password,
		OnResponse: func(p *accounts.PendingUser) {
			created = p
		},
	})
	if err != nil {
		return c.Status(statusFromError(err)).JSON(fiber.Map{
			"error": publicMessage(err),
		})
	}

	emailSent := true
	if err := s.sendVerificationEmail(c, created); err != nil {
		// the pending row exists and the operator can resend; signup itself
		// succeeded
		s.logger.Error("failed to send verification email",
			"user_id", created.ID.String(), "error", err)
		emailSent = false
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"id":         created.ID,
		"email_sent": emailSent,
	})
}

func (s *Server) sendVerificationEmail(c *fiber.Ctx, pending *accounts.PendingUser) error {
	signed, err := s.tokens.Mint(pending.ID.String(), token.PurposeEmail, s.cfg.Auth.GetVerificationTTL())
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/auth/callback?token_hash=%s&type=%s",
		strings.TrimRight(s.cfg.Auth.BaseURL, "/"),
		url.QueryEscape(signed),
		token.PurposeEmail,
	)

	return s.mail.Send(c.UserContext(), mailer.VerificationMessage(pending.Email, link))
}

// redacted strips the password for debug printing.
func (r SignupRequest) redacted() SignupRequest {
	r.Password = "[REDACTED]"
	return r
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (s *Server) LoginPost(c *fiber.Ctx) error {
	payload := LoginRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse payload",
		})
	}
	payload.Email = sanitize.Email(payload.Email)

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	user, err := s.repo.Users().GetByEmail(c.UserContext(), payload.Email)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := accounts.ComparePasswordAndHash(payload.Password, user.PasswordHash); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	ttl := s.cfg.Auth.GetSessionTTL()
	signed, err := s.tokens.Mint(user.ID.String(), token.PurposeSession, ttl)
	if err != nil {
		s.logger.Error("failed to mint session token", "user_id", user.ID.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	s.setSessionCookie(c, signed, ttl)
	return c.JSON(fiber.Map{"success": true})
}

func stringAt(record map[string]any, key string) string {
	if v, ok := record[key].(string); ok {
		return v
	}
	return ""
}
