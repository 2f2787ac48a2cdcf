package httpserver

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/peakform/backend/internal/accounts"
	"github.com/peakform/backend/internal/mailer"
	"github.com/peakform/backend/internal/sanitize"
)

// MigratePendingUser is the manual retry surface for activation. The
// identifier comes from the authenticated session, never from the request
// body, so a caller can only ever migrate themselves.
func (s *Server) MigratePendingUser(c *fiber.Ctx) error {
	identity, err := s.identityFromRequest(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	var result *accounts.ActivationResult
	err = s.activate.Execute(c.UserContext(), accounts.ActivatePendingUserMessage{
		UserID: identity.UserID,
		OnResponse: func(r *accounts.ActivationResult) {
			result = r
		},
	})
	if err != nil {
		if goerrors.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No pending user found",
			})
		}
		s.logger.Error("pending user migration failed",
			"user_id", identity.UserID.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": publicMessage(err),
		})
	}

	s.logger.Info("pending user activated",
		"user_id", identity.UserID.String(),
		"profile_created", result.ProfileCreated,
		"pending_removed", result.PendingRemoved,
	)

	return c.JSON(fiber.Map{"success": true})
}

// TestEmailRequest is the operator email check payload.
type TestEmailRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r TestEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (s *Server) SendTestEmail(c *fiber.Ctx) error {
	payload := TestEmailRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "unable to parse payload",
			"success": false,
		})
	}
	payload.Email = sanitize.Email(payload.Email)

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   err.Error(),
			"success": false,
		})
	}

	msg := mailer.TestMessage(payload.Email)
	if err := s.mail.Send(c.UserContext(), msg); err != nil {
		s.logger.Error("test email delivery failed", "to", payload.Email, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   publicMessage(err),
			"success": false,
		})
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"to":      payload.Email,
			"subject": msg.Subject,
		},
		"success": true,
	})
}

// CoachProfileRequest is the workspace profile payload. Array fields run
// through the sanitizer before validation.
type CoachProfileRequest struct {
	Qualifications   []string `json:"qualifications"`
	Specializations  []string `json:"specializations"`
	SubscriptionTier string   `json:"subscription_tier"`
	WorkspaceName    string   `json:"workspace_name"`
	Public           bool     `json:"is_public"`
}

// Validate will run validation rules
func (r CoachProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SubscriptionTier, validation.In("free", "pro", "elite")),
		validation.Field(&r.WorkspaceName, validation.Length(0, 100)),
	)
}

func (s *Server) UpsertCoachProfile(c *fiber.Ctx) error {
	identity, err := s.identityFromRequest(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}

	user, err := s.repo.Users().GetByID(c.UserContext(), identity.UserID.String())
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Not authenticated",
		})
	}
	if user.Role != accounts.RoleCoach {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Coach account required",
		})
	}

	raw := map[string]any{}
	if err := c.BodyParser(&raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to parse payload",
		})
	}

	clean := sanitize.FormData(raw)
	payload := CoachProfileRequest{
		Qualifications:   stringsAt(clean, "qualifications"),
		Specializations:  stringsAt(clean, "specializations"),
		SubscriptionTier: stringAt(clean, "subscription_tier"),
		WorkspaceName:    stringAt(clean, "workspace_name"),
		Public:           boolAt(clean, "is_public"),
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	record := &accounts.CoachProfile{
		UserID:           &user.ID,
		Qualifications:   payload.Qualifications,
		Specializations:  payload.Specializations,
		SubscriptionTier: trimOrDefault(payload.SubscriptionTier, "free"),
		WorkspaceName:    payload.WorkspaceName,
		Public:           payload.Public,
	}

	saved, err := s.repo.CoachProfiles().UpsertByUserID(c.UserContext(), record)
	if err != nil {
		s.logger.Error("coach profile upsert failed",
			"user_id", user.ID.String(), "error", err)
		return c.Status(statusFromError(err)).JSON(fiber.Map{
			"error": publicMessage(err),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"profile": saved,
	})
}

func stringsAt(record map[string]any, key string) []string {
	if v, ok := record[key].([]string); ok {
		return v
	}
	return nil
}

func boolAt(record map[string]any, key string) bool {
	v, ok := record[key].(bool)
	return ok && v
}
