package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ActivatePendingUserMessage moves a verified registrant from pending_users
// to users. The identifier must come from an authenticated source (session
// cookie or verified token subject), never from request input.
type ActivatePendingUserMessage struct {
	UserID     uuid.UUID `json:"user_id"`
	OnResponse func(r *ActivationResult)
}

func (e ActivatePendingUserMessage) Type() string { return "user.activate_pending" }

// ActivationResult enumerates every activation step. All steps run in a
// single transaction, so a partially-true result can never be observed by a
// later reader; the flags exist so callers can log exactly what happened.
type ActivationResult struct {
	User           *User `json:"user,omitempty"`
	UserCreated    bool  `json:"user_created"`
	ProfileCreated bool  `json:"profile_created"`
	PendingRemoved bool  `json:"pending_removed"`
}

type ActivatePendingUserHandler struct {
	repo RepositoryManager
}

func NewActivatePendingUserHandler(repo RepositoryManager) *ActivatePendingUserHandler {
	return &ActivatePendingUserHandler{repo: repo}
}

func (h *ActivatePendingUserHandler) Execute(ctx context.Context, event ActivatePendingUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during pending user activation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ActivatePendingUserHandler) execute(ctx context.Context, event ActivatePendingUserMessage) error {
	if event.UserID == uuid.Nil {
		return goerrors.New("activation requires a user id", goerrors.CategoryBadInput)
	}

	result := &ActivationResult{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		pending, err := h.repo.PendingUsers().GetByIDTx(ctx, tx, event.UserID.String())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				// clone before attaching metadata, the sentinel is shared
				return ErrNoPendingUser.Clone().WithMetadata(map[string]any{
					"user_id": event.UserID.String(),
				})
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve pending user")
		}

		user, err := h.repo.Users().CreateTx(ctx, tx, pending.ToUser())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}
		result.User = user
		result.UserCreated = true

		if pending.Role == RoleAthlete {
			level := pending.ExperienceLevel
			if level == "" {
				level = ExperienceBeginner
			}
			profile := &AthleteProfile{
				ID:              uuid.New(),
				UserID:          &user.ID,
				ExperienceLevel: level,
			}
			if _, err := h.repo.AthleteProfiles().CreateTx(ctx, tx, profile); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create athlete profile")
			}
			result.ProfileCreated = true
		}

		if err := h.repo.PendingUsers().DeleteTx(ctx, tx, pending); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not remove pending user")
		}
		result.PendingRemoved = true

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "pending user activation failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(result)
	}

	return nil
}
