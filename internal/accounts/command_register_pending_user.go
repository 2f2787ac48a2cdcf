package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterPendingUserMessage creates the unconfirmed registrant row. Values
// are expected to be sanitized and validated at the HTTP boundary.
type RegisterPendingUserMessage struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone_number"`
	Role            string `json:"user_role"`
	ExperienceLevel string `json:"experience_level"`
	Password        string `json:"password"`
	OnResponse      func(p *PendingUser)
}

func (e RegisterPendingUserMessage) Type() string { return "user.register_pending" }

type RegisterPendingUserHandler struct {
	repo RepositoryManager
}

func NewRegisterPendingUserHandler(repo RepositoryManager) *RegisterPendingUserHandler {
	return &RegisterPendingUserHandler{repo: repo}
}

func (h *RegisterPendingUserHandler) Execute(ctx context.Context, event RegisterPendingUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterPendingUserHandler) execute(ctx context.Context, event RegisterPendingUserMessage) error {
	pending := &PendingUser{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email); err == nil {
			// clone before attaching metadata, the sentinel is shared
			return ErrDuplicateAccount.Clone().WithMetadata(map[string]any{
				"email": event.Email,
			})
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing user")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		pending.Email = event.Email
		pending.Role = event.Role
		pending.FirstName = event.FirstName
		pending.LastName = event.LastName
		pending.Phone = event.Phone
		pending.PasswordHash = hash
		pending.ExperienceLevel = event.ExperienceLevel

		// Deterministic id: re-submitting the same email maps to the same
		// identifier instead of piling up pending rows.
		if id, err := hashid.NewUUID(event.Email); err == nil {
			pending.ID = id
		}

		if pending, err = h.repo.PendingUsers().CreateTx(ctx, tx, pending); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create pending user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "registration transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(pending)
	}

	return nil
}
