package accounts_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/peakform/backend/internal/accounts"
)

func seedPending(t *testing.T, repo accounts.RepositoryManager, pending *accounts.PendingUser) *accounts.PendingUser {
	t.Helper()

	created, err := repo.PendingUsers().Create(context.Background(), pending)
	if err != nil {
		t.Fatalf("failed to seed pending user: %v", err)
	}
	return created
}

func TestActivateAthleteCreatesUserAndProfile(t *testing.T) {
	t.Parallel()

	repo, db := setupRepo(t)
	ctx := context.Background()

	id := uuid.New()
	seedPending(t, repo, &accounts.PendingUser{
		ID:              id,
		Email:           "a@b.com",
		Role:            accounts.RoleAthlete,
		FirstName:       "Pepe",
		LastName:        "Rone",
		ExperienceLevel: accounts.ExperienceBeginner,
	})

	var result *accounts.ActivationResult
	handler := accounts.NewActivatePendingUserHandler(repo)
	err := handler.Execute(ctx, accounts.ActivatePendingUserMessage{
		UserID: id,
		OnResponse: func(r *accounts.ActivationResult) {
			result = r
		},
	})
	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.True(t, result.UserCreated)
	assert.True(t, result.ProfileCreated)
	assert.True(t, result.PendingRemoved)

	user, err := repo.Users().GetByEmail(ctx, "a@b.com")
	assert.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, accounts.RoleAthlete, user.Role)
	assert.Equal(t, "Pepe", user.FirstName)
	assert.Equal(t, "Rone", user.LastName)
	assert.True(t, user.EmailVerified)

	profile := &accounts.AthleteProfile{}
	err = db.NewSelect().Model(profile).Where("user_id = ?", id).Scan(ctx)
	assert.NoError(t, err)
	assert.Equal(t, accounts.ExperienceBeginner, profile.ExperienceLevel)

	_, err = repo.PendingUsers().GetByID(ctx, id.String())
	assert.True(t, repository.IsRecordNotFound(err), "pending row should be gone, got %v", err)
}

func TestActivateCoachSkipsAthleteProfile(t *testing.T) {
	t.Parallel()

	repo, db := setupRepo(t)
	ctx := context.Background()

	id := uuid.New()
	seedPending(t, repo, &accounts.PendingUser{
		ID:        id,
		Email:     "coach@b.com",
		Role:      accounts.RoleCoach,
		FirstName: "Ada",
		LastName:  "Stone",
	})

	var result *accounts.ActivationResult
	handler := accounts.NewActivatePendingUserHandler(repo)
	err := handler.Execute(ctx, accounts.ActivatePendingUserMessage{
		UserID: id,
		OnResponse: func(r *accounts.ActivationResult) {
			result = r
		},
	})
	assert.NoError(t, err)
	assert.True(t, result.UserCreated)
	assert.False(t, result.ProfileCreated)
	assert.True(t, result.PendingRemoved)

	assert.Equal(t, 0, countRows(t, db, (*accounts.AthleteProfile)(nil)))
}

func TestActivateWithoutPendingRowIsNotFound(t *testing.T) {
	t.Parallel()

	repo, db := setupRepo(t)
	ctx := context.Background()

	handler := accounts.NewActivatePendingUserHandler(repo)
	err := handler.Execute(ctx, accounts.ActivatePendingUserMessage{
		UserID: uuid.New(),
		OnResponse: func(r *accounts.ActivationResult) {
			t.Error("OnResponse must not run on failure")
		},
	})

	assert.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err), "expected not-found, got %v", err)

	assert.Equal(t, 0, countRows(t, db, (*accounts.User)(nil)))
}

func TestActivateTwiceIsSafeNoOp(t *testing.T) {
	t.Parallel()

	repo, db := setupRepo(t)
	ctx := context.Background()

	id := uuid.New()
	seedPending(t, repo, &accounts.PendingUser{
		ID:        id,
		Email:     "twice@b.com",
		Role:      accounts.RoleAthlete,
		FirstName: "Twice",
		LastName:  "Over",
	})

	handler := accounts.NewActivatePendingUserHandler(repo)
	msg := accounts.ActivatePendingUserMessage{UserID: id}

	assert.NoError(t, handler.Execute(ctx, msg))

	err := handler.Execute(ctx, msg)
	assert.True(t, goerrors.IsNotFound(err), "second activation should be not-found, got %v", err)

	// the first run's writes are untouched
	assert.Equal(t, 1, countRows(t, db, (*accounts.User)(nil)))
}

func TestActivateNotFoundErrorsDoNotShareState(t *testing.T) {
	t.Parallel()

	repo, _ := setupRepo(t)
	ctx := context.Background()
	handler := accounts.NewActivatePendingUserHandler(repo)

	firstID := uuid.New()
	secondID := uuid.New()

	firstErr := handler.Execute(ctx, accounts.ActivatePendingUserMessage{UserID: firstID})
	secondErr := handler.Execute(ctx, accounts.ActivatePendingUserMessage{UserID: secondID})

	var first, second *goerrors.Error
	assert.True(t, goerrors.As(firstErr, &first))
	assert.True(t, goerrors.As(secondErr, &second))

	// each caller gets its own error value; the shared sentinel stays clean
	assert.NotSame(t, first, second)
	assert.NotSame(t, accounts.ErrNoPendingUser, first)
	assert.Equal(t, firstID.String(), first.Metadata["user_id"])
	assert.Equal(t, secondID.String(), second.Metadata["user_id"])
	assert.Empty(t, accounts.ErrNoPendingUser.Metadata)
}

func TestActivateRequiresUserID(t *testing.T) {
	t.Parallel()

	repo, _ := setupRepo(t)
	handler := accounts.NewActivatePendingUserHandler(repo)
	err := handler.Execute(context.Background(), accounts.ActivatePendingUserMessage{})
	assert.Error(t, err)
}
