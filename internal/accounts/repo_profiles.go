package accounts

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewAthleteProfilesRepository(db *bun.DB) repository.Repository[*AthleteProfile] {
	handlers := repository.ModelHandlers[*AthleteProfile]{
		NewRecord: func() *AthleteProfile {
			return &AthleteProfile{}
		},
		GetID: func(record *AthleteProfile) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *AthleteProfile, id uuid.UUID) {
			record.ID = id
		},
	}
	return repository.NewRepository(db, handlers)
}

// CoachProfiles is the repository for coach workspace profiles. Profiles are
// keyed one-to-one by user id, so writes go through an upsert on that key.
type CoachProfiles interface {
	repository.Repository[*CoachProfile]

	GetByUserID(ctx context.Context, userID uuid.UUID) (*CoachProfile, error)
	UpsertByUserID(ctx context.Context, record *CoachProfile) (*CoachProfile, error)
}

type coachProfiles struct {
	repository.Repository[*CoachProfile]
	db *bun.DB
}

var _ CoachProfiles = (*coachProfiles)(nil)

func NewCoachProfilesRepository(db *bun.DB) CoachProfiles {
	repo := repository.NewRepository[*CoachProfile](db, repository.ModelHandlers[*CoachProfile]{
		NewRecord: func() *CoachProfile { return &CoachProfile{} },
		GetID: func(record *CoachProfile) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *CoachProfile, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
	})

	return &coachProfiles{
		Repository: repo,
		db:         db,
	}
}

func (a *coachProfiles) GetByUserID(ctx context.Context, userID uuid.UUID) (*CoachProfile, error) {
	record := &CoachProfile{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id": userID.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *coachProfiles) UpsertByUserID(ctx context.Context, record *CoachProfile) (*CoachProfile, error) {
	existing, err := a.GetByUserID(ctx, *record.UserID)
	if err != nil {
		if !repository.IsRecordNotFound(err) {
			return nil, err
		}
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		return a.Create(ctx, record)
	}

	record.ID = existing.ID
	return a.Update(ctx, record)
}
