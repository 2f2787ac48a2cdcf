package accounts

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	PendingUsers() PendingUsers
	AthleteProfiles() repository.Repository[*AthleteProfile]
	CoachProfiles() CoachProfiles
}

type mngr struct {
	db              *bun.DB
	users           Users
	pendingUsers    PendingUsers
	athleteProfiles repository.Repository[*AthleteProfile]
	coachProfiles   CoachProfiles
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:              db,
		users:           NewUsersRepository(db),
		pendingUsers:    NewPendingUsersRepository(db),
		athleteProfiles: NewAthleteProfilesRepository(db),
		coachProfiles:   NewCoachProfilesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.pendingUsers == nil {
		return errors.New("repository pendingUsers should be initialized")
	}

	if m.athleteProfiles == nil {
		return errors.New("repository athleteProfiles should be initialized")
	}

	if m.coachProfiles == nil {
		return errors.New("repository coachProfiles should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) PendingUsers() PendingUsers {
	return m.pendingUsers
}

func (m mngr) AthleteProfiles() repository.Repository[*AthleteProfile] {
	return m.athleteProfiles
}

func (m mngr) CoachProfiles() CoachProfiles {
	return m.coachProfiles
}
