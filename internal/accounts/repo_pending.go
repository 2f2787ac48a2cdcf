package accounts

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PendingUsers is the repository for unconfirmed registrants.
type PendingUsers interface {
	repository.Repository[*PendingUser]

	GetByEmail(ctx context.Context, email string) (*PendingUser, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*PendingUser, error)
}

type pendingUsers struct {
	repository.Repository[*PendingUser]
	db *bun.DB
}

var _ PendingUsers = (*pendingUsers)(nil)

func NewPendingUsersRepository(db *bun.DB) PendingUsers {
	repo := repository.NewRepository[*PendingUser](db, repository.ModelHandlers[*PendingUser]{
		NewRecord: func() *PendingUser { return &PendingUser{} },
		GetID: func(p *PendingUser) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *PendingUser, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &pendingUsers{
		Repository: repo,
		db:         db,
	}
}

func (a *pendingUsers) GetByEmail(ctx context.Context, email string) (*PendingUser, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *pendingUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*PendingUser, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	record := &PendingUser{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}
