package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Models lists every bun model this package owns, in dependency order.
func Models() []any {
	return []any{
		(*User)(nil),
		(*PendingUser)(nil),
		(*AthleteProfile)(nil),
		(*CoachProfile)(nil),
	}
}

// CreateTables bootstraps the schema. Used by tests and by the server's
// bootstrap flag; production deployments run real migrations instead.
func CreateTables(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create table")
		}
	}
	return nil
}
