package accounts_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/peakform/backend/internal/accounts"
)

var dbCounter atomic.Int64

// setupRepo opens a private in-memory database with the schema applied.
func setupRepo(t *testing.T) (accounts.RepositoryManager, *bun.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:accounts_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		db.Close()
	})

	if err := accounts.CreateTables(context.Background(), db); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}

	repo := accounts.NewRepositoryManager(db)
	repo.MustValidate()
	return repo, db
}

// countRows counts table rows for the given model.
func countRows(t *testing.T, db *bun.DB, model any) int {
	t.Helper()

	n, err := db.NewSelect().Model(model).Count(context.Background())
	if err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}
