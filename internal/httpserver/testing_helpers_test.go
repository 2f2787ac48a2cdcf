package httpserver_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/peakform/backend/internal/accounts"
	"github.com/peakform/backend/internal/config"
	"github.com/peakform/backend/internal/httpserver"
	"github.com/peakform/backend/internal/mailer"
	"github.com/peakform/backend/internal/token"
)

var dbCounter atomic.Int64

// capturingMailer records outbound messages and can be told to fail.
type capturingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail bool
}

func (m *capturingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return goerrors.New("smtp relay unavailable", goerrors.CategoryExternal)
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *capturingMailer) messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

type testEnv struct {
	server *httpserver.Server
	repo   accounts.RepositoryManager
	tokens *token.Service
	mail   *capturingMailer
	db     *bun.DB
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.Server{
			Addr:        ":0",
			CORSOrigins: "*",
			RateLimit:   1000,
		},
		Auth: config.Auth{
			SigningKey:                "test-signing-key",
			Issuer:                    "peakform",
			CookieName:                "peakform_session",
			SignInPath:                "/login",
			DefaultRedirect:           "/dashboard",
			BaseURL:                   "http://localhost:8080",
			SessionTTLExpression:      "24h",
			VerificationTTLExpression: "48h",
		},
	}
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:httpserver_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
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

	cfg := testConfig()
	repo := accounts.NewRepositoryManager(db)
	tokens := token.NewService([]byte(cfg.Auth.SigningKey), cfg.Auth.Issuer)
	mail := &capturingMailer{}

	srv := httpserver.New(cfg, repo, tokens, mail)

	return &testEnv{
		server: srv,
		repo:   repo,
		tokens: tokens,
		mail:   mail,
		db:     db,
	}
}
