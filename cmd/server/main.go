package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/peakform/backend/internal/accounts"
	"github.com/peakform/backend/internal/config"
	"github.com/peakform/backend/internal/httpserver"
	"github.com/peakform/backend/internal/mailer"
	"github.com/peakform/backend/internal/ratelimit"
	"github.com/peakform/backend/internal/token"
)

func main() {
	cfg, err := config.Load(os.Getenv("PEAKFORM_CONFIG"))
	if err != nil {
		panic(err)
	}

	level := glog.Info
	if cfg.Debug {
		level = glog.Trace
	}

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(level),
		glog.WithName("peakform"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	db, err := openDatabase(cfg.Database)
	if err != nil {
		lgr.Error("unable to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.Bootstrap {
		if err := accounts.CreateTables(context.Background(), db); err != nil {
			lgr.Error("unable to bootstrap schema", "error", err)
			os.Exit(1)
		}
	}

	repo := accounts.NewRepositoryManager(db)
	repo.MustValidate()

	tokens := token.NewService(
		[]byte(cfg.Auth.SigningKey),
		cfg.Auth.Issuer,
		token.WithLogger(lgr.GetLogger("token")),
	)

	var mail mailer.Mailer
	if cfg.SMTP.Host != "" {
		mail, err = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			lgr.Error("unable to configure smtp mailer", "error", err)
			os.Exit(1)
		}
	} else {
		lgr.Warn("smtp host not configured, logging outbound email instead")
		mail = mailer.NewLogMailer(lgr.GetLogger("mailer"))
	}

	opts := []httpserver.Option{
		httpserver.WithLogger(lgr.GetLogger("http")),
	}
	if cfg.Redis.Addr != "" {
		storage := ratelimit.NewRedisStorage(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer storage.Close()
		opts = append(opts, httpserver.WithLimiterStorage(storage))
	}

	srv := httpserver.New(cfg, repo, tokens, mail, opts...)

	go func() {
		lgr.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.Listen(cfg.Server.Addr); err != nil {
			lgr.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	lgr.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		lgr.Error("shutdown failed", "error", err)
	}
}

func openDatabase(cfg config.Database) (*bun.DB, error) {
	switch cfg.Driver {
	case "postgres":
		sqldb, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryExternal, "unable to open postgres connection")
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryExternal, "unable to open sqlite database")
		}
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
}
