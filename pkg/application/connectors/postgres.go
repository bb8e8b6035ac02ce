package connectors

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // golang postgres driver
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"

	"p2p_market/pkg/logx"
)

const PostgresDriver = "pgx"

type Postgres struct {
	value           *sqlx.DB
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	init            sync.Once
	err             error
}

// Client connects lazily. Unlike a hard dependency the store may be down at
// start-up; the error is returned and the offer book keeps serving from the
// marketplace.
func (p *Postgres) Client(ctx context.Context) (*sqlx.DB, error) {
	p.init.Do(func() {
		db, err := sqlx.ConnectContext(ctx, PostgresDriver, p.DSN)
		if err != nil {
			p.err = fmt.Errorf("sqlx.ConnectContext: %w", err)
			// Keep an unconnected handle; database/sql reconnects on demand.
			db = lo.Must(sqlx.Open(PostgresDriver, p.DSN))
		}

		db.SetMaxOpenConns(p.MaxOpenConns)
		db.SetMaxIdleConns(p.MaxIdleConns)
		db.SetConnMaxLifetime(p.ConnMaxLifetime)

		p.value = db

		logger(ctx).Info(
			"postgres configured",
			slog.String("database", p.database()),
			slog.Bool("connected", p.err == nil),
		)
	})

	return p.value, p.err
}

// Dial opens a one-off connection outside the shared pool.
func (p *Postgres) Dial(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, PostgresDriver, p.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlx.ConnectContext: %w", err)
	}

	db.SetMaxOpenConns(1)

	return db, nil
}

func (p *Postgres) Close(ctx context.Context) {
	if p.value == nil {
		return
	}

	if err := p.value.Close(); err != nil {
		logger(ctx).Error("postgresClient.Close", logx.Error(err))
	}

	logger(ctx).Info(
		"postgres disconnected",
		slog.String("database", p.database()),
	)
}

func (p *Postgres) database() string {
	u, err := url.Parse(p.DSN)
	if err != nil {
		return ""
	}

	return u.Path
}
