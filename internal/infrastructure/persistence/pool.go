package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/semaphore"

	"p2p_market/internal/domain"
	"p2p_market/pkg/errcodes"
	"p2p_market/pkg/logx"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`) //nolint:gochecknoglobals

// ErrStoreUnavailable сравнивается по коду через errors.Is.
var ErrStoreUnavailable = domain.NewError(errcodes.StoreUnavailable, "store unavailable")

type DialFunc func(ctx context.Context) (*sqlx.DB, error)

// ConnPool ограничивает число одновременных операций с хранилищем.
// Если слот не освободился за acquireTimeout, операция идёт через
// отдельное разовое соединение, а не ждёт.
type ConnPool struct {
	db             *sqlx.DB
	dial           DialFunc
	sem            *semaphore.Weighted
	acquireTimeout time.Duration
	schema         string
}

func NewConnPool(
	db *sqlx.DB,
	dial DialFunc,
	capacity int64,
	acquireTimeout time.Duration,
	schema string,
) (*ConnPool, error) {
	if !identifier.MatchString(schema) {
		return nil, fmt.Errorf("invalid schema name %q", schema)
	}

	return &ConnPool{
		db:             db,
		dial:           dial,
		sem:            semaphore.NewWeighted(max(capacity, 1)),
		acquireTimeout: acquireTimeout,
		schema:         schema,
	}, nil
}

func (p *ConnPool) Schema() string {
	return p.schema
}

func (p *ConnPool) Do(ctx context.Context, fn func(ctx context.Context, db *sqlx.DB) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	err := p.sem.Acquire(acquireCtx, 1)
	cancel()

	if err == nil {
		defer p.sem.Release(1)

		return fn(ctx, p.db)
	}

	if ctx.Err() != nil {
		return domain.WrapError(ctx.Err(), errcodes.StoreUnavailable, "store operation cancelled")
	}

	if p.dial == nil {
		return domain.WrapError(err, errcodes.StoreUnavailable, "connection pool exhausted")
	}

	logger(ctx).Warn("connection pool exhausted, dialing ad hoc connection", slog.Duration("acquire-timeout", p.acquireTimeout))

	db, err := p.dial(ctx)
	if err != nil {
		return domain.WrapError(err, errcodes.StoreUnavailable, "ad hoc connection failed")
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger(ctx).Error("adHocDB.Close", logx.Error(err))
		}
	}()

	return fn(ctx, db)
}

func (p *ConnPool) Ping(ctx context.Context) error {
	return p.Do(ctx, func(ctx context.Context, db *sqlx.DB) error {
		if err := db.PingContext(ctx); err != nil {
			return domain.WrapError(err, errcodes.StoreUnavailable, "ping failed")
		}

		return nil
	})
}

func (p *ConnPool) table(name string) string {
	return p.schema + "." + name
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.StoreUnavailable, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger(ctx).Error("tx.Rollback", logx.Error(rbErr))
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.StoreUnavailable, "failed to commit")
	}

	return nil
}
