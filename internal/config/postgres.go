package config

import "time"

type Postgres struct {
	DSN             string        `env:"PG_DSN,notEmpty" json:"-"`
	Schema          string        `env:"PG_SCHEMA" envDefault:"p2p"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"3"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"3"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"5m"`
	// AcquireTimeout bounds the wait for a pooled connection before an ad hoc one is dialed.
	AcquireTimeout time.Duration `env:"PG_ACQUIRE_TIMEOUT" envDefault:"500ms"`
}
