package config

import "time"

type Marketplace struct {
	URL         string        `env:"MARKET_URL" envDefault:"https://api2.bybit.com/fiat/otc/item/online"`
	TokenID     string        `env:"MARKET_TOKEN_ID" envDefault:"USDT"`
	CurrencyID  string        `env:"MARKET_CURRENCY_ID" envDefault:"RUB"`
	PageSize    int           `env:"MARKET_PAGE_SIZE" envDefault:"100"`
	MaxPages    int           `env:"MARKET_MAX_PAGES" envDefault:"10"`
	QuickPages  int           `env:"MARKET_QUICK_PAGES" envDefault:"2"`
	Parallelism int           `env:"MARKET_PARALLELISM" envDefault:"3"`
	CallTimeout time.Duration `env:"MARKET_CALL_TIMEOUT" envDefault:"10s"`
	CycleBudget time.Duration `env:"MARKET_CYCLE_BUDGET" envDefault:"25s"`
	LogBodies   bool          `env:"UPSTREAM_LOG_BODIES" envDefault:"false"`
}

type Proxy struct {
	// List holds IP:PORT:LOGIN:PASSWORD entries or proxy URLs.
	List           []string      `env:"PROXY_LIST" envSeparator:"," json:"-"`
	File           string        `env:"PROXY_FILE"`
	UseProbability float64       `env:"PROXY_USE_PROBABILITY" envDefault:"0.7"`
	MaxRetries     int           `env:"PROXY_MAX_RETRIES" envDefault:"3"`
	Timeout        time.Duration `env:"PROXY_TIMEOUT" envDefault:"10s"`
}

type Freshness struct {
	CacheTTL   time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	StoreTTL   time.Duration `env:"STORE_TTL" envDefault:"90s"`
	SettingTTL time.Duration `env:"SETTING_TTL" envDefault:"60s"`
}
