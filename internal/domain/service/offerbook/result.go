package offerbook

import (
	"time"

	"git.appkode.ru/pub/go/failure"

	"p2p_market/internal/domain"
	"p2p_market/internal/domain/entity"
	"p2p_market/internal/infrastructure/egress"
)

// Source откуда взяты данные ответа.
type Source string

const (
	SourceCache      Source = "cache"
	SourceStore      Source = "store"
	SourceLive       Source = "live"
	SourceStaleCache Source = "stale_cache"
	SourceStaleStore Source = "stale_store"
)

type ReadRequest struct {
	Side       entity.Side
	Force      bool
	Quick      bool
	StatusOnly bool
}

// Result исход любой операции. Ошибки не выбрасываются, а лежат в Err.
type Result struct {
	Success     bool
	Side        entity.Side
	Offers      []entity.Offer
	Source      Source
	Degraded    bool
	PagesLoaded int
	CapturedAt  time.Time
	Status      *Status
	AutoUpdate  bool
	Err         *domain.AppError
}

func failed(code failure.ErrorCode, message string) Result {
	return Result{Err: domain.NewError(code, message)}
}

type SideStatus struct {
	Side        entity.Side
	LastUpdate  time.Time
	OffersCount int
	// Age возраст данных в хранилище, ноль если сторона не записывалась.
	Age      time.Duration
	Stored   bool
	CacheAge time.Duration
	Cached   bool
}

type Status struct {
	AutoUpdateEnabled bool
	Sides             []SideStatus
	Egress            egress.StatsSnapshot
	StoreAvailable    bool
}
