// Package offerbook решает, откуда отдать объявления стороны: из эфемерного
// кэша, из хранилища или из нового цикла сбора, и деградирует при отказе хранилища.
package offerbook

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"p2p_market/internal/domain"
	"p2p_market/internal/domain/entity"
	"p2p_market/internal/infrastructure/egress"
	"p2p_market/internal/worker"
	"p2p_market/pkg/errcodes"
	"p2p_market/pkg/logx"
)

type Collector interface {
	Collect(ctx context.Context, side entity.Side, opts worker.CollectOptions) worker.Collection
}

type OfferStore interface {
	UpsertOffers(ctx context.Context, side entity.Side, offers []entity.Offer, at time.Time) (int, error)
	GetOffers(ctx context.Context, side entity.Side) ([]entity.Offer, error)
	GetLastUpdate(ctx context.Context, side entity.Side) (time.Time, bool, error)
	GetMetadata(ctx context.Context) ([]entity.UpdateMetadata, error)
}

type SettingStore interface {
	IsAutoUpdateEnabled(ctx context.Context) (bool, error)
	SetAutoUpdateEnabled(ctx context.Context, enabled bool, actor string) error
}

type StatsSource interface {
	Snapshot() egress.StatsSnapshot
}

type Config struct {
	CacheTTL   time.Duration
	StoreTTL   time.Duration
	QuickPages int
}

type Service struct {
	collector Collector
	offers    OfferStore
	settings  SettingStore
	stats     StatsSource
	state     *State
	config    Config
	flight    singleflight.Group
	now       func() time.Time
}

func NewService(
	collector Collector,
	offers OfferStore,
	settings SettingStore,
	state *State,
	config Config,
) *Service {
	return &Service{
		collector: collector,
		offers:    offers,
		settings:  settings,
		state:     state,
		config:    config,
		now:       time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now

	return s
}

func (s *Service) WithStats(stats StatsSource) *Service {
	s.stats = stats

	return s
}

// GetOffers никогда не возвращает ошибку: исход, включая отказ всех источников, в Result.
func (s *Service) GetOffers(ctx context.Context, req ReadRequest) Result {
	start := time.Now()

	if req.StatusOnly {
		return s.status(ctx)
	}

	if req.Side != entity.SideSell && req.Side != entity.SideBuy {
		return failed(errcodes.InvalidSide, "side must be sell or buy")
	}

	rc := &readContext{
		req:        req,
		autoUpdate: s.AutoUpdateEnabled(ctx),
		now:        s.now(),
	}

	result := s.runChain(ctx, rc)

	attrs := []any{
		slog.String(logx.FieldSide, req.Side.String()),
		slog.String(logx.FieldSource, string(result.Source)),
		slog.Int(logx.FieldOffers, len(result.Offers)),
		slog.Bool("force", req.Force),
		slog.Bool("quick", req.Quick),
		slog.Bool("degraded", result.Degraded),
		logx.Duration(start),
	}

	if result.Err != nil {
		logger(ctx).Error("offers unavailable", append(attrs, logx.Error(result.Err))...)
	} else {
		logger(ctx).Info("offers served", attrs...)
	}

	return result
}

// AutoUpdateEnabled читает флаг через кэш с TTL; при ошибке хранилища
// отдаёт последнее известное значение.
func (s *Service) AutoUpdateEnabled(ctx context.Context) bool {
	if enabled, ok := s.state.CachedSetting(); ok {
		return enabled
	}

	enabled, err := s.settings.IsAutoUpdateEnabled(ctx)
	if err != nil {
		last := s.state.LastKnownSetting()

		logger(ctx).Warn(
			"auto update setting unreadable, using last known value",
			slog.Bool("value", last),
			logx.Error(err),
		)

		return last
	}

	s.state.RememberSetting(enabled)

	return enabled
}

func (s *Service) ToggleAutoUpdate(ctx context.Context, enabled bool, actor string) Result {
	if err := s.settings.SetAutoUpdateEnabled(ctx, enabled, actor); err != nil {
		logger(ctx).Error("toggle auto update", slog.String(logx.FieldActor, actor), logx.Error(err))

		code, ok := domain.GetCode(err)
		if !ok {
			code = errcodes.StoreUnavailable
		}

		return Result{
			AutoUpdate: s.state.LastKnownSetting(),
			Err:        domain.WrapError(err, code, "failed to save auto update setting"),
		}
	}

	s.state.RememberSetting(enabled)

	logger(ctx).Info("auto update toggled", slog.Bool("enabled", enabled), slog.String(logx.FieldActor, actor))

	return Result{
		Success:    true,
		AutoUpdate: enabled,
	}
}

// acquire один цикл сбора на сторону и режим одновременно; остальные
// вызовы ждут его результат и получают свою копию.
func (s *Service) acquire(ctx context.Context, side entity.Side, quick bool) (CacheEntry, error) {
	key := side.String()
	if quick {
		key += ":quick"
	}

	v, err, shared := s.flight.Do(key, func() (any, error) {
		return s.collect(context.WithoutCancel(ctx), side, quick)
	})
	if err != nil {
		return CacheEntry{}, err
	}

	entry := v.(CacheEntry) //nolint:forcetypeassert
	if shared {
		entry.Offers = entity.CloneOffers(entry.Offers)
	}

	return entry, nil
}

func (s *Service) collect(ctx context.Context, side entity.Side, quick bool) (CacheEntry, error) {
	opts := worker.CollectOptions{}
	if quick {
		opts.MaxPages = s.config.QuickPages
	}

	collection := s.collector.Collect(ctx, side, opts)

	if len(collection.Offers) == 0 {
		if collection.LastErr != nil {
			if domain.HasCode(collection.LastErr, errcodes.MarketplaceUnreachable) {
				return CacheEntry{}, collection.LastErr
			}

			return CacheEntry{}, domain.WrapError(collection.LastErr, errcodes.NoData, "marketplace returned no usable pages")
		}

		return CacheEntry{}, domain.NewError(errcodes.NoData, "marketplace returned no offers")
	}

	now := s.now()
	entry := CacheEntry{
		Offers:      collection.Offers,
		CapturedAt:  now,
		PagesLoaded: collection.PagesLoaded,
		Source:      SourceLive,
	}

	if quick {
		return entry, nil
	}

	s.state.StoreOffers(side, entry)

	if _, err := s.offers.UpsertOffers(ctx, side, entity.CloneOffers(collection.Offers), now); err != nil {
		logger(ctx).Error(
			"write-through to store failed, cache keeps the cycle",
			slog.String(logx.FieldSide, side.String()),
			logx.Error(err),
		)
	}

	return entry, nil
}

func (s *Service) status(ctx context.Context) Result {
	now := s.now()

	status := &Status{
		AutoUpdateEnabled: s.AutoUpdateEnabled(ctx),
		StoreAvailable:    true,
	}

	if s.stats != nil {
		status.Egress = s.stats.Snapshot()
	}

	stored := make(map[entity.Side]entity.UpdateMetadata)

	metadata, err := s.offers.GetMetadata(ctx)
	if err != nil {
		status.StoreAvailable = false

		logger(ctx).Warn("metadata unavailable", logx.Error(err))
	}

	for _, m := range metadata {
		stored[m.Side] = m
	}

	for _, side := range entity.Sides() {
		ss := SideStatus{Side: side}

		if m, ok := stored[side]; ok {
			ss.Stored = true
			ss.LastUpdate = m.LastUpdate
			ss.OffersCount = m.OffersCount
			ss.Age = m.Age(now)
		}

		if entry, ok := s.state.Offers(side); ok {
			ss.Cached = true
			ss.CacheAge = entry.Age(now)
		}

		status.Sides = append(status.Sides, ss)
	}

	return Result{
		Success:    true,
		Status:     status,
		AutoUpdate: status.AutoUpdateEnabled,
		Degraded:   !status.StoreAvailable,
	}
}
