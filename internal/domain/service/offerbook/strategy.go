package offerbook

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"p2p_market/internal/domain"
	"p2p_market/pkg/errcodes"
	"p2p_market/pkg/logx"
)

// Outcome типизированный исход одной стратегии.
type Outcome int

const (
	Unavailable Outcome = iota
	Ok
	Degraded
)

func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case Degraded:
		return "degraded"
	default:
		return "unavailable"
	}
}

type attempt struct {
	outcome Outcome
	entry   CacheEntry
	err     error
}

func unavailable(err error) attempt {
	return attempt{outcome: Unavailable, err: err}
}

// readContext общее состояние стратегий одного запроса.
type readContext struct {
	req         ReadRequest
	autoUpdate  bool
	now         time.Time
	storeFailed bool
	errs        []error
}

func (rc *readContext) storeError(err error) attempt {
	rc.storeFailed = true

	return unavailable(err)
}

type strategy struct {
	name string
	run  func(ctx context.Context, rc *readContext) attempt
}

// chain порядок источников данных для запроса.
func (s *Service) chain(rc *readContext) []strategy {
	live := strategy{name: "live", run: s.fromLive}
	staleCache := strategy{name: "stale_cache", run: s.fromStaleCache}
	staleStore := strategy{name: "stale_store", run: s.fromAnyStore(Degraded)}

	switch {
	case rc.req.Force:
		return []strategy{live, staleCache, staleStore}
	case !rc.autoUpdate:
		return []strategy{
			{name: "cache", run: s.fromFreshCache},
			{name: "store", run: s.fromAnyStore(Ok)},
			staleCache,
		}
	default:
		return []strategy{
			{name: "cache", run: s.fromFreshCache},
			{name: "store", run: s.fromFreshStore},
			{name: "stale_cache_on_store_failure", run: s.fromStaleCacheOnStoreFailure},
			live,
			staleCache,
			staleStore,
		}
	}
}

func (s *Service) runChain(ctx context.Context, rc *readContext) Result {
	for _, st := range s.chain(rc) {
		a := st.run(ctx, rc)

		if a.err != nil {
			rc.errs = append(rc.errs, a.err)

			logger(ctx).Warn(
				"offer source unavailable",
				slog.String(logx.FieldSource, st.name),
				slog.String(logx.FieldSide, rc.req.Side.String()),
				logx.Error(a.err),
			)
		}

		if a.outcome == Unavailable {
			continue
		}

		return Result{
			Success:     true,
			Side:        rc.req.Side,
			Offers:      a.entry.Offers,
			Source:      a.entry.Source,
			Degraded:    a.outcome == Degraded,
			PagesLoaded: a.entry.PagesLoaded,
			CapturedAt:  a.entry.CapturedAt,
			AutoUpdate:  rc.autoUpdate,
		}
	}

	result := Result{
		Side:       rc.req.Side,
		AutoUpdate: rc.autoUpdate,
		Err:        unavailableError(rc.errs),
	}

	return result
}

// unavailableError выбирает код: площадка недоступна, затем хранилище, иначе нет данных.
func unavailableError(errs []error) *domain.AppError {
	err := errors.Join(errs...)

	switch {
	case domain.HasCode(err, errcodes.MarketplaceUnreachable):
		return domain.WrapError(err, errcodes.MarketplaceUnreachable, "marketplace unreachable and no cached data")
	case domain.HasCode(err, errcodes.StoreUnavailable):
		return domain.WrapError(err, errcodes.StoreUnavailable, "store unavailable and no cached data")
	default:
		return domain.NewError(errcodes.NoData, "no data yet for this side")
	}
}

func (s *Service) fromFreshCache(_ context.Context, rc *readContext) attempt {
	entry, ok := s.state.Offers(rc.req.Side)
	if !ok || entry.Age(rc.now) >= s.config.CacheTTL {
		return unavailable(nil)
	}

	entry.Source = SourceCache

	return attempt{outcome: Ok, entry: entry}
}

func (s *Service) fromFreshStore(ctx context.Context, rc *readContext) attempt {
	lastUpdate, ok, err := s.offers.GetLastUpdate(ctx, rc.req.Side)
	if err != nil {
		return rc.storeError(err)
	}

	if !ok || rc.now.Sub(lastUpdate) >= s.config.StoreTTL {
		return unavailable(nil)
	}

	offers, err := s.offers.GetOffers(ctx, rc.req.Side)
	if err != nil {
		return rc.storeError(err)
	}

	entry := CacheEntry{
		Offers:     offers,
		CapturedAt: lastUpdate,
		Source:     SourceStore,
	}
	s.state.StoreOffers(rc.req.Side, entry)

	return attempt{outcome: Ok, entry: entry}
}

func (s *Service) fromStaleCacheOnStoreFailure(ctx context.Context, rc *readContext) attempt {
	if !rc.storeFailed {
		return unavailable(nil)
	}

	return s.fromStaleCache(ctx, rc)
}

func (s *Service) fromStaleCache(_ context.Context, rc *readContext) attempt {
	entry, ok := s.state.Offers(rc.req.Side)
	if !ok {
		return unavailable(nil)
	}

	entry.Source = SourceStaleCache

	return attempt{outcome: Degraded, entry: entry}
}

func (s *Service) fromAnyStore(outcome Outcome) func(context.Context, *readContext) attempt {
	return func(ctx context.Context, rc *readContext) attempt {
		if rc.storeFailed {
			return unavailable(nil)
		}

		offers, err := s.offers.GetOffers(ctx, rc.req.Side)
		if err != nil {
			return rc.storeError(err)
		}

		if len(offers) == 0 {
			return unavailable(nil)
		}

		source := SourceStore
		if outcome == Degraded {
			source = SourceStaleStore
		}

		return attempt{outcome: outcome, entry: CacheEntry{
			Offers:     offers,
			CapturedAt: rc.now,
			Source:     source,
		}}
	}
}

func (s *Service) fromLive(ctx context.Context, rc *readContext) attempt {
	entry, err := s.acquire(ctx, rc.req.Side, rc.req.Quick)
	if err != nil {
		return unavailable(err)
	}

	return attempt{outcome: Ok, entry: entry}
}
