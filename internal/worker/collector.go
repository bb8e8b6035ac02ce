package worker

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"p2p_market/internal/domain/entity"
	"p2p_market/internal/domain/service/normalizer"
	"p2p_market/internal/infrastructure/bybit"
	"p2p_market/pkg/logx"
)

type pageFetcher interface {
	FetchPage(ctx context.Context, side entity.Side, page int) ([]bybit.RawItem, error)
	PageSize() int
}

// StopReason почему закончился цикл сбора. Ни одна из причин не ошибка.
type StopReason string

const (
	StopExhausted  StopReason = "exhausted"
	StopShortPage  StopReason = "short_page"
	StopPageFailed StopReason = "page_failed"
	StopPageLimit  StopReason = "page_limit"
	StopBudget     StopReason = "budget"
)

type CollectOptions struct {
	MaxPages    int
	Parallelism int
	// CallTimeout ограничивает одну страницу, Budget весь цикл.
	CallTimeout time.Duration
	Budget      time.Duration
}

func (o CollectOptions) withDefaults(d CollectOptions) CollectOptions {
	if o.MaxPages <= 0 {
		o.MaxPages = d.MaxPages
	}

	if o.Parallelism <= 0 {
		o.Parallelism = d.Parallelism
	}

	if o.CallTimeout <= 0 {
		o.CallTimeout = d.CallTimeout
	}

	if o.Budget <= 0 {
		o.Budget = d.Budget
	}

	o.MaxPages = max(o.MaxPages, 1)
	o.Parallelism = max(o.Parallelism, 1)

	return o
}

type Collection struct {
	Side        entity.Side
	Offers      []entity.Offer
	PagesLoaded int
	FailedPages int
	Skipped     int
	// Duplicates объявления, уже встреченные на предыдущих страницах цикла.
	Duplicates int
	Stop       StopReason
	// LastErr ошибка последней упавшей страницы, если такая была.
	LastErr error
}

// Collector обходит страницы выдачи пачками по Parallelism штук.
// Состояния между вызовами Collect не хранит.
type Collector struct {
	fetcher  pageFetcher
	defaults CollectOptions
}

func NewCollector(fetcher pageFetcher, defaults CollectOptions) *Collector {
	return &Collector{
		fetcher:  fetcher,
		defaults: defaults,
	}
}

type pageResult struct {
	page  int
	items []bybit.RawItem
	err   error
}

// Collect возвращает объявления в порядке страниц и порядке выдачи внутри страницы.
// Цикл заканчивается на пустой, упавшей или неполной странице, на лимите страниц
// или по бюджету времени; уже собранное остаётся валидным результатом.
func (c *Collector) Collect(ctx context.Context, side entity.Side, opts CollectOptions) Collection {
	opts = opts.withDefaults(c.defaults)
	start := time.Now()

	cycleCtx, cancel := withOptionalTimeout(ctx, opts.Budget)
	defer cancel()

	log := logger(ctx).With(slog.String(logx.FieldSide, side.String()))
	pageSize := c.fetcher.PageSize()

	collection := Collection{
		Side:   side,
		Offers: make([]entity.Offer, 0, pageSize*opts.Parallelism),
		Stop:   StopPageLimit,
	}
	seen := make(map[string]struct{})

	for first := 1; first <= opts.MaxPages; first += opts.Parallelism {
		size := min(opts.Parallelism, opts.MaxPages-first+1)
		results := c.fetchBatch(cycleCtx, side, first, size, opts.CallTimeout)

		stop := StopReason("")
		if len(results) < size {
			stop = StopBudget
		}

		for _, r := range results {
			switch {
			case r.err != nil:
				collection.FailedPages++
				collection.LastErr = r.err
				stop = firstReason(stop, StopPageFailed)

				log.Warn("page failed", slog.Int(logx.FieldPage, r.page), logx.Error(r.err))

				continue
			case len(r.items) == 0:
				stop = firstReason(stop, StopExhausted)

				continue
			case pageSize > 0 && len(r.items) < pageSize:
				stop = firstReason(stop, StopShortPage)
			}

			offers, skipped := normalizer.NormalizeAll(r.items, side)
			collection.Skipped += skipped

			// Выдача ранжируется вживую, и объявление может сдвинуться на соседнюю страницу.
			for _, offer := range offers {
				if _, ok := seen[offer.ID]; ok {
					collection.Duplicates++

					continue
				}

				seen[offer.ID] = struct{}{}
				collection.Offers = append(collection.Offers, offer)
			}

			collection.PagesLoaded++
		}

		log.Debug(
			"batch collected",
			slog.Int(logx.FieldBatch, first/opts.Parallelism+1),
			slog.Int(logx.FieldPages, len(results)),
			slog.Int(logx.FieldOffers, len(collection.Offers)),
		)

		if cycleCtx.Err() != nil {
			stop = StopBudget
		}

		if stop != "" {
			collection.Stop = stop

			break
		}
	}

	log.Info(
		"collection finished",
		slog.Int(logx.FieldPages, collection.PagesLoaded),
		slog.Int(logx.FieldOffers, len(collection.Offers)),
		slog.Int("failed-pages", collection.FailedPages),
		slog.Int("skipped", collection.Skipped),
		slog.Int("duplicates", collection.Duplicates),
		slog.String("stop", string(collection.Stop)),
		logx.Duration(start),
	)

	return collection
}

// fetchBatch запускает size страниц параллельно. При истечении ctx возвращает то,
// что успело прийти; поздние ответы уходят в буфер канала и отбрасываются.
func (c *Collector) fetchBatch(
	ctx context.Context,
	side entity.Side,
	first int,
	size int,
	callTimeout time.Duration,
) []pageResult {
	out := make(chan pageResult, size)

	var g errgroup.Group

	for page := first; page < first+size; page++ {
		g.Go(func() error {
			callCtx, cancel := withOptionalTimeout(ctx, callTimeout)
			defer cancel()

			items, err := c.fetcher.FetchPage(callCtx, side, page)
			out <- pageResult{page: page, items: items, err: err}

			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(out)
	}()

	results := make([]pageResult, 0, size)

	for len(results) < size {
		select {
		case r, ok := <-out:
			if !ok {
				return sortByPage(results)
			}

			results = append(results, r)
		case <-ctx.Done():
			return sortByPage(results)
		}
	}

	return sortByPage(results)
}

func sortByPage(results []pageResult) []pageResult {
	slices.SortFunc(results, func(a, b pageResult) int {
		return a.page - b.page
	})

	return results
}

func firstReason(current, next StopReason) StopReason {
	if current != "" {
		return current
	}

	return next
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, d)
}
