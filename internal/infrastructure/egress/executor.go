// Package egress выполняет исходящие HTTP-запросы через пул прокси с повторами
// и запасным прямым выходом. О формате данных площадки пакет ничего не знает.
package egress

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"p2p_market/pkg/logx"
)

const maxResponseBytes = 8 << 20

var ErrAttemptsExhausted = errors.New("egress: all attempts failed")

// StatusError ответ получен, но код не 200/201.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

type Randomizer interface {
	Float64() float64
	IntN(n int) int
}

type globalRandomizer struct{}

func (globalRandomizer) Float64() float64 { return rand.Float64() } //nolint:gosec
func (globalRandomizer) IntN(n int) int   { return rand.IntN(n) }   //nolint:gosec

// Backoff равномерно распределённая пауза в [Min, Max].
type Backoff struct {
	Min time.Duration
	Max time.Duration
}

func (b Backoff) pick(r Randomizer) time.Duration {
	if b.Max <= b.Min {
		return b.Min
	}

	return b.Min + time.Duration(r.Float64()*float64(b.Max-b.Min))
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Route адрес прокси или "direct".
	Route string
}

type route struct {
	name    string
	proxied bool
	client  *http.Client
}

type Executor struct {
	proxies          []Proxy
	routes           []route
	direct           route
	useProbability   float64
	maxRetries       int
	timeout          time.Duration
	rateLimitBackoff Backoff
	errorBackoff     Backoff
	rand             Randomizer
	sleep            func(context.Context, time.Duration) error
	wrapTransport    func(route string, next http.RoundTripper) http.RoundTripper
	stats            *Stats
}

type Option func(*Executor)

func WithUseProbability(p float64) Option {
	return func(e *Executor) {
		e.useProbability = min(max(p, 0), 1)
	}
}

func WithMaxRetries(n int) Option {
	return func(e *Executor) {
		e.maxRetries = max(n, 1)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

func WithBackoff(rateLimited, other Backoff) Option {
	return func(e *Executor) {
		e.rateLimitBackoff = rateLimited
		e.errorBackoff = other
	}
}

func WithRandomizer(r Randomizer) Option {
	return func(e *Executor) {
		e.rand = r
	}
}

func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(e *Executor) {
		e.sleep = sleep
	}
}

// WithTransportWrapper оборачивает транспорт каждого маршрута, например логированием.
func WithTransportWrapper(wrap func(route string, next http.RoundTripper) http.RoundTripper) Option {
	return func(e *Executor) {
		e.wrapTransport = wrap
	}
}

func WithStats(s *Stats) Option {
	return func(e *Executor) {
		e.stats = s
	}
}

func NewExecutor(proxies []Proxy, opts ...Option) *Executor {
	e := &Executor{
		proxies:          proxies,
		useProbability:   0.7, //nolint:mnd
		maxRetries:       3,   //nolint:mnd
		timeout:          10 * time.Second,
		rateLimitBackoff: Backoff{Min: 2 * time.Second, Max: 5 * time.Second},
		errorBackoff:     Backoff{Min: time.Second, Max: 3 * time.Second},
		rand:             globalRandomizer{},
		sleep:            sleepContext,
		wrapTransport: func(_ string, next http.RoundTripper) http.RoundTripper {
			return next
		},
		stats: NewStats(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.direct = e.newRoute(directRoute, nil)

	e.routes = make([]route, 0, len(proxies))
	for _, p := range proxies {
		e.routes = append(e.routes, e.newRoute(p.Display, p.URL))
	}

	return e
}

func (e *Executor) newRoute(name string, proxyURL *url.URL) route {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert
	transport.Proxy = nil

	if proxyURL != nil {
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return route{
		name:    name,
		proxied: proxyURL != nil,
		client: &http.Client{
			Transport: e.wrapTransport(name, transport),
			Timeout:   e.timeout,
		},
	}
}

func (e *Executor) Stats() *Stats {
	return e.stats
}

func (e *Executor) Proxies() int {
	return len(e.proxies)
}

// Execute делает до maxRetries попыток. Если последняя попытка шла через прокси,
// выполняется ещё одна напрямую. Ошибка либо отмена ctx, либо ErrAttemptsExhausted.
func (e *Executor) Execute(
	ctx context.Context,
	method string,
	rawURL string,
	body []byte,
	header http.Header,
) (*Response, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("url.ParseRequestURI: %w", err)
	}

	e.stats.totalRequests.Add(1)

	var lastErr error

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		r := e.pickRoute()

		resp, err := e.do(ctx, r, method, rawURL, body, header)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("execute: %w", ctx.Err())
		}

		logger(ctx).Warn(
			"egress attempt failed",
			slog.Int(logx.FieldAttempt, attempt),
			slog.String(logx.FieldProxy, r.name),
			logx.Error(err),
		)

		if attempt == e.maxRetries {
			if r.proxied {
				resp, err = e.do(ctx, e.direct, method, rawURL, body, header)
				if err == nil {
					logger(ctx).Info("egress direct fallback succeeded", slog.String(logx.FieldProxy, r.name))

					return resp, nil
				}

				lastErr = err
			}

			break
		}

		if err = e.sleep(ctx, e.backoff(lastErr)); err != nil {
			return nil, fmt.Errorf("sleep: %w", err)
		}
	}

	logger(ctx).Error(
		"egress attempts exhausted",
		slog.Int(logx.FieldAttempt, e.maxRetries),
		logx.Error(lastErr),
	)

	return nil, fmt.Errorf("%w: %w", ErrAttemptsExhausted, lastErr)
}

func (e *Executor) pickRoute() route {
	if len(e.routes) == 0 || e.rand.Float64() >= e.useProbability {
		return e.direct
	}

	return e.routes[e.rand.IntN(len(e.routes))]
}

func (e *Executor) backoff(err error) time.Duration {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.RateLimited() {
		return e.rateLimitBackoff.pick(e.rand)
	}

	return e.errorBackoff.pick(e.rand)
}

func (e *Executor) do(
	ctx context.Context,
	r route,
	method string,
	rawURL string,
	body []byte,
	header http.Header,
) (*Response, error) {
	if r.proxied {
		e.stats.proxyRequests.Add(1)
	} else {
		e.stats.directRequests.Add(1)
	}

	var payload io.Reader = http.NoBody
	if body != nil {
		payload = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, payload)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	if header != nil {
		req.Header = header.Clone()
	}

	start := time.Now()

	resp, err := r.client.Do(req)
	if err != nil {
		if r.proxied {
			e.stats.proxyErrors.Add(1)
		}

		return nil, fmt.Errorf("client.Do: %w", err)
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if r.proxied {
			e.stats.proxyErrors.Add(1)
		}

		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	e.stats.successfulRequests.Add(1)

	logger(ctx).Debug(
		"egress attempt succeeded",
		slog.String(logx.FieldProxy, r.name),
		slog.Int(logx.FieldResponseStatus, resp.StatusCode),
		logx.Duration(start),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		Route:      r.name,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
