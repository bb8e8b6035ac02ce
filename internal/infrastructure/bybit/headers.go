package bybit

import (
	"math/rand/v2"
	"net/http"
)

// HeaderStrategy даёт заголовки представления для очередного запроса страницы.
type HeaderStrategy interface {
	Headers() http.Header
}

type indexer interface {
	IntN(n int) int
}

type globalIndexer struct{}

func (globalIndexer) IntN(n int) int { return rand.IntN(n) } //nolint:gosec

var (
	userAgents = []string{ //nolint:gochecknoglobals
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
	}
	acceptLanguages = []string{ //nolint:gochecknoglobals
		"ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7",
		"en-US,en;q=0.9",
		"ru,en;q=0.9",
		"en-GB,en;q=0.9,ru;q=0.8",
	}
	referers = []string{ //nolint:gochecknoglobals
		"https://www.bybit.com/",
		"https://www.bybit.com/fiat/trade/otc/",
		"https://www.bybit.com/fiat/trade/otc/?actionType=1&token=USDT&fiat=RUB",
	}
)

// RandomHeaders равномерно выбирает user agent, язык и referer из фиксированных списков.
type RandomHeaders struct {
	rand indexer
}

func NewRandomHeaders() RandomHeaders {
	return RandomHeaders{rand: globalIndexer{}}
}

func (h RandomHeaders) Headers() http.Header {
	header := baseHeaders()
	header.Set("User-Agent", userAgents[h.rand.IntN(len(userAgents))])
	header.Set("Accept-Language", acceptLanguages[h.rand.IntN(len(acceptLanguages))])
	header.Set("Referer", referers[h.rand.IntN(len(referers))])

	return header
}

// StaticHeaders всегда отдаёт первые значения списков.
type StaticHeaders struct{}

func (StaticHeaders) Headers() http.Header {
	header := baseHeaders()
	header.Set("User-Agent", userAgents[0])
	header.Set("Accept-Language", acceptLanguages[0])
	header.Set("Referer", referers[0])

	return header
}

func baseHeaders() http.Header {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	header.Set("Origin", "https://www.bybit.com")

	return header
}
