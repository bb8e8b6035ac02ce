package metrics_test

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"p2p_market/pkg/metrics"
)

func TestPrometheusServer(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name          string
		listenAddress string
		endpoint      string
		statusCode    int
		contains      string
	}{
		{
			name:          "Metrics handler",
			listenAddress: ":10010",
			endpoint:      "http://:10010/metrics",
			statusCode:    http.StatusOK,
			contains:      "p2p_test_counter_total 3",
		},
		{
			name:          "Invalid endpoint",
			listenAddress: ":10020",
			endpoint:      "http://:10020/invalid",
			statusCode:    http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			counter := prometheus.NewCounter(prometheus.CounterOpts{
				Name: "p2p_test_counter_total",
				Help: "test counter",
			})
			counter.Add(3)

			prometheusServer, err := metrics.NewPrometheusServer(tc.listenAddress, counter)
			rq.NoError(err)

			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				return prometheusServer.Run(ctx)
			})

			// Wait for server to start.
			time.Sleep(time.Second)

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, tc.endpoint, http.NoBody)
			rq.NoError(err)

			resp, err := http.DefaultClient.Do(req)
			rq.NoError(err)

			defer resp.Body.Close()

			rq.Equal(tc.statusCode, resp.StatusCode)

			if tc.contains != "" {
				body, err := io.ReadAll(resp.Body)
				rq.NoError(err)
				rq.Contains(string(body), tc.contains)
			}

			cancel()

			rq.NoError(g.Wait())
		})
	}
}

func TestPrometheusServerDuplicateCollector(t *testing.T) {
	rq := require.New(t)

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "p2p_dup_total", Help: "dup"})

	_, err := metrics.NewPrometheusServer(":10030", counter, counter)
	rq.Error(err)
}
