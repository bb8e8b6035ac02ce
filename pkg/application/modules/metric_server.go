package modules

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"p2p_market/pkg/metrics"
)

type MetricServer struct {
	ListenAddress string
	Collectors    []prometheus.Collector
}

func (m MetricServer) Run(ctx context.Context, g *errgroup.Group) error {
	prometheusServer, err := metrics.NewPrometheusServer(
		m.ListenAddress,
		m.Collectors...,
	)
	if err != nil {
		return fmt.Errorf("metrics.NewPrometheusServer: %w", err)
	}

	g.Go(func() error {
		if err := prometheusServer.Run(ctx); err != nil {
			return fmt.Errorf("prometheusServer.Run: %w", err)
		}

		return nil
	})

	return nil
}
