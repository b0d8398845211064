package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconstructDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hypersurface",
		Name:      "reconstruct_duration_seconds",
		Help:      "Time spent rebuilding the surface grid and point cloud.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hypersurface",
		Name:      "ws_clients",
		Help:      "Websocket clients currently connected.",
	})

	broadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hypersurface",
		Name:      "broadcasts_total",
		Help:      "Surface updates pushed to websocket clients.",
	})

	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hypersurface",
		Name:      "refresh_total",
		Help:      "Provider refreshes by result.",
	}, []string{"result"})
)
