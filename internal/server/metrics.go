package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facto_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "facto_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	extractTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facto_extractions_total",
			Help: "Total number of document extractions by source and outcome",
		},
		[]string{"source", "status"},
	)

	extractDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "facto_extraction_duration_seconds",
			Help:    "Document extraction latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"source"},
	)

	documentLines = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "facto_document_lines",
			Help:    "Number of invoice lines extracted per document",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "facto_websocket_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facto_websocket_messages_total",
			Help: "Total number of WebSocket messages by direction",
		},
		[]string{"direction", "type"},
	)
)
