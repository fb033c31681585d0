package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/mcdbg/internal/protocol"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcdbg",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mcdbg",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	decodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcdbg",
			Subsystem: "decode",
			Name:      "packets_total",
			Help:      "Packet bodies decoded, by outcome.",
		},
		[]string{"namespace", "packet", "result"},
	)
	decodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mcdbg",
			Subsystem: "decode",
			Name:      "duration_seconds",
			Help:      "Packet decode duration in seconds.",
			Buckets:   []float64{1e-6, 5e-6, 25e-6, 1e-4, 5e-4, 2.5e-3, 1e-2},
		},
		[]string{"namespace"},
	)
	decodeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mcdbg",
			Subsystem: "decode",
			Name:      "body_bytes",
			Help:      "Size of decoded packet bodies.",
			Buckets:   prometheus.ExponentialBuckets(8, 4, 8),
		},
		[]string{"namespace"},
	)
	frames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mcdbg",
			Subsystem: "capture",
			Name:      "frames_total",
			Help:      "Frames read from capture streams, by outcome.",
		},
		[]string{"namespace", "result"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, decodes, decodeDuration, decodeBytes, frames)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordDecode counts one decode attempt. The result label is "ok" or
// the protocol error kind of err.
func RecordDecode(namespace, packet string, size int, duration time.Duration, err error) {
	RegisterMetrics()
	decodes.WithLabelValues(namespace, packet, ResultLabel(err)).Inc()
	decodeDuration.WithLabelValues(namespace).Observe(duration.Seconds())
	decodeBytes.WithLabelValues(namespace).Observe(float64(size))
}

// RecordFrame counts one frame read from a capture stream.
func RecordFrame(namespace string, err error) {
	RegisterMetrics()
	frames.WithLabelValues(namespace, ResultLabel(err)).Inc()
}

func ResultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return protocol.KindOf(err).String()
}
