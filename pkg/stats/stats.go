package stats

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	BYTE = 1 << (10 * iota)
	KILOBYTE
	MEGABYTE
	GIGABYTE
	TERABYTE

	statsFile = "stats"
)

var (
	partnerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buysell",
			Name:      "partner_requests_total",
			Help:      "Requests issued to exchange partners.",
		},
		[]string{"exchange", "outcome"},
	)
	webhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buysell",
			Name:      "webhook_deliveries_total",
			Help:      "Events delivered to webhook subscribers.",
		},
		[]string{"event", "outcome"},
	)
	watchedAddresses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "buysell",
			Name:      "watched_addresses",
			Help:      "Receive addresses currently watched for incoming funds.",
		},
	)
)

func init() {
	prometheus.MustRegister(partnerRequests, webhookDeliveries, watchedAddresses)
}

// RecordPartnerRequest counts a partner request by outcome.
func RecordPartnerRequest(exchange string, err error) {
	partnerRequests.WithLabelValues(exchange, outcome(err)).Inc()
}

// RecordWebhook counts a webhook delivery by outcome.
func RecordWebhook(event string, err error) {
	webhookDeliveries.WithLabelValues(event, outcome(err)).Inc()
}

// AddressWatchStarted and AddressWatchStopped keep track of the number of
// running address watchers.
func AddressWatchStarted() {
	watchedAddresses.Inc()
}

func AddressWatchStopped() {
	watchedAddresses.Dec()
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// EnableMemoryStatistics enables go routine that periodically prints memory
// usage of the go process. Once ctx is done, prometheus metrics are dumped to
// a stats file in datadir.
func EnableMemoryStatistics(ctx context.Context, interval time.Duration, datadir string) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PrintMemoryStatistics()
				PrintNumOfRoutines()
			case <-ctx.Done():
				if err := DumpPrometheusDefaults(datadir); err != nil {
					log.WithError(err).Warn("failed to dump stats")
				}
				return
			}
		}
	}()
}

// toGigabytes returns given memory in bytes to gigabytes.
func toGigabytes(bytes uint64) float64 {
	return float64(bytes) / GIGABYTE
}

// PrintMemoryStatistics prints memory statistics using go runtime library.
func PrintMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.Infof(
		"Total allocated: %.3fGB, Heap allocated: %.3fGB, "+
			"Allocated objects count: %v, Freed objects count: %v",
		toGigabytes(memStats.TotalAlloc),
		toGigabytes(memStats.HeapAlloc),
		memStats.Mallocs,
		memStats.Frees,
	)
}

// DumpPrometheusDefaults write default Prometheus metrics to a file
func DumpPrometheusDefaults(datadir string) error {
	file, err := os.OpenFile(
		filepath.Join(datadir, statsFile),
		os.O_APPEND|os.O_CREATE|os.O_RDWR,
		0644,
	)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	metricFamily, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, v := range metricFamily {
		if _, err := writer.WriteString(v.String() + "\n"); err != nil {
			return err
		}
	}

	return writer.Flush()
}

// PrintNumOfRoutines prints number of go routines currently running
func PrintNumOfRoutines() {
	log.Infof("Num of go routines: %v", runtime.NumGoroutine())
}
