package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
)

var (
	mu             sync.Mutex
	startedTotal   = map[string]uint64{}
	completedTotal = map[string]uint64{}
	failedTotal    = map[string]uint64{}

	providerDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncAnalysisStarted increments the started counter for a variant.
func IncAnalysisStarted(variant string) {
	mu.Lock()
	startedTotal[variant]++
	mu.Unlock()
}

// IncAnalysisCompleted increments the completed counter for a variant.
func IncAnalysisCompleted(variant string) {
	mu.Lock()
	completedTotal[variant]++
	mu.Unlock()
}

// IncAnalysisFailed increments the failed counter for a variant.
func IncAnalysisFailed(variant string) {
	mu.Lock()
	failedTotal[variant]++
	mu.Unlock()
}

// ObserveProviderDurationMs records one provider round trip in milliseconds.
func ObserveProviderDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	providerDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounterVec(&buf, "analysis_started_total", "Total analyses started", snapshotCounters(startedTotal))
	writeCounterVec(&buf, "analysis_completed_total", "Total analyses completed", snapshotCounters(completedTotal))
	writeCounterVec(&buf, "analysis_failed_total", "Total analyses failed", snapshotCounters(failedTotal))
	writeHistogram(&buf, "provider_duration_ms", "Provider round-trip duration in milliseconds", providerDuration.Snapshot())
	return buf.String()
}

func snapshotCounters(src map[string]uint64) map[string]uint64 {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]uint64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func writeCounterVec(buf *bytes.Buffer, name, help string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	variants := make([]string, 0, len(values))
	for v := range values {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	for _, v := range variants {
		fmt.Fprintf(buf, "%s{variant=%q} %d\n", name, v, values[v])
	}
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
