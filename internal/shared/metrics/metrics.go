package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	callbacksReceivedTotal  atomic.Uint64
	callbacksMatchedTotal   atomic.Uint64
	callbacksUnmatchedTotal atomic.Uint64
	callbacksFailedTotal    atomic.Uint64

	generationsDispatchedTotal atomic.Uint64
	generationsFailedTotal     atomic.Uint64

	maintenanceCompletedTotal atomic.Uint64

	callbackMergeDuration = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 5000})
)

// IncCallbackReceived increments the received-callback counter.
func IncCallbackReceived() { callbacksReceivedTotal.Add(1) }

// IncCallbackMatched increments the matched-callback counter.
func IncCallbackMatched() { callbacksMatchedTotal.Add(1) }

// IncCallbackUnmatched increments the unmatched-callback counter.
func IncCallbackUnmatched() { callbacksUnmatchedTotal.Add(1) }

// IncCallbackFailed increments the failed-callback counter.
func IncCallbackFailed() { callbacksFailedTotal.Add(1) }

// IncGenerationDispatched increments the dispatched-generation counter.
func IncGenerationDispatched() { generationsDispatchedTotal.Add(1) }

// IncGenerationFailed increments the failed-generation counter.
func IncGenerationFailed() { generationsFailedTotal.Add(1) }

// IncMaintenanceCompleted increments the completed-maintenance counter.
func IncMaintenanceCompleted() { maintenanceCompletedTotal.Add(1) }

// ObserveCallbackMergeMs records a callback merge duration in milliseconds.
func ObserveCallbackMergeMs(value float64) {
	if value < 0 {
		value = 0
	}
	callbackMergeDuration.Observe(value)
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
	writeCounter(&buf, "pdf_callbacks_received_total", "Total processing callbacks received", callbacksReceivedTotal.Load())
	writeCounter(&buf, "pdf_callbacks_matched_total", "Total callbacks matched to a document", callbacksMatchedTotal.Load())
	writeCounter(&buf, "pdf_callbacks_unmatched_total", "Total callbacks with no matching document", callbacksUnmatchedTotal.Load())
	writeCounter(&buf, "pdf_callbacks_failed_total", "Total callbacks reporting processing failure", callbacksFailedTotal.Load())
	writeCounter(&buf, "generations_dispatched_total", "Total generation jobs dispatched", generationsDispatchedTotal.Load())
	writeCounter(&buf, "generations_failed_total", "Total generation dispatches that failed", generationsFailedTotal.Load())
	writeCounter(&buf, "maintenance_completed_total", "Total maintenance task completions", maintenanceCompletedTotal.Load())
	writeHistogram(&buf, "callback_merge_duration_ms", "Callback merge duration in milliseconds", callbackMergeDuration.Snapshot())
	return buf.String()
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

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
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
