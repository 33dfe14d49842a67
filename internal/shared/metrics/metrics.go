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
	uploadsTotal           atomic.Uint64
	downloadsTotal         atomic.Uint64
	expiredHitsTotal       atomic.Uint64
	notFoundHitsTotal      atomic.Uint64
	reaperSweepsTotal      atomic.Uint64
	reapedArtifactsTotal   atomic.Uint64
	reaperFailuresTotal    atomic.Uint64
	orphansRemovedTotal    atomic.Uint64
	collectionsReapedTotal atomic.Uint64

	uploadSizeBytes = newHistogram([]float64{1 << 10, 64 << 10, 1 << 20, 10 << 20, 50 << 20, 100 << 20, 500 << 20})
)

// IncUploads counts a stored artifact.
func IncUploads() { uploadsTotal.Add(1) }

// IncDownloads counts a download that started streaming.
func IncDownloads() { downloadsTotal.Add(1) }

// IncExpiredHits counts retrievals refused because the artifact expired.
func IncExpiredHits() { expiredHitsTotal.Add(1) }

// IncNotFoundHits counts retrievals of unknown or vanished artifacts.
func IncNotFoundHits() { notFoundHitsTotal.Add(1) }

// IncReaperSweeps counts completed reaper passes.
func IncReaperSweeps() { reaperSweepsTotal.Add(1) }

// AddReapedArtifacts adds to the number of expired artifacts removed.
func AddReapedArtifacts(n int) { reapedArtifactsTotal.Add(uint64(n)) }

// AddReaperFailures adds to the number of per-record reaper failures.
func AddReaperFailures(n int) { reaperFailuresTotal.Add(uint64(n)) }

// AddOrphansRemoved adds to the number of blobs removed without metadata.
func AddOrphansRemoved(n int) { orphansRemovedTotal.Add(uint64(n)) }

// AddCollectionsReaped adds to the number of stale collections removed.
func AddCollectionsReaped(n int) { collectionsReapedTotal.Add(uint64(n)) }

// ObserveUploadSize records the size of an uploaded artifact.
func ObserveUploadSize(size int64) {
	if size < 0 {
		size = 0
	}
	uploadSizeBytes.Observe(float64(size))
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
	writeCounter(&buf, "lanshare_uploads_total", "Total artifacts stored", uploadsTotal.Load())
	writeCounter(&buf, "lanshare_downloads_total", "Total artifact downloads started", downloadsTotal.Load())
	writeCounter(&buf, "lanshare_expired_hits_total", "Total retrievals of expired artifacts", expiredHitsTotal.Load())
	writeCounter(&buf, "lanshare_not_found_hits_total", "Total retrievals of unknown artifacts", notFoundHitsTotal.Load())
	writeCounter(&buf, "lanshare_reaper_sweeps_total", "Total reaper sweeps", reaperSweepsTotal.Load())
	writeCounter(&buf, "lanshare_reaped_artifacts_total", "Total expired artifacts removed", reapedArtifactsTotal.Load())
	writeCounter(&buf, "lanshare_reaper_failures_total", "Total reaper per-record failures", reaperFailuresTotal.Load())
	writeCounter(&buf, "lanshare_orphans_removed_total", "Total blobs removed without metadata", orphansRemovedTotal.Load())
	writeCounter(&buf, "lanshare_collections_reaped_total", "Total stale collections removed", collectionsReapedTotal.Load())
	writeHistogram(&buf, "lanshare_upload_size_bytes", "Uploaded artifact size in bytes", uploadSizeBytes.Snapshot())
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
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
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
