// Package reaper removes expired artifacts, stale collections and orphaned
// blobs on a fixed interval.
package reaper

import (
	"context"
	"errors"
	"time"

	"lanshare-backend/internal/collections"
	"lanshare-backend/internal/ids"
	"lanshare-backend/internal/shared/metrics"
	"lanshare-backend/internal/shared/storage/object"
	"lanshare-backend/internal/shared/telemetry"
	"lanshare-backend/internal/shares"
)

const (
	DefaultInterval    = time.Hour
	DefaultOrphanGrace = time.Hour
)

// Options configures a Reaper.
type Options struct {
	Interval    time.Duration
	Retention   time.Duration
	OrphanSweep bool
	OrphanGrace time.Duration
}

// Reaper owns the deletion side of the artifact lifecycle.
type Reaper struct {
	Shares      *shares.Service
	Collections *collections.Service
	Opts        Options
	Now         func() time.Time
}

// Result summarizes one sweep.
type Result struct {
	Scanned            int `json:"scanned"`
	Removed            int `json:"removed"`
	Failures           int `json:"failures"`
	CollectionsRemoved int `json:"collectionsRemoved"`
	OrphansRemoved     int `json:"orphansRemoved"`
}

// New constructs a Reaper, filling zero options with defaults.
func New(sharesSvc *shares.Service, collectionsSvc *collections.Service, opts Options) *Reaper {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Retention <= 0 {
		opts.Retention = sharesSvc.Retention
	}
	if opts.OrphanGrace <= 0 {
		opts.OrphanGrace = DefaultOrphanGrace
	}
	return &Reaper{Shares: sharesSvc, Collections: collectionsSvc, Opts: opts, Now: time.Now}
}

func (r *Reaper) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

// Run sweeps once immediately and then every interval until ctx is done.
func (r *Reaper) Run(ctx context.Context) {
	r.sweepAndLog(ctx)

	ticker := time.NewTicker(r.Opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweepAndLog(ctx)
		}
	}
}

func (r *Reaper) sweepAndLog(ctx context.Context) {
	if _, err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
		telemetry.Error("reaper.sweep.failed", map[string]any{"error": err})
	}
}

// Sweep makes one pass. Per-record failures are logged and counted; only a
// failure to list metadata aborts the pass.
func (r *Reaper) Sweep(ctx context.Context) (Result, error) {
	started := time.Now()
	now := r.now()

	metas, err := r.Shares.List(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Scanned: len(metas)}
	for _, meta := range metas {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !meta.Expired(now) {
			continue
		}
		if r.reap(ctx, meta) {
			res.Removed++
		} else {
			res.Failures++
		}
	}

	if r.Collections != nil {
		removed, failed := r.pruneCollections(ctx, now)
		res.CollectionsRemoved = removed
		res.Failures += failed
	}

	if r.Opts.OrphanSweep {
		removed, failed := r.sweepOrphans(ctx, now)
		res.OrphansRemoved = removed
		res.Failures += failed
	}

	metrics.IncReaperSweeps()
	metrics.AddReapedArtifacts(res.Removed)
	metrics.AddReaperFailures(res.Failures)
	metrics.AddOrphansRemoved(res.OrphansRemoved)
	metrics.AddCollectionsReaped(res.CollectionsRemoved)
	telemetry.Info("reaper.sweep.complete", map[string]any{
		"scanned":             res.Scanned,
		"removed":             res.Removed,
		"failures":            res.Failures,
		"collections_removed": res.CollectionsRemoved,
		"orphans_removed":     res.OrphansRemoved,
		"duration_ms":         time.Since(started).Milliseconds(),
	})
	return res, nil
}

// reap deletes the blob and the metadata record independently so a failure
// on one side still removes the other.
func (r *Reaper) reap(ctx context.Context, meta shares.Metadata) bool {
	ok := true
	if err := r.Shares.Store.Delete(ctx, meta.ID); err != nil && !errors.Is(err, object.ErrNotFound) {
		ok = false
		telemetry.Warn("reaper.delete_failed", map[string]any{
			"share_id": meta.ID,
			"half":     "blob",
			"error":    err,
		})
	}
	if err := r.Shares.Repo.Delete(ctx, meta.ID); err != nil {
		ok = false
		telemetry.Warn("reaper.delete_failed", map[string]any{
			"share_id": meta.ID,
			"half":     "metadata",
			"error":    err,
		})
	}
	if ok {
		telemetry.Info("reaper.removed", map[string]any{
			"share_id":   meta.ID,
			"expires_at": meta.ExpiresAt,
		})
	}
	return ok
}

func (r *Reaper) pruneCollections(ctx context.Context, now time.Time) (removed, failed int) {
	cols, err := r.Collections.List(ctx)
	if err != nil {
		telemetry.Warn("reaper.collections_list_failed", map[string]any{"error": err})
		return 0, 1
	}
	cutoff := now.Add(-r.Opts.Retention)
	for _, c := range cols {
		if !c.UpdatedAt.Before(cutoff) {
			continue
		}
		deleted, err := r.Collections.DeleteIfStale(ctx, c.ID, cutoff)
		if err != nil {
			failed++
			telemetry.Warn("reaper.delete_failed", map[string]any{
				"collection_id": c.ID,
				"error":         err,
			})
			continue
		}
		if deleted {
			removed++
		}
	}
	return removed, failed
}

// sweepOrphans removes blobs that have no metadata record and are older than
// the grace window. Younger blobs may belong to uploads still in flight. Keys
// that New could not have issued belong to someone else and are never touched.
func (r *Reaper) sweepOrphans(ctx context.Context, now time.Time) (removed, failed int) {
	lister, ok := r.Shares.Store.(object.Lister)
	if !ok {
		return 0, 0
	}
	cutoff := now.Add(-r.Opts.OrphanGrace)

	var candidates []string
	err := lister.Walk(ctx, func(info object.ObjectInfo) error {
		if ids.Issued(info.Key) && info.ModTime.Before(cutoff) {
			candidates = append(candidates, info.Key)
		}
		return nil
	})
	if err != nil {
		telemetry.Warn("reaper.orphan_walk_failed", map[string]any{"error": err})
		failed++
	}

	for _, key := range candidates {
		_, err := r.Shares.Repo.Read(ctx, key)
		if !errors.Is(err, shares.ErrNotFound) {
			// Live, corrupt or unreadable record: leave the blob alone.
			continue
		}
		if err := r.Shares.Store.Delete(ctx, key); err != nil && !errors.Is(err, object.ErrNotFound) {
			failed++
			telemetry.Warn("reaper.delete_failed", map[string]any{
				"share_id": key,
				"half":     "orphan_blob",
				"error":    err,
			})
			continue
		}
		removed++
		telemetry.Info("reaper.orphan_removed", map[string]any{"share_id": key})
	}
	return removed, failed
}
