package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/cardvault/ledger/internal/domain"
)

// SnapshotGenerator defines the interface for generating snapshots.
type SnapshotGenerator interface {
	Generate(ctx context.Context, ownerID string, date time.Time) (domain.OwnerStats, error)
}

// OwnerSource lists the owners that need a snapshot.
type OwnerSource interface {
	Owners(ctx context.Context) ([]string, error)
}

// AfterSnapshotHook is called after each successful snapshot generation.
type AfterSnapshotHook interface {
	Export(ctx context.Context, ownerID string, stats domain.OwnerStats) error
}

// SnapshotWorker periodically generates collection-value snapshots for
// every known owner.
type SnapshotWorker struct {
	generator SnapshotGenerator
	owners    OwnerSource
	interval  time.Duration
	hook      AfterSnapshotHook // optional
}

// NewSnapshotWorker creates a new SnapshotWorker with an optional post-generation hook.
func NewSnapshotWorker(generator SnapshotGenerator, owners OwnerSource, interval time.Duration, hook AfterSnapshotHook) *SnapshotWorker {
	return &SnapshotWorker{
		generator: generator,
		owners:    owners,
		interval:  interval,
		hook:      hook,
	}
}

// runHook calls the post-generation hook if one is configured.
func (w *SnapshotWorker) runHook(ctx context.Context, ownerID string, stats domain.OwnerStats) {
	if w.hook == nil {
		return
	}
	if err := w.hook.Export(ctx, ownerID, stats); err != nil {
		slog.Error("SnapshotWorker: export hook failed", "owner", ownerID, "error", err)
	} else {
		slog.Info("SnapshotWorker: export hook completed", "owner", ownerID)
	}
}

// utcDate returns the current date normalized to midnight UTC.
func utcDate() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (w *SnapshotWorker) generateAll(ctx context.Context) {
	owners, err := w.owners.Owners(ctx)
	if err != nil {
		slog.Error("SnapshotWorker: listing owners failed", "error", err)
		return
	}

	date := utcDate()
	for _, owner := range owners {
		stats, err := w.generator.Generate(ctx, owner, date)
		if err != nil {
			slog.Error("SnapshotWorker: generation failed", "owner", owner, "error", err)
			continue
		}
		slog.Info("SnapshotWorker: generation completed", "owner", owner, "date", date.Format("2006-01-02"))
		w.runHook(ctx, owner, stats)
	}
}

// Run starts the snapshot worker loop. It blocks until the context is cancelled.
func (w *SnapshotWorker) Run(ctx context.Context) {
	slog.Info("SnapshotWorker: starting", "interval", w.interval)

	// Generate immediately on startup
	w.generateAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("SnapshotWorker: shutting down")
			return
		case <-ticker.C:
			w.generateAll(ctx)
		}
	}
}
