// Package watcher runs the poll-and-announce loop.
//
// Each cycle fetches the changelog, diffs the parsed updates against the posted
// set and notifies the unseen ones in document order. A date is added to the
// set and persisted right after its own post succeeds, so a crash mid-cycle
// never re-announces what already went out. Run is the single error boundary:
// cycle errors are logged and the loop waits for the next tick.
//
// Only one watcher may use a given state file at a time.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/changelog-relay/internal/changelog"
	"github.com/pfrederiksen/changelog-relay/internal/logger"
	"github.com/pfrederiksen/changelog-relay/internal/notifier"
)

// Source provides the current changelog updates
type Source interface {
	FetchUpdates(ctx context.Context) ([]*changelog.Update, error)
}

// Store persists the posted keys
type Store interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, dates []string) error
}

// saveTimeout bounds the write that records a delivered update. The write is
// not cut short by shutdown, so an update that went out is never re-announced.
const saveTimeout = 15 * time.Second

// Watcher owns the posted set and threads it through every cycle
type Watcher struct {
	source   Source
	notifier notifier.Notifier
	store    Store
	interval time.Duration
	posted   *changelog.PostedSet
	metrics  *logger.Metrics

	// wait blocks between cycles; replaced in tests
	wait func(ctx context.Context, d time.Duration) error
}

// New creates a Watcher and loads the posted set from store
func New(ctx context.Context, source Source, n notifier.Notifier, store Store, interval time.Duration) (*Watcher, error) {
	dates, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading posted updates: %w", err)
	}

	return &Watcher{
		source:   source,
		notifier: n,
		store:    store,
		interval: interval,
		posted:   changelog.NewPostedSet(dates),
		metrics:  logger.NewMetrics(),
		wait:     sleep,
	}, nil
}

// Posted returns the keys announced so far
func (w *Watcher) Posted() []string {
	return w.posted.Dates()
}

// Metrics returns the watcher's counters and timings
func (w *Watcher) Metrics() *logger.Metrics {
	return w.metrics
}

// Pending fetches the changelog and returns the updates that would be posted
// next, without posting or saving anything
func (w *Watcher) Pending(ctx context.Context) (all, pending []*changelog.Update, err error) {
	all, err = w.source.FetchUpdates(ctx)
	if err != nil {
		return nil, nil, err
	}
	return all, changelog.Diff(w.posted, all), nil
}

// RunOnce performs a single fetch-diff-post cycle and returns the number of
// updates posted. It stops at the first failed post; the remaining updates are
// retried next cycle.
func (w *Watcher) RunOnce(ctx context.Context) (int, error) {
	_, pending, err := w.Pending(ctx)
	if err != nil {
		return 0, err
	}

	if len(pending) == 0 {
		logger.Debug("No new updates", nil)
		return 0, nil
	}

	logger.Info("Found new updates", logger.Fields{"count": len(pending)})

	posted := 0
	for _, u := range pending {
		if err := w.notifier.Notify(ctx, u); err != nil {
			return posted, err
		}

		w.posted.Add(u.Date)
		posted++
		w.metrics.IncrCounter("updates.posted")

		if err := w.save(ctx); err != nil {
			return posted, fmt.Errorf("saving posted updates: %w", err)
		}

		logger.Info("Posted update", logger.Fields{"date": u.Date})
	}

	return posted, nil
}

// save persists the posted set, even once ctx has been cancelled
func (w *Watcher) save(ctx context.Context) error {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	return w.store.Save(saveCtx, w.posted.Dates())
}

// Run checks immediately and then every interval until ctx is cancelled. The
// interval is measured from the end of one cycle to the start of the next.
func (w *Watcher) Run(ctx context.Context) error {
	logger.Info("Starting watcher", logger.Fields{
		"interval": w.interval.String(),
		"posted":   w.posted.Len(),
	})

	for {
		w.cycle(ctx)

		if err := w.wait(ctx, w.interval); err != nil {
			logger.Info("Stopping watcher", logger.Fields{"metrics": w.metrics.GetSnapshot()})
			return nil
		}
	}
}

// cycle runs one RunOnce and swallows its error
func (w *Watcher) cycle(ctx context.Context) {
	start := time.Now()
	w.metrics.IncrCounter("cycles")

	posted, err := w.RunOnce(ctx)

	w.metrics.RecordTiming("cycle", time.Since(start))
	w.metrics.SetGauge("posted.total", float64(w.posted.Len()))

	if err != nil {
		w.metrics.IncrCounter("cycles.failed")
		logger.Error("Cycle failed", logger.Fields{"posted": posted}, err)
	}
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
