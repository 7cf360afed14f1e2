// Package aggregator computes live metrics over the record stream.
package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/Hubro/nso-log-reader/internal/model"
)

// epsWindow is the sliding window used for the records-per-second figure.
const epsWindow = 5 * time.Second

// Stats is a point-in-time snapshot of stream metrics.
type Stats struct {
	Uptime         string           `json:"uptime"`
	TotalRecords   int64            `json:"total_records"`
	RecordsPerSec  float64          `json:"records_per_sec"`
	SeverityCounts map[string]int64 `json:"severity_counts"`
	Continuations  int64            `json:"continuations"` // standalone, untagged
	Dropped        int64            `json:"dropped"`
	Sources        int              `json:"sources"`
}

// Aggregator consumes a hub subscription and keeps severity counts and a
// short throughput window.
type Aggregator struct {
	mu             sync.RWMutex
	startTime      time.Time
	totalRecords   int64
	severityCounts map[string]int64
	continuations  int64
	window         []time.Time
	dropped        func() int64
	sourceCount    func() int
	records        <-chan model.Record
}

// New creates an Aggregator over a hub subscription. droppedFn and
// sourcesFn provide live values from the hub and the set of followed files.
func New(records <-chan model.Record, droppedFn func() int64, sourcesFn func() int) *Aggregator {
	return &Aggregator{
		startTime:      time.Now(),
		severityCounts: make(map[string]int64),
		dropped:        droppedFn,
		sourceCount:    sourcesFn,
		records:        records,
	}
}

// Start consumes records until the context is cancelled or the subscription
// closes.
func (a *Aggregator) Start(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-a.records:
			if !ok {
				return
			}
			a.record(rec)
		case <-ticker.C:
			a.prune()
		}
	}
}

// Snapshot returns the current metrics.
func (a *Aggregator) Snapshot() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	counts := make(map[string]int64, len(a.severityCounts))
	for k, v := range a.severityCounts {
		counts[k] = v
	}

	cutoff := time.Now().Add(-epsWindow)
	var recent int
	for _, t := range a.window {
		if t.After(cutoff) {
			recent++
		}
	}

	return Stats{
		Uptime:         time.Since(a.startTime).Truncate(time.Second).String(),
		TotalRecords:   a.totalRecords,
		RecordsPerSec:  float64(recent) / epsWindow.Seconds(),
		SeverityCounts: counts,
		Continuations:  a.continuations,
		Dropped:        a.dropped(),
		Sources:        a.sourceCount(),
	}
}

func (a *Aggregator) record(rec model.Record) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalRecords++
	a.window = append(a.window, time.Now())

	switch r := rec.(type) {
	case *model.NormalRecord:
		a.severityCounts[r.Severity.String()]++
	case *model.ContinuationRecord:
		if r.Inherited {
			a.severityCounts[r.Severity.String()]++
		} else {
			a.continuations++
		}
	}
}

// prune drops window timestamps older than the EPS window.
func (a *Aggregator) prune() {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := time.Now().Add(-epsWindow)
	i := 0
	for _, t := range a.window {
		if t.After(cutoff) {
			a.window[i] = t
			i++
		}
	}
	a.window = a.window[:i]
}
