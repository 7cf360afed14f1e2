package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/Hubro/nso-log-reader/internal/model"
)

func TestSeverityCounts(t *testing.T) {
	ch := make(chan model.Record, 100)
	agg := New(ch, func() int64 { return 0 }, func() int { return 1 })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go agg.Start(ctx)

	ch <- &model.NormalRecord{Severity: model.Info}
	ch <- &model.NormalRecord{Severity: model.Info}
	ch <- &model.NormalRecord{Severity: model.Error}
	ch <- &model.ContinuationRecord{Severity: model.Error, Inherited: true}
	ch <- &model.ContinuationRecord{Text: "dangling"} // no inherited severity

	time.Sleep(200 * time.Millisecond)

	stats := agg.Snapshot()
	if stats.SeverityCounts["INFO"] != 2 {
		t.Errorf("expected 2 INFO, got %d", stats.SeverityCounts["INFO"])
	}
	if stats.SeverityCounts["ERROR"] != 2 {
		t.Errorf("expected 2 ERROR (one inherited), got %d", stats.SeverityCounts["ERROR"])
	}
	if stats.Continuations != 1 {
		t.Errorf("expected 1 untagged continuation, got %d", stats.Continuations)
	}
	if stats.TotalRecords != 5 {
		t.Errorf("expected 5 total records, got %d", stats.TotalRecords)
	}
}

func TestThroughputWindow(t *testing.T) {
	ch := make(chan model.Record, 100)
	agg := New(ch, func() int64 { return 7 }, func() int { return 3 })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go agg.Start(ctx)

	for i := 0; i < 10; i++ {
		ch <- &model.NormalRecord{Severity: model.Debug}
	}

	time.Sleep(200 * time.Millisecond)

	stats := agg.Snapshot()
	if stats.RecordsPerSec <= 0 {
		t.Errorf("expected positive records/sec, got %f", stats.RecordsPerSec)
	}
	if stats.Dropped != 7 {
		t.Errorf("expected dropped passthrough of 7, got %d", stats.Dropped)
	}
	if stats.Sources != 3 {
		t.Errorf("expected 3 sources, got %d", stats.Sources)
	}
}
