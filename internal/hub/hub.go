// Package hub fans segmented log records out to any number of subscribers,
// typically websocket clients and the stats aggregator.
package hub

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/Hubro/nso-log-reader/internal/model"
)

const subscriberBuffer = 1024

// Hub broadcasts records from its input channel to all subscribers. Each
// subscriber sees every record exactly once, in input order; a subscriber
// that falls behind its buffer loses records rather than stalling the rest.
type Hub struct {
	input       <-chan model.Record
	mu          sync.RWMutex
	subscribers []chan model.Record
	dropped     atomic.Int64
}

// New creates a Hub reading from the given record channel.
func New(input <-chan model.Record) *Hub {
	return &Hub{input: input}
}

// Subscribe returns a buffered channel receiving every broadcast record.
// The channel is closed when the hub stops.
func (h *Hub) Subscribe() <-chan model.Record {
	ch := make(chan model.Record, subscriberBuffer)
	h.mu.Lock()
	h.subscribers = append(h.subscribers, ch)
	h.mu.Unlock()
	return ch
}

// Dropped returns the total number of records dropped for slow consumers.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Start broadcasts until the context is cancelled or the input channel is
// closed, then closes every subscriber channel.
func (h *Hub) Start(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-h.input:
			if !ok {
				return
			}
			h.broadcast(rec)
		}
	}
}

func (h *Hub) broadcast(rec model.Record) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- rec:
		default:
			n := h.dropped.Add(1)
			log.Warn().Int64("total_dropped", n).Msg("hub: dropped record for slow consumer")
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}
