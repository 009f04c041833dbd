package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// FetchFunc loads the current value from its source.
type FetchFunc func(ctx context.Context) (uint64, error)

// Poller refreshes a single uint64 value on a fixed interval. Every request
// gets a monotonic sequence number; a response that arrives after a newer
// request has already been applied is discarded instead of overwriting
// fresher data.
type Poller struct {
	name     string
	interval time.Duration
	fetch    FetchFunc

	mu         sync.Mutex
	issuedSeq  uint64
	appliedSeq uint64
	latest     uint64
	updatedAt  time.Time
}

func NewPoller(name string, interval time.Duration, fetch FetchFunc) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fetch:    fetch,
	}
}

// Run polls until the context is cancelled. An immediate refresh happens
// before the first tick so callers are not stuck on zero for a full interval.
func (p *Poller) Run(ctx context.Context) {
	p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh performs one fetch. Failures keep the previous value; the zero
// default only shows before the first successful fetch.
func (p *Poller) Refresh(ctx context.Context) {
	p.mu.Lock()
	p.issuedSeq++
	seq := p.issuedSeq
	p.mu.Unlock()

	value, err := p.fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Str("poller", p.name).Msg("Fetch failed, keeping last value")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if seq <= p.appliedSeq {
		log.Debug().Str("poller", p.name).Uint64("seq", seq).Msg("Discarding stale response")
		return
	}
	p.appliedSeq = seq
	p.latest = value
	p.updatedAt = time.Now()
}

// Latest returns the most recent applied value and when it was applied. The
// zero time means no fetch has succeeded yet.
func (p *Poller) Latest() (uint64, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.updatedAt
}
