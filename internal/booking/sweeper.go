package booking

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/railway-seat-reservation/internal/model"
)

// DefaultExpiryThreshold is how long a ticket may stay PENDING without
// a payment before the sweeper reclaims its seats.
const DefaultExpiryThreshold = 15 * time.Minute

// SweeperStore is the persistence surface the expiry sweep runs
// against.  ExpireTicket must execute as one transaction covering the
// status transition and the segment release, and must be a no-op for
// tickets that are no longer PENDING so concurrent or repeated sweeps
// stay idempotent.
type SweeperStore interface {
	StalePending(ctx context.Context, cutoff time.Time) ([]model.Ticket, error)
	ExpireTicket(ctx context.Context, t model.Ticket) error
}

// Sweeper periodically expires PENDING tickets older than the
// threshold, releasing their seat segments back to AVAILABLE.
type Sweeper struct {
	store     SweeperStore
	threshold time.Duration
	interval  time.Duration
}

// NewSweeper constructs a Sweeper.  Non-positive threshold or interval
// fall back to the defaults (15 minutes / 1 minute).
func NewSweeper(store SweeperStore, threshold, interval time.Duration) *Sweeper {
	if threshold <= 0 {
		threshold = DefaultExpiryThreshold
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{store: store, threshold: threshold, interval: interval}
}

// Run executes the sweep on a ticker until the context is cancelled.
// It is intended to run as a background goroutine next to the HTTP
// server.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("expiry-sweeper: running every %s (threshold %s)", s.interval, s.threshold)
	for {
		select {
		case <-ctx.Done():
			log.Println("expiry-sweeper: stopped")
			return
		case <-ticker.C:
			if n, err := s.SweepOnce(ctx); err != nil {
				log.Printf("expiry-sweeper: sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("expiry-sweeper: expired %d pending tickets", n)
			}
		}
	}
}

// SweepOnce runs a single batch: it loads PENDING tickets older than
// the threshold and expires each in its own transaction.  A failure on
// one ticket does not block the rest; the count of successfully
// expired tickets is returned.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.threshold)
	stale, err := s.store.StalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, t := range stale {
		if err := s.store.ExpireTicket(ctx, t); err != nil {
			log.Printf("expiry-sweeper: ticket %s: %v", t.TicketID, err)
			continue
		}
		expired++
	}
	return expired, nil
}
