package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/railway-seat-reservation/internal/model"
)

// memSweeperStore keeps ticket statuses in memory and records the
// cutoffs it was queried with.  Guarded by a mutex because Run executes
// on its own goroutine.
type memSweeperStore struct {
	mu      sync.Mutex
	tickets map[string]*model.Ticket
	cutoffs []time.Time
	failIDs map[string]bool
}

func (s *memSweeperStore) status(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tickets[id].Status
}

func newMemSweeperStore(tickets ...*model.Ticket) *memSweeperStore {
	s := &memSweeperStore{tickets: map[string]*model.Ticket{}, failIDs: map[string]bool{}}
	for _, t := range tickets {
		s.tickets[t.TicketID] = t
	}
	return s
}

func (s *memSweeperStore) StalePending(_ context.Context, cutoff time.Time) ([]model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffs = append(s.cutoffs, cutoff)
	var out []model.Ticket
	for _, t := range s.tickets {
		if t.Status == model.TicketPending && t.CreatedAt.Before(cutoff) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memSweeperStore) ExpireTicket(_ context.Context, t model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIDs[t.TicketID] {
		return errors.New("release failed")
	}
	cur := s.tickets[t.TicketID]
	if cur.Status != model.TicketPending {
		return nil
	}
	cur.Status = model.TicketExpired
	return nil
}

func pendingTicket(id string, age time.Duration) *model.Ticket {
	return &model.Ticket{
		TicketID:  id,
		Status:    model.TicketPending,
		CreatedAt: time.Now().UTC().Add(-age),
	}
}

func TestSweepOnceExpiresOnlyStaleTickets(t *testing.T) {
	store := newMemSweeperStore(
		pendingTicket("old", 20*time.Minute),
		pendingTicket("fresh", 5*time.Minute),
	)
	s := NewSweeper(store, 15*time.Minute, time.Minute)

	n, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.TicketExpired, store.status("old"))
	assert.Equal(t, model.TicketPending, store.status("fresh"))
}

func TestSweepOnceIsIdempotent(t *testing.T) {
	store := newMemSweeperStore(pendingTicket("old", 20*time.Minute))
	s := NewSweeper(store, 15*time.Minute, time.Minute)

	n, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, model.TicketExpired, store.status("old"))
}

func TestSweepOnceContinuesPastFailures(t *testing.T) {
	store := newMemSweeperStore(
		pendingTicket("bad", 30*time.Minute),
		pendingTicket("good", 30*time.Minute),
	)
	store.failIDs["bad"] = true
	s := NewSweeper(store, 15*time.Minute, time.Minute)

	n, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.TicketExpired, store.status("good"))
	assert.Equal(t, model.TicketPending, store.status("bad"))
}

func TestNewSweeperDefaults(t *testing.T) {
	s := NewSweeper(newMemSweeperStore(), 0, 0)
	assert.Equal(t, DefaultExpiryThreshold, s.threshold)
	assert.Equal(t, time.Minute, s.interval)
}

func TestRunStopsOnCancel(t *testing.T) {
	store := newMemSweeperStore(pendingTicket("old", time.Hour))
	s := NewSweeper(store, 15*time.Minute, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return store.status("old") == model.TicketExpired
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
