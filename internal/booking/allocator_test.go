package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/railway-seat-reservation/internal/model"
)

// memLedger is an in-memory SegmentLedger for one seat/date, mirroring
// the row semantics of the MySQL implementation including the
// zero-rows-deleted check in Replace.
type memLedger struct {
	segs   map[uint64]model.Segment
	nextID uint64
}

func newMemLedger(maxSeq uint32) *memLedger {
	l := &memLedger{segs: map[uint64]model.Segment{}, nextID: 1}
	l.add(model.Segment{
		Seat:       testSeat,
		TravelDate: "2026-09-15",
		FromSeq:    1,
		ToSeq:      maxSeq,
		Status:     model.SegmentAvailable,
	})
	return l
}

func (l *memLedger) add(s model.Segment) {
	s.ID = l.nextID
	l.nextID++
	l.segs[s.ID] = s
}

func (l *memLedger) matching(status string, pred func(model.Segment) bool) []model.Segment {
	var out []model.Segment
	for _, s := range l.segs {
		if s.Status == status && pred(s) {
			out = append(out, s)
		}
	}
	return out
}

func (l *memLedger) OverlappingAvailable(_ context.Context, _ model.SeatKey, _ model.TravelDate, from, to uint32) ([]model.Segment, error) {
	return l.matching(model.SegmentAvailable, func(s model.Segment) bool { return s.Overlaps(from, to) }), nil
}

func (l *memLedger) BookedWithin(_ context.Context, _ model.SeatKey, _ model.TravelDate, from, to uint32) ([]model.Segment, error) {
	return l.matching(model.SegmentBooked, func(s model.Segment) bool { return s.Overlaps(from, to) }), nil
}

func (l *memLedger) AdjacentAvailable(_ context.Context, _ model.SeatKey, _ model.TravelDate, from, to uint32) ([]model.Segment, error) {
	return l.matching(model.SegmentAvailable, func(s model.Segment) bool {
		return s.ToSeq == from || s.FromSeq == to
	}), nil
}

func (l *memLedger) Replace(_ context.Context, oldID uint64, repl []model.Segment) error {
	if _, ok := l.segs[oldID]; !ok {
		return ErrSeatUnavailable
	}
	delete(l.segs, oldID)
	for _, s := range repl {
		l.add(s)
	}
	return nil
}

func (l *memLedger) Delete(_ context.Context, ids []uint64) error {
	for _, id := range ids {
		delete(l.segs, id)
	}
	return nil
}

func (l *memLedger) Insert(_ context.Context, segs []model.Segment) error {
	for _, s := range segs {
		l.add(s)
	}
	return nil
}

func (l *memLedger) all() []model.Segment {
	out := make([]model.Segment, 0, len(l.segs))
	for _, s := range l.segs {
		out = append(out, s)
	}
	return out
}

const maxSeq = 10

func TestAllocateSplitsAndKeepsPartition(t *testing.T) {
	led := newMemLedger(maxSeq)
	var alloc Allocator
	ctx := context.Background()

	err := alloc.Allocate(ctx, led, testSeat, "2026-09-15", 3, 6, model.QuotaGeneral)
	require.NoError(t, err)

	assert.True(t, VerifyPartition(led.all(), maxSeq))
	booked, _ := led.BookedWithin(ctx, testSeat, "2026-09-15", 1, maxSeq)
	require.Len(t, booked, 1)
	assert.Equal(t, uint32(3), booked[0].FromSeq)
	assert.Equal(t, uint32(6), booked[0].ToSeq)
	assert.Equal(t, model.QuotaGeneral, booked[0].Quota)
}

func TestAllocateDisjointLegsOfSameSeat(t *testing.T) {
	led := newMemLedger(maxSeq)
	var alloc Allocator
	ctx := context.Background()

	require.NoError(t, alloc.Allocate(ctx, led, testSeat, "2026-09-15", 1, 3, model.QuotaGeneral))
	require.NoError(t, alloc.Allocate(ctx, led, testSeat, "2026-09-15", 6, 10, model.QuotaGeneral))
	require.NoError(t, alloc.Allocate(ctx, led, testSeat, "2026-09-15", 3, 6, model.QuotaGeneral))

	assert.True(t, VerifyPartition(led.all(), maxSeq))
	avail, _ := led.OverlappingAvailable(ctx, testSeat, "2026-09-15", 1, maxSeq)
	assert.Empty(t, avail)
}

func TestAllocateRejectsOverlap(t *testing.T) {
	led := newMemLedger(maxSeq)
	var alloc Allocator
	ctx := context.Background()

	require.NoError(t, alloc.Allocate(ctx, led, testSeat, "2026-09-15", 3, 6, model.QuotaGeneral))
	before := len(led.all())

	err := alloc.Allocate(ctx, led, testSeat, "2026-09-15", 5, 8, model.QuotaGeneral)
	assert.ErrorIs(t, err, ErrSeatUnavailable)
	// failed attempt changes nothing
	assert.Len(t, led.all(), before)
	assert.True(t, VerifyPartition(led.all(), maxSeq))
}

func TestAllocateRejectsSpanOverBookedMiddle(t *testing.T) {
	led := newMemLedger(maxSeq)
	var alloc Allocator
	ctx := context.Background()

	require.NoError(t, alloc.Allocate(ctx, led, testSeat, "2026-09-15", 4, 6, model.QuotaGeneral))
	err := alloc.Allocate(ctx, led, testSeat, "2026-09-15", 1, 10, model.QuotaGeneral)
	assert.ErrorIs(t, err, ErrSeatUnavailable)
}

func TestAllocateRejectsInvertedInterval(t *testing.T) {
	led := newMemLedger(maxSeq)
	var alloc Allocator

	err := alloc.Allocate(context.Background(), led, testSeat, "2026-09-15", 6, 6, model.QuotaGeneral)
	assert.ErrorIs(t, err, ErrInvalidRoute)
	err = alloc.Allocate(context.Background(), led, testSeat, "2026-09-15", 7, 3, model.QuotaGeneral)
	assert.ErrorIs(t, err, ErrInvalidRoute)
}

func TestReleaseMergesBackToSingleSegment(t *testing.T) {
	led := newMemLedger(maxSeq)
	var alloc Allocator
	ctx := context.Background()

	require.NoError(t, alloc.Allocate(ctx, led, testSeat, "2026-09-15", 3, 6, model.QuotaGeneral))
	require.NoError(t, alloc.Release(ctx, led, testSeat, "2026-09-15", 3, 6))

	segs := led.all()
	require.Len(t, segs, 1)
	assert.Equal(t, uint32(1), segs[0].FromSeq)
	assert.Equal(t, uint32(maxSeq), segs[0].ToSeq)
	assert.Equal(t, model.SegmentAvailable, segs[0].Status)
}

func TestReleaseMergesOneSideOnly(t *testing.T) {
	led := newMemLedger(maxSeq)
	var alloc Allocator
	ctx := context.Background()

	require.NoError(t, alloc.Allocate(ctx, led, testSeat, "2026-09-15", 3, 6, model.QuotaGeneral))
	require.NoError(t, alloc.Allocate(ctx, led, testSeat, "2026-09-15", 6, 8, model.QuotaGeneral))
	// release the first leg: merges with the head, not the booked tail
	require.NoError(t, alloc.Release(ctx, led, testSeat, "2026-09-15", 3, 6))

	assert.True(t, VerifyPartition(led.all(), maxSeq))
	avail, _ := led.OverlappingAvailable(ctx, testSeat, "2026-09-15", 1, 6)
	require.Len(t, avail, 1)
	assert.Equal(t, uint32(1), avail[0].FromSeq)
	assert.Equal(t, uint32(6), avail[0].ToSeq)
}

func TestReleaseNothingBookedIsNoop(t *testing.T) {
	led := newMemLedger(maxSeq)
	var alloc Allocator
	ctx := context.Background()

	require.NoError(t, alloc.Release(ctx, led, testSeat, "2026-09-15", 3, 6))
	segs := led.all()
	require.Len(t, segs, 1)
	assert.Equal(t, uint32(1), segs[0].FromSeq)
	assert.Equal(t, uint32(maxSeq), segs[0].ToSeq)
}

func TestReleaseIsIdempotent(t *testing.T) {
	led := newMemLedger(maxSeq)
	var alloc Allocator
	ctx := context.Background()

	require.NoError(t, alloc.Allocate(ctx, led, testSeat, "2026-09-15", 3, 6, model.QuotaGeneral))
	require.NoError(t, alloc.Release(ctx, led, testSeat, "2026-09-15", 3, 6))
	require.NoError(t, alloc.Release(ctx, led, testSeat, "2026-09-15", 3, 6))

	segs := led.all()
	require.Len(t, segs, 1)
	assert.True(t, VerifyPartition(segs, maxSeq))
}

func TestBookReleaseCyclesDoNotFragment(t *testing.T) {
	led := newMemLedger(maxSeq)
	var alloc Allocator
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		require.NoError(t, alloc.Allocate(ctx, led, testSeat, "2026-09-15", 2, 9, model.QuotaGeneral))
		require.NoError(t, alloc.Release(ctx, led, testSeat, "2026-09-15", 2, 9))
	}
	require.Len(t, led.all(), 1)
}

func TestReplaceRaceSurfacesSeatUnavailable(t *testing.T) {
	led := newMemLedger(maxSeq)
	var alloc Allocator
	ctx := context.Background()

	// simulate the loser of a race: its covering segment snapshot is
	// stale because the winner already replaced the row
	segs, err := led.OverlappingAvailable(ctx, testSeat, "2026-09-15", 3, 6)
	require.NoError(t, err)
	cov, ok := CoveringSegment(segs, 3, 6)
	require.True(t, ok)

	require.NoError(t, alloc.Allocate(ctx, led, testSeat, "2026-09-15", 3, 6, model.QuotaGeneral))

	err = led.Replace(ctx, cov.ID, SplitCovering(cov, 3, 6, model.QuotaGeneral))
	assert.ErrorIs(t, err, ErrSeatUnavailable)
}
