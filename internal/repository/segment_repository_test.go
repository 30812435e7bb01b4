package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/railway-seat-reservation/internal/model"
)

const testDate = model.TravelDate("2026-09-15")

// collectBatches copies every emitted batch, since the expansion reuses
// the slice between calls.
func collectBatches(dst *[][]model.Segment) func([]model.Segment) error {
	return func(batch []model.Segment) error {
		cp := make([]model.Segment, len(batch))
		copy(cp, batch)
		*dst = append(*dst, cp)
		return nil
	}
}

func TestExpandInitialSegmentsOnePerSeat(t *testing.T) {
	inventory := []model.SeatInventory{
		{CoachNo: "S1", TotalSeats: 3},
		{CoachNo: "S2", TotalSeats: 2},
	}

	var batches [][]model.Segment
	seats, err := expandInitialSegments(12345, "SL", testDate, inventory, 10, collectBatches(&batches))
	require.NoError(t, err)
	assert.Equal(t, 5, seats)

	require.Len(t, batches, 1)
	rows := batches[0]
	require.Len(t, rows, 5)

	seen := make(map[model.SeatKey]bool)
	for _, s := range rows {
		assert.Equal(t, uint64(12345), s.Seat.TrainID)
		assert.Equal(t, "SL", s.Seat.ClassType)
		assert.Equal(t, testDate, s.TravelDate)
		assert.Equal(t, uint32(1), s.FromSeq)
		assert.Equal(t, uint32(10), s.ToSeq)
		assert.Equal(t, model.SegmentAvailable, s.Status)
		assert.False(t, seen[s.Seat], "duplicate seat %s", s.Seat.Label())
		seen[s.Seat] = true
	}
	assert.True(t, seen[model.SeatKey{TrainID: 12345, ClassType: "SL", CoachNo: "S2", SeatNo: 2}])
}

func TestExpandInitialSegmentsChunking(t *testing.T) {
	// 750 seats flush as one full chunk plus the remainder.
	inventory := []model.SeatInventory{
		{CoachNo: "S1", TotalSeats: 500},
		{CoachNo: "S2", TotalSeats: 250},
	}

	var batches [][]model.Segment
	seats, err := expandInitialSegments(1, "SL", testDate, inventory, 8, collectBatches(&batches))
	require.NoError(t, err)
	assert.Equal(t, 750, seats)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], insertChunkRows)
	assert.Len(t, batches[1], 250)
}

func TestExpandInitialSegmentsExactMultiple(t *testing.T) {
	// exactly two full chunks, no empty trailing flush
	inventory := []model.SeatInventory{{CoachNo: "S1", TotalSeats: 1000}}

	var batches [][]model.Segment
	seats, err := expandInitialSegments(1, "SL", testDate, inventory, 8, collectBatches(&batches))
	require.NoError(t, err)
	assert.Equal(t, 1000, seats)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], insertChunkRows)
	assert.Len(t, batches[1], insertChunkRows)
}

func TestExpandInitialSegmentsDeterministic(t *testing.T) {
	// a second expansion over the same inventory yields the same seat
	// set, which together with the count guard in InitializeIfEmptyTx
	// keeps repeated initialization from changing the ledger
	inventory := []model.SeatInventory{
		{CoachNo: "S1", TotalSeats: 4},
		{CoachNo: "S2", TotalSeats: 4},
	}

	run := func() []model.Segment {
		var batches [][]model.Segment
		_, err := expandInitialSegments(9, "3A", testDate, inventory, 6, collectBatches(&batches))
		require.NoError(t, err)
		require.Len(t, batches, 1)
		return batches[0]
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}

func TestExpandInitialSegmentsEmitError(t *testing.T) {
	inventory := []model.SeatInventory{{CoachNo: "S1", TotalSeats: 600}}
	boom := errors.New("insert failed")

	calls := 0
	_, err := expandInitialSegments(1, "SL", testDate, inventory, 8, func([]model.Segment) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestExpandInitialSegmentsEmptyInventory(t *testing.T) {
	calls := 0
	seats, err := expandInitialSegments(1, "SL", testDate, nil, 8, func([]model.Segment) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, seats)
	assert.Zero(t, calls)
}
