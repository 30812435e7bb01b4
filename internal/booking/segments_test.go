package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/railway-seat-reservation/internal/model"
)

var testSeat = model.SeatKey{TrainID: 12345, ClassType: "SL", CoachNo: "S1", SeatNo: 14}

func seg(id uint64, from, to uint32, status string) model.Segment {
	return model.Segment{
		ID:         id,
		Seat:       testSeat,
		TravelDate: "2026-09-15",
		FromSeq:    from,
		ToSeq:      to,
		Status:     status,
	}
}

func TestCoveringSegment(t *testing.T) {
	segs := []model.Segment{
		seg(1, 1, 4, model.SegmentAvailable),
		seg(2, 4, 7, model.SegmentBooked),
		seg(3, 7, 10, model.SegmentAvailable),
	}

	cov, ok := CoveringSegment(segs, 1, 3)
	require.True(t, ok)
	assert.Equal(t, uint64(1), cov.ID)

	// exact cover
	cov, ok = CoveringSegment(segs, 7, 10)
	require.True(t, ok)
	assert.Equal(t, uint64(3), cov.ID)

	// spans a booked middle
	_, ok = CoveringSegment(segs, 2, 8)
	assert.False(t, ok)

	// booked segment never covers
	_, ok = CoveringSegment(segs, 4, 6)
	assert.False(t, ok)
}

func TestCoveringSegmentUnionIsNotEnough(t *testing.T) {
	// two adjacent AVAILABLE segments whose union covers the request
	segs := []model.Segment{
		seg(1, 1, 5, model.SegmentAvailable),
		seg(2, 5, 10, model.SegmentAvailable),
	}
	_, ok := CoveringSegment(segs, 3, 8)
	assert.False(t, ok)
}

func TestSplitCoveringMiddle(t *testing.T) {
	cov := seg(7, 1, 10, model.SegmentAvailable)
	repl := SplitCovering(cov, 3, 6, model.QuotaGeneral)
	require.Len(t, repl, 3)

	assert.Equal(t, uint32(3), repl[0].FromSeq)
	assert.Equal(t, uint32(6), repl[0].ToSeq)
	assert.Equal(t, model.SegmentBooked, repl[0].Status)
	assert.Equal(t, model.QuotaGeneral, repl[0].Quota)

	assert.Equal(t, uint32(1), repl[1].FromSeq)
	assert.Equal(t, uint32(3), repl[1].ToSeq)
	assert.Equal(t, model.SegmentAvailable, repl[1].Status)
	assert.Empty(t, repl[1].Quota)

	assert.Equal(t, uint32(6), repl[2].FromSeq)
	assert.Equal(t, uint32(10), repl[2].ToSeq)
	assert.Equal(t, model.SegmentAvailable, repl[2].Status)
}

func TestSplitCoveringExact(t *testing.T) {
	cov := seg(7, 3, 6, model.SegmentAvailable)
	repl := SplitCovering(cov, 3, 6, model.QuotaGeneral)
	require.Len(t, repl, 1)
	assert.Equal(t, model.SegmentBooked, repl[0].Status)
}

func TestSplitCoveringHeadOnly(t *testing.T) {
	cov := seg(7, 1, 6, model.SegmentAvailable)
	repl := SplitCovering(cov, 3, 6, model.QuotaGeneral)
	require.Len(t, repl, 2)
	assert.Equal(t, model.SegmentBooked, repl[0].Status)
	assert.Equal(t, uint32(1), repl[1].FromSeq)
	assert.Equal(t, uint32(3), repl[1].ToSeq)
}

func TestMergedRelease(t *testing.T) {
	neighbors := []model.Segment{
		seg(1, 1, 3, model.SegmentAvailable),
		seg(2, 6, 10, model.SegmentAvailable),
	}
	from, to, absorbed := MergedRelease(3, 6, neighbors)
	assert.Equal(t, uint32(1), from)
	assert.Equal(t, uint32(10), to)
	assert.ElementsMatch(t, []uint64{1, 2}, absorbed)
}

func TestMergedReleaseNoNeighbors(t *testing.T) {
	from, to, absorbed := MergedRelease(3, 6, nil)
	assert.Equal(t, uint32(3), from)
	assert.Equal(t, uint32(6), to)
	assert.Empty(t, absorbed)
}

func TestIntervalStatus(t *testing.T) {
	segs := []model.Segment{
		seg(1, 1, 4, model.SegmentAvailable),
		seg(2, 4, 7, model.SegmentBooked),
		seg(3, 7, 10, model.SegmentAvailable),
	}
	assert.Equal(t, model.SegmentAvailable, IntervalStatus(segs, 1, 4))
	assert.Equal(t, model.SegmentBooked, IntervalStatus(segs, 3, 5))
	assert.Equal(t, model.SegmentBooked, IntervalStatus(segs, 1, 10))
	assert.Equal(t, model.SegmentAvailable, IntervalStatus(segs, 8, 10))
}

func TestVerifyPartition(t *testing.T) {
	ok := []model.Segment{
		seg(1, 4, 7, model.SegmentBooked),
		seg(2, 1, 4, model.SegmentAvailable),
		seg(3, 7, 10, model.SegmentAvailable),
	}
	assert.True(t, VerifyPartition(ok, 10))

	gap := []model.Segment{
		seg(1, 1, 4, model.SegmentAvailable),
		seg(2, 5, 10, model.SegmentAvailable),
	}
	assert.False(t, VerifyPartition(gap, 10))

	short := []model.Segment{seg(1, 1, 9, model.SegmentAvailable)}
	assert.False(t, VerifyPartition(short, 10))

	assert.False(t, VerifyPartition(nil, 10))
}
