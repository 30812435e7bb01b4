package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatLabelRoundTrip(t *testing.T) {
	k := SeatKey{TrainID: 12345, ClassType: "SL", CoachNo: "S1", SeatNo: 14}
	assert.Equal(t, "S1-14", k.Label())

	coach, seat, err := ParseSeatLabel(k.Label())
	require.NoError(t, err)
	assert.Equal(t, "S1", coach)
	assert.Equal(t, uint32(14), seat)
}

func TestParseSeatLabelCoachWithDash(t *testing.T) {
	coach, seat, err := ParseSeatLabel("B-2-7")
	require.NoError(t, err)
	assert.Equal(t, "B-2", coach)
	assert.Equal(t, uint32(7), seat)
}

func TestParseSeatLabelMalformed(t *testing.T) {
	for _, label := range []string{"", "S1", "S1-", "-14", "S1-abc"} {
		_, _, err := ParseSeatLabel(label)
		assert.Error(t, err, "label %q", label)
	}
}

func TestSegmentCoversAndOverlaps(t *testing.T) {
	s := Segment{FromSeq: 3, ToSeq: 7}

	assert.True(t, s.Covers(3, 7))
	assert.True(t, s.Covers(4, 6))
	assert.False(t, s.Covers(2, 7))
	assert.False(t, s.Covers(3, 8))

	assert.True(t, s.Overlaps(6, 9))
	assert.True(t, s.Overlaps(1, 4))
	// half-open intervals touch without overlapping
	assert.False(t, s.Overlaps(7, 9))
	assert.False(t, s.Overlaps(1, 3))
}

func TestParseTravelDate(t *testing.T) {
	d, err := ParseTravelDate("2026-09-15")
	require.NoError(t, err)
	assert.Equal(t, TravelDate("2026-09-15"), d)

	d, err = ParseTravelDate("  2026-09-15 ")
	require.NoError(t, err)
	assert.Equal(t, "2026-09-15", d.String())

	for _, bad := range []string{"", "15-09-2026", "2026-13-01", "2026-02-30", "tomorrow"} {
		_, err := ParseTravelDate(bad)
		assert.ErrorIs(t, err, ErrBadDate, "input %q", bad)
	}
}
