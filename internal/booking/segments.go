// Package booking implements the seat segment ledger: the interval
// algebra used to split a seat's availability around a booked journey
// leg, the allocator that applies it transactionally, the fare
// calculation consumed by that transaction, and the sweeper that
// reverses allocations on cancellation and expiry.
//
// All intervals are half-open [from, to) in route sequence-number
// coordinates.  For a fixed (seat, travel date) the ledger maintains
// the partition invariant: the segments exactly tile [1, maxSeq) with
// no gaps and no overlaps.
package booking

import (
	"sort"

	"github.com/iliyamo/railway-seat-reservation/internal/model"
)

// CoveringSegment selects the single AVAILABLE segment that fully
// contains [from, to), if one exists.  Partial overlap is not enough:
// a request spanning two adjacent segments is not satisfiable even
// when their union covers it, because the boundary marks a point where
// the seat changes hands.
func CoveringSegment(segs []model.Segment, from, to uint32) (model.Segment, bool) {
	for _, s := range segs {
		if s.Status == model.SegmentAvailable && s.Covers(from, to) {
			return s, true
		}
	}
	return model.Segment{}, false
}

// SplitCovering computes the 1–3 replacement segments for booking
// [from, to) out of the covering segment: the BOOKED middle, an
// AVAILABLE head when the covering segment starts earlier, and an
// AVAILABLE tail when it ends later.  The covering segment itself is
// deleted by the caller.
func SplitCovering(cov model.Segment, from, to uint32, quota string) []model.Segment {
	repl := make([]model.Segment, 0, 3)
	repl = append(repl, model.Segment{
		Seat:       cov.Seat,
		TravelDate: cov.TravelDate,
		FromSeq:    from,
		ToSeq:      to,
		Status:     model.SegmentBooked,
		Quota:      quota,
	})
	if cov.FromSeq < from {
		repl = append(repl, model.Segment{
			Seat:       cov.Seat,
			TravelDate: cov.TravelDate,
			FromSeq:    cov.FromSeq,
			ToSeq:      from,
			Status:     model.SegmentAvailable,
		})
	}
	if cov.ToSeq > to {
		repl = append(repl, model.Segment{
			Seat:       cov.Seat,
			TravelDate: cov.TravelDate,
			FromSeq:    to,
			ToSeq:      cov.ToSeq,
			Status:     model.SegmentAvailable,
		})
	}
	return repl
}

// MergedRelease widens the released interval [from, to) across any
// adjacent AVAILABLE neighbors so the restore re-establishes a single
// segment instead of leaving the ledger fragmented.  It returns the
// merged bounds and the IDs of the absorbed neighbors, which the
// caller must delete.  Neighbors that merely touch at a shared
// boundary qualify; overlapping neighbors never occur under the
// partition invariant.
func MergedRelease(from, to uint32, neighbors []model.Segment) (uint32, uint32, []uint64) {
	var absorbed []uint64
	for _, n := range neighbors {
		if n.Status != model.SegmentAvailable {
			continue
		}
		switch {
		case n.ToSeq == from:
			from = n.FromSeq
			absorbed = append(absorbed, n.ID)
		case n.FromSeq == to:
			to = n.ToSeq
			absorbed = append(absorbed, n.ID)
		}
	}
	return from, to, absorbed
}

// IntervalStatus derives the seat's offerability for [from, to) from
// its segments: AVAILABLE when a single AVAILABLE segment covers the
// whole interval, BOOKED otherwise.  This is the status shown per seat
// by the seat-status endpoint.
func IntervalStatus(segs []model.Segment, from, to uint32) string {
	if _, ok := CoveringSegment(segs, from, to); ok {
		return model.SegmentAvailable
	}
	return model.SegmentBooked
}

// VerifyPartition checks the partition invariant for one seat/date:
// segments sorted by FromSeq must tile [1, maxSeq) exactly.  It is
// used by tests after arbitrary allocate/release sequences.
func VerifyPartition(segs []model.Segment, maxSeq uint32) bool {
	if len(segs) == 0 {
		return false
	}
	sorted := make([]model.Segment, len(segs))
	copy(sorted, segs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FromSeq < sorted[j].FromSeq })
	next := uint32(1)
	for _, s := range sorted {
		if s.FromSeq != next || s.ToSeq <= s.FromSeq {
			return false
		}
		next = s.ToSeq
	}
	return next == maxSeq
}
