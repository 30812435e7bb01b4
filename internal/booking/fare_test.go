package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFare(t *testing.T) {
	assert.Equal(t, int64(450), Fare(1.5, 300, 1))
	assert.Equal(t, int64(1350), Fare(1.5, 300, 3))
	assert.Equal(t, int64(0), Fare(1.5, 0, 2))
}

func TestFareRoundsOnceOnTotal(t *testing.T) {
	// 1.25 * 100.3 = 125.375 per head; * 3 = 376.125, rounds to 376.
	// Rounding per passenger first would give 125 * 3 = 375.
	assert.Equal(t, int64(376), Fare(1.25, 100.3, 3))
}

func TestFareDeterministic(t *testing.T) {
	a := Fare(2.75, 412.6, 4)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a, Fare(2.75, 412.6, 4))
	}
}
