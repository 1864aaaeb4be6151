package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateCreatedAtClampsBelowFirstAnchor(t *testing.T) {
	got := EstimateCreatedAt(1)
	want := time.Unix(creationAnchors[anchorIDs[0]]/1000, 0)
	assert.Equal(t, want, got)
}

func TestEstimateCreatedAtAnchorsAreExact(t *testing.T) {
	for _, id := range anchorIDs {
		assert.Equal(t, time.Unix(creationAnchors[id]/1000, 0), EstimateCreatedAt(id), "anchor %d", id)
	}
}

func TestEstimateCreatedAtInterpolatesBetweenAnchors(t *testing.T) {
	require.GreaterOrEqual(t, len(anchorIDs), 2)
	lower, upper := anchorIDs[0], anchorIDs[1]
	mid := lower + (upper-lower)/2

	got := EstimateCreatedAt(mid)
	lowerDate := time.Unix(creationAnchors[lower]/1000, 0)
	upperDate := time.Unix(creationAnchors[upper]/1000, 0)
	assert.False(t, got.Before(lowerDate))
	assert.False(t, got.After(upperDate))
}

func TestEstimateCreatedAtClampsAboveLastAnchor(t *testing.T) {
	last := anchorIDs[len(anchorIDs)-1]
	got := EstimateCreatedAt(last * 10)
	assert.Equal(t, EstimateCreatedAt(last), got)
}
