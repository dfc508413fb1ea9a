package timeframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank_Order(t *testing.T) {
	assert.Equal(t, 0, Rank(M1))
	assert.Equal(t, 1, Rank(M15))
	assert.Equal(t, 2, Rank(H1))
	assert.Equal(t, 3, Rank(H4))
	assert.Equal(t, 4, Rank(D1))
}

func TestRank_Unknown(t *testing.T) {
	assert.Equal(t, -1, Rank("5m"))
	assert.Equal(t, -1, Rank(""))
	assert.Equal(t, -1, Rank("1H"))
}

func TestDurationSeconds(t *testing.T) {
	assert.Equal(t, int64(60), DurationSeconds(M1))
	assert.Equal(t, int64(900), DurationSeconds(M15))
	assert.Equal(t, int64(3600), DurationSeconds(H1))
	assert.Equal(t, int64(14400), DurationSeconds(H4))
	assert.Equal(t, int64(86400), DurationSeconds(D1))
	assert.Equal(t, int64(0), DurationSeconds("2h"))
}

func TestIsVisible(t *testing.T) {
	// A bubble shows on its own timeframe and all coarser ones.
	assert.True(t, IsVisible(M1, M1))
	assert.True(t, IsVisible(M1, H1))
	assert.True(t, IsVisible(M15, D1))
	assert.True(t, IsVisible(D1, D1))

	// Never on finer timeframes.
	assert.False(t, IsVisible(D1, M1))
	assert.False(t, IsVisible(H1, M15))

	// Unknown timeframes are never visible, in either position.
	assert.False(t, IsVisible("5m", H1))
	assert.False(t, IsVisible(H1, "5m"))
	assert.False(t, IsVisible("", ""))
}
