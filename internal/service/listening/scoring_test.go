package listening

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shortsradar/internal/domain/trend"
)

func TestScores_TwoHourOldShort(t *testing.T) {
	now := time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC)
	c := trend.VideoCandidate{
		ID:          "v1",
		PublishedAt: now.Add(-2 * time.Hour),
		Duration:    40 * time.Second,
		Views:       10000,
		Likes:       500,
		Comments:    50,
	}

	m := Derive(c, 1000, now)
	assert.InDelta(t, 5000.0, m.ViewsPerHour, 1e-9)
	assert.InDelta(t, 0.05, m.LikeRate, 1e-12)
	assert.InDelta(t, 0.005, m.CommentRate, 1e-12)
	assert.InDelta(t, 10.0, m.ViewSubRatio, 1e-12)

	traffic := TrafficScore(m.ViewsPerHour, m.LikeRate, m.CommentRate)
	replication := ReplicationScore(m.ViewSubRatio, m.ViewsPerHour, m.LikeRate)
	final := FinalScore(traffic, replication)

	assert.InDelta(t, 4.154387, traffic, 1e-6)
	assert.InDelta(t, 2.367436, replication, 1e-6)
	assert.InDelta(t, 3.350259, final, 1e-6)

	assert.Equal(t, 4.15, round2(traffic))
	assert.Equal(t, 2.37, round2(replication))
	assert.Equal(t, 3.35, round2(final))
}

func TestFinalScore_UsesUnroundedComponents(t *testing.T) {
	// 0.55*1.004 + 0.45*1.004 = 1.004, while the rounded parts would give 1.00
	assert.InDelta(t, 1.004, FinalScore(1.004, 1.004), 1e-12)
}

func TestScores_ClampNegativeInputs(t *testing.T) {
	assert.Equal(t, 0.0, TrafficScore(-10, -0.5, -0.1))
	assert.Equal(t, 0.0, ReplicationScore(-3, -10, -0.5))
}

func TestScores_ZeroInputs(t *testing.T) {
	assert.Equal(t, 0.0, TrafficScore(0, 0, 0))
	assert.Equal(t, 0.0, ReplicationScore(0, 0, 0))
	assert.Equal(t, 0.0, FinalScore(0, 0))
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{4.154386955455984, 4.15},
		{2.3674358759287073, 2.37},
		{0.125, 0.12},
		{0.135, 0.14},
		{2.675, 2.67},
		{1250.125, 1250.12},
		{10, 10},
		{0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, round2(tt.in), "round2(%v)", tt.in)
	}
}
