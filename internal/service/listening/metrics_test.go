package listening

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shortsradar/internal/domain/trend"
)

func TestDerive_AgeFloor(t *testing.T) {
	now := time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		publishedAt time.Time
		wantAge     float64
	}{
		{"same instant", now, 0.2},
		{"one minute ago", now.Add(-time.Minute), 0.2},
		{"published in the future", now.Add(time.Hour), 0.2},
		{"half an hour ago", now.Add(-30 * time.Minute), 0.5},
		{"two hours ago", now.Add(-2 * time.Hour), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Derive(trend.VideoCandidate{PublishedAt: tt.publishedAt, Views: 1000}, 10, now)
			assert.InDelta(t, tt.wantAge, m.AgeHours, 1e-9)
			assert.InDelta(t, 1000/tt.wantAge, m.ViewsPerHour, 1e-6)
		})
	}
}

func TestDerive_NoSubscribers(t *testing.T) {
	now := time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC)
	c := trend.VideoCandidate{PublishedAt: now.Add(-time.Hour), Views: 7300}

	m := Derive(c, 0, now)
	assert.Equal(t, 7300.0, m.ViewSubRatio)
}

func TestDerive_NoViews(t *testing.T) {
	now := time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC)
	c := trend.VideoCandidate{PublishedAt: now.Add(-time.Hour), Likes: 4, Comments: 2}

	m := Derive(c, 100, now)
	assert.Equal(t, 0.0, m.LikeRate)
	assert.Equal(t, 0.0, m.CommentRate)
	assert.Equal(t, 0.0, m.ViewsPerHour)
	assert.Equal(t, 0.0, m.ViewSubRatio)
}
