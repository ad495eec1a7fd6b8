// internal/service/listening/metrics.go

package listening

import (
	"time"

	"shortsradar/internal/domain/trend"
)

// minAgeHours keeps views-per-hour finite for videos published moments ago
const minAgeHours = 0.2

// Derive computes the intermediate metrics for one candidate
func Derive(c trend.VideoCandidate, subscribers int64, now time.Time) trend.DerivedMetrics {
	ageHours := now.Sub(c.PublishedAt).Hours()
	if ageHours < minAgeHours {
		ageHours = minAgeHours
	}

	views := float64(c.Views)
	m := trend.DerivedMetrics{
		AgeHours:     ageHours,
		ViewsPerHour: views / ageHours,
		ViewSubRatio: views,
	}
	if c.Views > 0 {
		m.LikeRate = float64(c.Likes) / views
		m.CommentRate = float64(c.Comments) / views
	}
	if subscribers > 0 {
		m.ViewSubRatio = views / float64(subscribers)
	}
	return m
}
