// internal/domain/trend/model.go

package trend

import (
	"strings"
	"time"
)

// Search defaults applied when a request leaves a field out
const (
	DefaultLookbackDays = 3
	DefaultMinViews     = 5000

	// MaxShortDuration is the longest video still treated as a short
	MaxShortDuration = 65 * time.Second
)

// SortMode selects the score a ranking is ordered by
type SortMode string

const (
	SortTraffic     SortMode = "traffic"
	SortReplication SortMode = "replication"
	SortFinal       SortMode = "final"
)

// ParseSortMode maps a request value to a SortMode, falling back to SortFinal
func ParseSortMode(s string) SortMode {
	switch SortMode(strings.TrimSpace(s)) {
	case SortTraffic:
		return SortTraffic
	case SortReplication:
		return SortReplication
	default:
		return SortFinal
	}
}

// SearchCriteria is the input to one ranking run
type SearchCriteria struct {
	Keyword  string
	Lookback time.Duration
	MinViews int64
	SortBy   SortMode
}

// WithDefaults returns a copy with the keyword trimmed and unset or
// non-positive fields replaced by their defaults
func (c SearchCriteria) WithDefaults() SearchCriteria {
	c.Keyword = strings.TrimSpace(c.Keyword)
	if c.Lookback <= 0 {
		c.Lookback = DefaultLookbackDays * 24 * time.Hour
	}
	if c.MinViews <= 0 {
		c.MinViews = DefaultMinViews
	}
	c.SortBy = ParseSortMode(string(c.SortBy))
	return c
}

// RawVideo is a video record as the platform returns it. Counts are decimal
// strings and may be empty when the platform hides them.
type RawVideo struct {
	ID           string
	Title        string
	ChannelID    string
	ChannelTitle string
	PublishedAt  string
	Duration     string
	ViewCount    string
	LikeCount    string
	CommentCount string
}

// RawChannel is a channel record as the platform returns it
type RawChannel struct {
	ID              string
	SubscriberCount string
}

// VideoCandidate is a parsed video eligible for scoring
type VideoCandidate struct {
	ID           string
	Title        string
	ChannelID    string
	ChannelTitle string
	PublishedAt  time.Time
	Duration     time.Duration
	Views        int64
	Likes        int64
	Comments     int64
}

// ChannelStats maps channel IDs to subscriber counts
type ChannelStats map[string]int64

// SubscribersOf returns the subscriber count for a channel, or 0 when unknown
func (s ChannelStats) SubscribersOf(channelID string) int64 {
	return s[channelID]
}

// DerivedMetrics holds the intermediate values scores are computed from
type DerivedMetrics struct {
	AgeHours     float64
	ViewsPerHour float64
	LikeRate     float64
	CommentRate  float64
	ViewSubRatio float64
}

// ScoredResult is one ranked row as it is shown to the user
type ScoredResult struct {
	VideoID          string  `json:"-"`
	Title            string  `json:"title"`
	VideoURL         string  `json:"video_url"`
	ChannelTitle     string  `json:"channel_title"`
	ChannelURL       string  `json:"channel_url"`
	Views            int64   `json:"views"`
	Likes            int64   `json:"likes"`
	ViewsPerHour     float64 `json:"views_per_hour"`
	ViewSubRatio     float64 `json:"view_sub_ratio"`
	TrafficScore     float64 `json:"traffic_score"`
	ReplicationScore float64 `json:"replication_score"`
	FinalScore       float64 `json:"final_score"`
	PublishedAt      string  `json:"published_at"`
}

// Score returns the score field selected by mode
func (r ScoredResult) Score(mode SortMode) float64 {
	switch mode {
	case SortTraffic:
		return r.TrafficScore
	case SortReplication:
		return r.ReplicationScore
	default:
		return r.FinalScore
	}
}

// RankedEvent is published after a successful ranking run
type RankedEvent struct {
	RunID       string    `json:"run_id"`
	Keyword     string    `json:"keyword"`
	SortBy      SortMode  `json:"sort_by"`
	MinViews    int64     `json:"min_views"`
	Candidates  int       `json:"candidates"`
	Rows        int       `json:"rows"`
	TopVideoIDs []string  `json:"top_video_ids"`
	GeneratedAt time.Time `json:"generated_at"`
}
