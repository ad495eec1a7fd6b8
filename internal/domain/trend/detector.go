// internal/domain/trend/detector.go

package trend

import (
	"context"
)

// Ranker defines the interface for ranking trending shorts
type Ranker interface {
	// Rank runs one search-and-score pass and returns rows ordered by criteria.SortBy
	Rank(ctx context.Context, criteria SearchCriteria) ([]ScoredResult, error)
}

// VideoSource defines the platform calls a ranking run depends on
type VideoSource interface {
	// Configured reports whether the source has the credentials it needs
	Configured() bool

	// SearchVideoIDs returns IDs of videos matching keyword published after publishedAfter
	SearchVideoIDs(ctx context.Context, keyword, publishedAfter string) ([]string, error)

	// Videos returns full records for the given video IDs
	Videos(ctx context.Context, ids []string) ([]RawVideo, error)

	// Channels returns statistics for the given channel IDs
	Channels(ctx context.Context, ids []string) ([]RawChannel, error)
}

// EventPublisher defines the interface for announcing finished rankings
type EventPublisher interface {
	PublishRanked(ctx context.Context, event RankedEvent) error
}
