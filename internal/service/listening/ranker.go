// internal/service/listening/ranker.go

package listening

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"shortsradar/internal/domain/trend"
	"shortsradar/internal/logger"
)

const (
	publishedAfterLayout = "2006-01-02T15:04:05Z"
	displayLayout        = "2006-01-02 15:04"
	eventTopIDs          = 10

	videoURLPrefix   = "https://www.youtube.com/watch?v="
	channelURLPrefix = "https://www.youtube.com/channel/"
)

// Observer receives ranking metrics
type Observer interface {
	ObserveRanking(outcome string, rows int, d time.Duration)
	ObserveSkip(reason string)
}

// RankerConfig contains configuration for the ranker
type RankerConfig struct {
	// DisplayZone is the zone published_at is rendered in. Defaults to UTC+9.
	DisplayZone *time.Location
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Ranker implements the trend.Ranker interface
type Ranker struct {
	source    trend.VideoSource
	publisher trend.EventPublisher
	observer  Observer
	log       logger.Logger
	config    RankerConfig
}

// NewRanker creates a new ranker. publisher, observer and log may be nil.
func NewRanker(
	source trend.VideoSource,
	publisher trend.EventPublisher,
	observer Observer,
	log logger.Logger,
	config RankerConfig,
) *Ranker {
	if config.DisplayZone == nil {
		config.DisplayZone = time.FixedZone("KST", 9*60*60)
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Ranker{
		source:    source,
		publisher: publisher,
		observer:  observer,
		log:       log,
		config:    config,
	}
}

// Rank searches for recent shorts matching criteria.Keyword, scores the ones
// that pass the length and view filters, and returns them ordered by
// criteria.SortBy. Any failure aborts the run; no partial rows are returned.
func (r *Ranker) Rank(ctx context.Context, criteria trend.SearchCriteria) ([]trend.ScoredResult, error) {
	start := time.Now()

	if !r.source.Configured() {
		err := &trend.ConfigurationError{Setting: "YOUTUBE_API_KEY"}
		r.observer.ObserveRanking(outcomeOf(err), 0, time.Since(start))
		return nil, err
	}

	criteria = criteria.WithDefaults()
	if criteria.Keyword == "" {
		err := &trend.ValidationError{Field: "query", Reason: "keyword is required"}
		r.observer.ObserveRanking(outcomeOf(err), 0, time.Since(start))
		return nil, err
	}

	runID := uuid.New().String()
	log := r.log.With(
		logger.String("run_id", runID),
		logger.String("keyword", criteria.Keyword),
		logger.String("sort_by", string(criteria.SortBy)),
		logger.Int64("min_views", criteria.MinViews),
	)

	rows, candidates, err := r.run(ctx, criteria, log)
	elapsed := time.Since(start)
	r.observer.ObserveRanking(outcomeOf(err), len(rows), elapsed)
	if err != nil {
		log.Warn("ranking failed", logger.Error(err), logger.Duration("elapsed", elapsed))
		return nil, err
	}

	fields := []logger.Field{
		logger.Int("candidates", candidates),
		logger.Int("rows", len(rows)),
		logger.Duration("elapsed", elapsed),
	}
	if len(rows) > 0 {
		fields = append(fields, logger.Float64("top_score", rows[0].Score(criteria.SortBy)))
	}
	log.Info("ranking completed", fields...)

	r.publishRanked(ctx, log, runID, criteria, candidates, rows)

	return rows, nil
}

// run executes the search, enrichment, filter and scoring steps
func (r *Ranker) run(ctx context.Context, criteria trend.SearchCriteria, log logger.Logger) ([]trend.ScoredResult, int, error) {
	now := r.config.Now()
	publishedAfter := now.Add(-criteria.Lookback).UTC().Format(publishedAfterLayout)

	ids, err := r.source.SearchVideoIDs(ctx, criteria.Keyword, publishedAfter)
	if err != nil {
		return nil, 0, fmt.Errorf("search candidates: %w", err)
	}
	if len(ids) == 0 {
		return []trend.ScoredResult{}, 0, nil
	}

	videos, err := r.source.Videos(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch video details: %w", err)
	}

	channelIDs := make([]string, 0, len(videos))
	for _, v := range videos {
		channelIDs = append(channelIDs, v.ChannelID)
	}
	channels, err := r.source.Channels(ctx, channelIDs)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch channel stats: %w", err)
	}
	stats, err := buildChannelStats(channels)
	if err != nil {
		return nil, 0, fmt.Errorf("read channel stats: %w", err)
	}

	rows := make([]trend.ScoredResult, 0, len(videos))
	for _, v := range videos {
		c, skip, err := parseCandidate(v, criteria.MinViews)
		if err != nil {
			return nil, 0, fmt.Errorf("read video details: %w", err)
		}
		if skip != "" {
			r.observer.ObserveSkip(skip)
			log.Debug("candidate skipped", logger.String("video_id", v.ID), logger.String("reason", skip))
			continue
		}
		rows = append(rows, r.score(c, stats.SubscribersOf(c.ChannelID), now))
	}

	sortResults(rows, criteria.SortBy)
	return rows, len(videos), nil
}

// score derives metrics for c and shapes the display row
func (r *Ranker) score(c trend.VideoCandidate, subscribers int64, now time.Time) trend.ScoredResult {
	m := Derive(c, subscribers, now)
	traffic := TrafficScore(m.ViewsPerHour, m.LikeRate, m.CommentRate)
	replication := ReplicationScore(m.ViewSubRatio, m.ViewsPerHour, m.LikeRate)
	final := FinalScore(traffic, replication)

	channelURL := ""
	if c.ChannelID != "" {
		channelURL = channelURLPrefix + c.ChannelID
	}

	return trend.ScoredResult{
		VideoID:          c.ID,
		Title:            c.Title,
		VideoURL:         videoURLPrefix + c.ID,
		ChannelTitle:     c.ChannelTitle,
		ChannelURL:       channelURL,
		Views:            c.Views,
		Likes:            c.Likes,
		ViewsPerHour:     round2(m.ViewsPerHour),
		ViewSubRatio:     round2(m.ViewSubRatio),
		TrafficScore:     round2(traffic),
		ReplicationScore: round2(replication),
		FinalScore:       round2(final),
		PublishedAt:      c.PublishedAt.In(r.config.DisplayZone).Format(displayLayout),
	}
}

// sortResults orders rows by the selected score, highest first. Equal
// scores keep their input order.
func sortResults(rows []trend.ScoredResult, mode trend.SortMode) {
	slices.SortStableFunc(rows, func(a, b trend.ScoredResult) int {
		return cmp.Compare(b.Score(mode), a.Score(mode))
	})
}

// publishRanked announces a finished run. Failures are logged only.
func (r *Ranker) publishRanked(
	ctx context.Context,
	log logger.Logger,
	runID string,
	criteria trend.SearchCriteria,
	candidates int,
	rows []trend.ScoredResult,
) {
	top := make([]string, 0, min(len(rows), eventTopIDs))
	for _, row := range rows[:min(len(rows), eventTopIDs)] {
		top = append(top, row.VideoID)
	}

	event := trend.RankedEvent{
		RunID:       runID,
		Keyword:     criteria.Keyword,
		SortBy:      criteria.SortBy,
		MinViews:    criteria.MinViews,
		Candidates:  candidates,
		Rows:        len(rows),
		TopVideoIDs: top,
		GeneratedAt: r.config.Now().UTC(),
	}
	if err := r.publisher.PublishRanked(ctx, event); err != nil {
		log.Warn("failed to publish ranked event", logger.Error(err))
	}
}

// outcomeOf labels a run result for metrics
func outcomeOf(err error) string {
	var (
		cfgErr       *trend.ConfigurationError
		validErr     *trend.ValidationError
		upstreamErr  *trend.UpstreamError
		malformedErr *trend.MalformedDataError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &cfgErr):
		return "not_configured"
	case errors.As(err, &validErr):
		return "invalid_request"
	case errors.As(err, &upstreamErr):
		return "upstream_error"
	case errors.As(err, &malformedErr):
		return "malformed_data"
	default:
		return "error"
	}
}

type nopPublisher struct{}

func (nopPublisher) PublishRanked(context.Context, trend.RankedEvent) error { return nil }

type nopObserver struct{}

func (nopObserver) ObserveRanking(string, int, time.Duration) {}

func (nopObserver) ObserveSkip(string) {}
