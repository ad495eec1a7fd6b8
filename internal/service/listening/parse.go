// internal/service/listening/parse.go

package listening

import (
	"strconv"
	"time"

	"github.com/sosodev/duration"

	"shortsradar/internal/domain/trend"
)

// Reasons a candidate is left out of a ranking
const (
	skipTooLong  = "too_long"
	skipFewViews = "few_views"
)

// parseCandidate turns a raw record into a candidate. A non-empty skip reason
// means the record was filtered out; an error means the record could not be
// read at all. Fields past a filter are only parsed once the filter passes.
func parseCandidate(v trend.RawVideo, minViews int64) (trend.VideoCandidate, string, error) {
	c := trend.VideoCandidate{
		ID:           v.ID,
		Title:        v.Title,
		ChannelID:    v.ChannelID,
		ChannelTitle: v.ChannelTitle,
	}

	d, err := parseDuration(v.ID, v.Duration)
	if err != nil {
		return c, "", err
	}
	if d > trend.MaxShortDuration {
		return c, skipTooLong, nil
	}
	c.Duration = d

	if c.Views, err = parseCount(v.ID, "viewCount", v.ViewCount); err != nil {
		return c, "", err
	}
	if c.Views < minViews {
		return c, skipFewViews, nil
	}

	if c.Likes, err = parseCount(v.ID, "likeCount", v.LikeCount); err != nil {
		return c, "", err
	}
	if c.Comments, err = parseCount(v.ID, "commentCount", v.CommentCount); err != nil {
		return c, "", err
	}

	publishedAt, err := time.Parse(time.RFC3339, v.PublishedAt)
	if err != nil {
		return c, "", &trend.MalformedDataError{ID: v.ID, Field: "publishedAt", Value: v.PublishedAt, Err: err}
	}
	c.PublishedAt = publishedAt

	return c, "", nil
}

// parseDuration reads an ISO-8601 duration such as PT59S. A missing value
// counts as zero length.
func parseDuration(id, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := duration.Parse(value)
	if err != nil {
		return 0, &trend.MalformedDataError{ID: id, Field: "duration", Value: value, Err: err}
	}
	return d.ToTimeDuration(), nil
}

// parseCount reads a decimal count. Hidden counts arrive empty and read as 0.
func parseCount(id, field, value string) (int64, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &trend.MalformedDataError{ID: id, Field: field, Value: value, Err: err}
	}
	return n, nil
}

// buildChannelStats indexes subscriber counts by channel ID
func buildChannelStats(channels []trend.RawChannel) (trend.ChannelStats, error) {
	stats := make(trend.ChannelStats, len(channels))
	for _, ch := range channels {
		n, err := parseCount(ch.ID, "subscriberCount", ch.SubscriberCount)
		if err != nil {
			return nil, err
		}
		stats[ch.ID] = n
	}
	return stats, nil
}
