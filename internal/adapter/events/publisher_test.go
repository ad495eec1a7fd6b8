package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortsradar/internal/domain/trend"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.subject = subject
	c.data = data
	return c.err
}

func TestPublishRanked(t *testing.T) {
	conn := &fakeConn{}
	pub := NewNATSPublisher(conn, "trend")

	event := trend.RankedEvent{
		RunID:       "run-1",
		Keyword:     "먹방",
		SortBy:      trend.SortFinal,
		MinViews:    5000,
		Candidates:  40,
		Rows:        2,
		TopVideoIDs: []string{"a", "b"},
		GeneratedAt: time.Date(2026, 10, 19, 1, 2, 3, 0, time.UTC),
	}
	require.NoError(t, pub.PublishRanked(context.Background(), event))

	assert.Equal(t, "trend.ranked", conn.subject)

	var got trend.RankedEvent
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, event, got)
}

func TestPublishRanked_ConnError(t *testing.T) {
	pub := NewNATSPublisher(&fakeConn{err: errors.New("nats: connection closed")}, "trend")

	err := pub.PublishRanked(context.Background(), trend.RankedEvent{RunID: "r"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection closed")
}

func TestPublishRanked_CancelledContext(t *testing.T) {
	conn := &fakeConn{}
	pub := NewNATSPublisher(conn, "trend")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, pub.PublishRanked(ctx, trend.RankedEvent{}), context.Canceled)
	assert.Empty(t, conn.subject)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.PublishRanked(context.Background(), trend.RankedEvent{}))
}
