// internal/adapter/youtube/client.go

package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shortsradar/internal/config"
	"shortsradar/internal/domain/trend"
	"shortsradar/internal/logger"
)

// BatchSize is the most IDs the videos and channels endpoints accept per call
const BatchSize = 50

// Endpoint names used in logs and metrics
const (
	EndpointSearch   = "search"
	EndpointVideos   = "videos"
	EndpointChannels = "channels"
)

const maxErrorBody = 512

// Recorder receives one observation per upstream call
type Recorder interface {
	ObserveUpstream(endpoint string, status int, d time.Duration)
}

// Client handles interactions with the YouTube Data API v3
type Client struct {
	HTTPClient *http.Client
	BaseURL    string

	apiKey     string
	regionCode string
	maxResults int
	timeout    time.Duration
	log        logger.Logger
	recorder   Recorder
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithBaseURL points the client at another API root
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.BaseURL = strings.TrimRight(baseURL, "/") }
}

// WithLogger sets the logger used for request tracing
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithRecorder sets where per-call metrics go
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// NewClient creates a new YouTube Data API client
func NewClient(cfg config.YouTubeConfig, opts ...Option) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > BatchSize {
		maxResults = BatchSize
	}

	c := &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		regionCode: cfg.RegionCode,
		maxResults: maxResults,
		timeout:    timeout,
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// SearchVideoIDs runs a keyword search ordered by view count and returns the
// IDs of matching videos. Results without a video ID (channels, playlists)
// are dropped.
func (c *Client) SearchVideoIDs(ctx context.Context, keyword, publishedAfter string) ([]string, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", keyword)
	params.Set("maxResults", strconv.Itoa(c.maxResults))
	params.Set("order", "viewCount")
	params.Set("publishedAfter", publishedAfter)
	if c.regionCode != "" {
		params.Set("regionCode", c.regionCode)
	}

	var resp searchResponse
	if err := c.get(ctx, EndpointSearch, params, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		ids = append(ids, item.ID.VideoID)
	}
	return ids, nil
}

// Videos fetches snippet, content details and statistics for ids, one
// request per batch of 50. Results keep batch order.
func (c *Client) Videos(ctx context.Context, ids []string) ([]trend.RawVideo, error) {
	var out []trend.RawVideo
	for _, batch := range chunk(ids, BatchSize) {
		params := url.Values{}
		params.Set("part", "snippet,contentDetails,statistics")
		params.Set("id", strings.Join(batch, ","))

		var resp videoListResponse
		if err := c.get(ctx, EndpointVideos, params, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Items {
			out = append(out, item.toRaw())
		}
	}
	return out, nil
}

// Channels fetches statistics for the distinct non-empty ids, one request
// per batch of 50
func (c *Client) Channels(ctx context.Context, ids []string) ([]trend.RawChannel, error) {
	var out []trend.RawChannel
	for _, batch := range chunk(distinct(ids), BatchSize) {
		params := url.Values{}
		params.Set("part", "statistics")
		params.Set("id", strings.Join(batch, ","))

		var resp channelListResponse
		if err := c.get(ctx, EndpointChannels, params, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Items {
			out = append(out, trend.RawChannel{
				ID:              item.ID,
				SubscriberCount: item.Statistics.SubscriberCount,
			})
		}
	}
	return out, nil
}

// get issues one GET against endpoint and decodes the JSON body into v
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, v any) error {
	params.Set("key", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.BaseURL, endpoint, params.Encode())

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &trend.UpstreamError{Op: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.observe(endpoint, 0, start)
		// url.Error carries the request URL, which includes the API key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return &trend.UpstreamError{Op: endpoint, Err: fmt.Errorf("failed to connect to YouTube API: %w", err)}
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.StatusCode, start)

	c.log.Debug("youtube api call",
		logger.String("endpoint", endpoint),
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &trend.UpstreamError{
			Op:         endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &trend.UpstreamError{Op: endpoint, Err: fmt.Errorf("failed to decode YouTube API response: %w", err)}
	}
	return nil
}

func (c *Client) observe(endpoint string, status int, start time.Time) {
	if c.recorder != nil {
		c.recorder.ObserveUpstream(endpoint, status, time.Since(start))
	}
}

// chunk splits ids into consecutive slices of at most size elements
func chunk(ids []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}

// distinct drops empty ids and repeats, keeping first-seen order
func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
