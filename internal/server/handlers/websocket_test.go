package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortsradar/internal/domain/trend"
)

func dialTrendSocket(t *testing.T, ranker trend.Ranker, config WebSocketConfig, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	srv := httptest.NewServer(TrendSocketHandler(ranker, nil, config))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	return websocket.DefaultDialer.Dial(url, header)
}

func TestTrendSocket_Rows(t *testing.T) {
	ranker := &fakeRanker{rows: []trend.ScoredResult{sampleRow}}
	conn, _, err := dialTrendSocket(t, ranker, DefaultWebSocketConfig(), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"query":"먹방","min_views":"9000"}`)))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply struct {
		Type string               `json:"type"`
		Rows []trend.ScoredResult `json:"rows"`
	}
	require.NoError(t, conn.ReadJSON(&reply))

	assert.Equal(t, "rows", reply.Type)
	require.Len(t, reply.Rows, 1)
	assert.Equal(t, "먹방 쇼츠", reply.Rows[0].Title)

	calls := ranker.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "먹방", calls[0].Keyword)
	assert.Equal(t, int64(9000), calls[0].MinViews)
}

func TestTrendSocket_ErrorFrame(t *testing.T) {
	ranker := &fakeRanker{err: &trend.ValidationError{Field: "query", Reason: "keyword is required"}}
	conn, _, err := dialTrendSocket(t, ranker, DefaultWebSocketConfig(), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"query":""}`)))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply errorFrame
	require.NoError(t, conn.ReadJSON(&reply))

	assert.Equal(t, errorFrame{Type: "error", Status: http.StatusBadRequest, Error: "검색어를 입력해주세요."}, reply)
}

func TestTrendSocket_RepliesInOrder(t *testing.T) {
	ranker := &fakeRanker{}
	conn, _, err := dialTrendSocket(t, ranker, DefaultWebSocketConfig(), nil)
	require.NoError(t, err)
	defer conn.Close()

	for _, q := range []string{"a", "b", "c"} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"query":"`+q+`"}`)))
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for i := 0; i < 3; i++ {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"rows","rows":[]}`, string(data))
	}

	calls := ranker.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "a", calls[0].Keyword)
	assert.Equal(t, "b", calls[1].Keyword)
	assert.Equal(t, "c", calls[2].Keyword)
}

func TestTrendSocket_RejectsOrigin(t *testing.T) {
	config := DefaultWebSocketConfig()
	config.AllowedOrigins = []string{"https://radar.example.com"}

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := dialTrendSocket(t, &fakeRanker{}, config, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"https://radar.example.com"}}
	conn, _, err := dialTrendSocket(t, &fakeRanker{}, config, header)
	require.NoError(t, err)
	conn.Close()
}
