// internal/server/handlers/trend.go

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shortsradar/internal/domain/trend"
	"shortsradar/internal/logger"
)

// User-facing error messages
const (
	msgMissingAPIKey   = ".env 파일에 YOUTUBE_API_KEY를 설정해주세요."
	msgEmptyQuery      = "검색어를 입력해주세요."
	msgUpstreamFailure = "유튜브 데이터를 가져오는 중 오류가 발생했습니다: %s"
)

const maxRequestBody = 64 << 10

// maxLookbackDays is the longest lookback a time.Duration can hold
const maxLookbackDays = int64(math.MaxInt64 / int64(24*time.Hour))

// TrendHandler handles trend-related HTTP requests
type TrendHandler struct {
	ranker trend.Ranker
	log    logger.Logger
}

// NewTrendHandler creates a new trend handler
func NewTrendHandler(ranker trend.Ranker, log logger.Logger) *TrendHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &TrendHandler{
		ranker: ranker,
		log:    log,
	}
}

// trendRequest is the body of a ranking request
type trendRequest struct {
	Query    string      `json:"query"`
	Days     flexibleInt `json:"days"`
	MinViews flexibleInt `json:"min_views"`
	SortBy   string      `json:"sort_by"`
}

// criteria converts the request into search criteria. Zero values are left
// for the ranker to default; days beyond maxLookbackDays are capped.
func (req trendRequest) criteria() trend.SearchCriteria {
	days := min(int64(req.Days), maxLookbackDays)
	return trend.SearchCriteria{
		Keyword:  req.Query,
		Lookback: time.Duration(days) * 24 * time.Hour,
		MinViews: int64(req.MinViews),
		SortBy:   trend.SortMode(req.SortBy),
	}
}

// decodeTrendRequest reads a request body. A body that is empty or not a JSON
// object reads as an empty request.
func decodeTrendRequest(r io.Reader) (trendRequest, error) {
	var req trendRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return trendRequest{}, nil
		}
		return trendRequest{}, err
	}
	return req, nil
}

// trendResponse is the body of a successful ranking
type trendResponse struct {
	Rows []trend.ScoredResult `json:"rows"`
}

// RankTrends runs a ranking for the posted keyword and returns the rows
func (h *TrendHandler) RankTrends(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTrendRequest(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		h.log.Debug("unreadable trend request, using defaults", logger.Error(err))
	}

	rows, err := h.ranker.Rank(r.Context(), req.criteria())
	if err != nil {
		code, message := rankErrorResponse(err)
		h.logFailure(code, err)
		respondWithError(w, code, message)
		return
	}

	if rows == nil {
		rows = []trend.ScoredResult{}
	}
	respondWithJSON(w, http.StatusOK, trendResponse{Rows: rows})
}

func (h *TrendHandler) logFailure(code int, err error) {
	if code >= http.StatusInternalServerError {
		h.log.Error("trend ranking failed", logger.Int("status", code), logger.Error(err))
		return
	}
	h.log.Info("trend request rejected", logger.Int("status", code), logger.Error(err))
}

// rankErrorResponse maps a ranking error to a status code and user message
func rankErrorResponse(err error) (int, string) {
	var (
		cfgErr   *trend.ConfigurationError
		validErr *trend.ValidationError
	)
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest, msgMissingAPIKey
	case errors.As(err, &validErr):
		return http.StatusBadRequest, msgEmptyQuery
	default:
		return http.StatusInternalServerError, fmt.Sprintf(msgUpstreamFailure, err)
	}
}

// flexibleInt accepts a JSON number or a numeric string. Anything else,
// including null, false and unparseable strings, reads as 0.
type flexibleInt int64

func (n *flexibleInt) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	*n = 0
	switch x := v.(type) {
	case float64:
		switch {
		case x >= math.MaxInt64:
			*n = math.MaxInt64
		case x <= math.MinInt64:
			*n = math.MinInt64
		default:
			*n = flexibleInt(x)
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			*n = flexibleInt(i)
		}
	}
	return nil
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
