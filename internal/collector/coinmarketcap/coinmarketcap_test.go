package coinmarketcap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/newthinker/pulse/internal/collector"
	"github.com/newthinker/pulse/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinMarketCap_ImplementsSentimentSource(t *testing.T) {
	var _ collector.SentimentSource = (*CoinMarketCap)(nil)
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, latestPath, r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-CMC_PRO_API_KEY"))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCoinMarketCap_FetchSentiment(t *testing.T) {
	srv := serve(t, http.StatusOK, `{
		"data": {"value": 27, "update_time": "2024-09-19T12:00:00.000Z", "value_classification": "Fear"},
		"status": {"error_code": "0", "error_message": ""}
	}`)

	reading, err := New("test-key", WithBaseURL(srv.URL)).FetchSentiment(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 27, reading.Value)
	assert.Equal(t, core.ClassFear, reading.Classification)
	assert.Equal(t, "Fear", reading.Label)
	assert.Equal(t, time.Date(2024, 9, 19, 12, 0, 0, 0, time.UTC), reading.ObservedAt)
}

func TestCoinMarketCap_FetchSentiment_UnknownLabel(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"data": {"value": 85, "value_classification": "Euphoria"}}`)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := New("test-key", WithBaseURL(srv.URL))
	c.now = func() time.Time { return fixed }

	reading, err := c.FetchSentiment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.ClassExtremeGreed, reading.Classification)
	assert.Equal(t, fixed, reading.ObservedAt)
}

func TestCoinMarketCap_FetchSentiment_ZeroValue(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"data": {"value": 0, "value_classification": "Extreme fear"}}`)

	reading, err := New("test-key", WithBaseURL(srv.URL)).FetchSentiment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, reading.Value)
	assert.Equal(t, core.ClassExtremeFear, reading.Classification)
}

func TestCoinMarketCap_FetchSentiment_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `nope`},
		{"no data", `{"status": {}}`},
		{"missing value", `{"data": {"value_classification": "Fear"}}`},
		{"string value", `{"data": {"value": "27", "value_classification": "Fear"}}`},
		{"missing classification", `{"data": {"value": 27}}`},
		{"out of range", `{"data": {"value": 140, "value_classification": "Greed"}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, tc.body)
			_, err := New("test-key", WithBaseURL(srv.URL)).FetchSentiment(context.Background())
			assert.ErrorIs(t, err, core.ErrMalformedPayload)
		})
	}
}

func TestCoinMarketCap_FetchSentiment_HTTPError(t *testing.T) {
	srv := serve(t, http.StatusUnauthorized, `{"status": {"error_code": 1002, "error_message": "API key missing."}}`)

	_, err := New("test-key", WithBaseURL(srv.URL)).FetchSentiment(context.Background())
	assert.ErrorIs(t, err, core.ErrFetchFailed)
	assert.Contains(t, err.Error(), "API key missing.")
}
