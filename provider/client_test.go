package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(url string, rate float64) *Client {
	return NewClient(ClientConfig{
		BaseURL: url,
		User:    "user",
		Pass:    "secret",
		Rate:    rate,
		Timeout: 5 * time.Second,
		Retries: 2,
	}, zap.NewNop())
}

func TestResultsPaginates(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "user" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "/v1/results", r.URL.Path)
		assert.Equal(t, "2024-05-01", r.URL.Query().Get("start_date"))

		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		n := pageSize
		if skip > 0 {
			n = 3
		}
		page := resultsPage{Total: pageSize + 3}
		for i := 0; i < n; i++ {
			page.Results = append(page.Results, Race{RaceID: strconv.Itoa(skip + i)})
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	races, err := testClient(srv.URL, 1000).Results(context.Background(), "2024-05-01", "2024-05-02")
	require.NoError(t, err)
	assert.Len(t, races, pageSize+3)
	assert.Equal(t, "52", races[len(races)-1].RaceID)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestHorseNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/horses/hrs_1/pro", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, 1000).Horse(context.Background(), "hrs_1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHorseRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"hrs_1","name":"Auguste Rodin (IRE)","sire_id":"sir_1","sire":"Deep Impact (JPN)"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 1000)
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = time.Millisecond

	hd, err := c.Horse(context.Background(), "hrs_1")
	require.NoError(t, err)
	assert.Equal(t, "Auguste Rodin (IRE)", hd.Name)
	assert.Equal(t, "sir_1", hd.SireID)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestTransportEnforcesRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 20)
	start := time.Now()
	for i := 0; i < 5; i++ {
		_, err := c.Horse(context.Background(), "h")
		require.NoError(t, err)
	}
	// 5 requests at 20/s need at least 4 intervals of 50ms
	assert.GreaterOrEqual(t, time.Since(start), 195*time.Millisecond)
}

func TestCardSourceWalksDays(t *testing.T) {
	var dates []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := r.URL.Query().Get("date")
		dates = append(dates, d)
		_, _ = w.Write([]byte(`{"racecards":[{"race_id":"rc_` + d + `"}]}`))
	}))
	defer srv.Close()

	races, err := CardSource{Client: testClient(srv.URL, 1000)}.Results(context.Background(), "2024-02-28", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-28", "2024-02-29", "2024-03-01"}, dates)
	assert.Len(t, races, 3)
}

func TestDays(t *testing.T) {
	_, err := Days("2024-05-02", "2024-05-01")
	assert.Error(t, err)
	_, err = Days("yesterday", "2024-05-01")
	assert.Error(t, err)
	days, err := Days("2024-05-01", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-05-01"}, days)
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "/v1/horses", endpoint("/v1/horses/hrs_123/pro"))
	assert.Equal(t, "/v1/results", endpoint("/v1/results"))
}
