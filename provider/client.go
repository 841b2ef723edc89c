package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/padraicbc/mikerp/metrics"
)

const pageSize = 50

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL string
	User    string
	Pass    string
	// Rate is the provider's request ceiling per second. Retries count
	// against it.
	Rate    float64
	Timeout time.Duration
	Retries int
}

// Client talks to the racing data API over HTTP basic auth.
type Client struct {
	base   string
	user   string
	pass   string
	http   *retryablehttp.Client
	logger *zap.Logger
}

// NewClient builds a Client whose every request, retries included, waits
// on a token bucket at cfg.Rate.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	logger = logger.With(zap.String("component", "provider"))

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.Retries
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = leveled{logger.Sugar()}
	rc.HTTPClient.Timeout = cfg.Timeout
	rc.HTTPClient.Transport = &ThrottledTransport{
		Base:    rc.HTTPClient.Transport,
		Limiter: rate.NewLimiter(rate.Limit(cfg.Rate), 1),
	}

	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		user:   cfg.User,
		pass:   cfg.Pass,
		http:   rc,
		logger: logger,
	}
}

// ThrottledTransport waits on Limiter before every round trip.
type ThrottledTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

// RoundTrip implements http.RoundTripper.
func (t *ThrottledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	metrics.ProviderRequests.WithLabelValues(endpoint(req.URL.Path)).Inc()
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// endpoint trims ids off a path so metric labels stay bounded.
func endpoint(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return "/" + strings.Join(parts, "/")
}

type resultsPage struct {
	Results []Race `json:"results"`
	Total   int    `json:"total"`
}

// Results fetches every result between from and to (YYYY-MM-DD, inclusive),
// following pagination.
func (c *Client) Results(ctx context.Context, from, to string) ([]Race, error) {
	var out []Race
	for skip := 0; ; skip += pageSize {
		q := url.Values{}
		q.Set("start_date", from)
		q.Set("end_date", to)
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("skip", strconv.Itoa(skip))

		var page resultsPage
		if err := c.get(ctx, "/v1/results", q, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Results...)
		if len(page.Results) < pageSize || len(out) >= page.Total {
			break
		}
	}
	c.logger.Debug("results fetched", zap.String("from", from), zap.String("to", to), zap.Int("races", len(out)))
	return out, nil
}

// Racecards fetches the declared runners for one day. Post-race fields are
// blank.
func (c *Client) Racecards(ctx context.Context, date string) ([]Race, error) {
	var body struct {
		Racecards []Race `json:"racecards"`
	}
	q := url.Values{}
	q.Set("date", date)
	if err := c.get(ctx, "/v1/racecards/pro", q, &body); err != nil {
		return nil, err
	}
	return body.Racecards, nil
}

// Horse fetches one horse's detail record.
func (c *Client) Horse(ctx context.Context, id string) (HorseDetail, error) {
	var hd HorseDetail
	err := c.get(ctx, "/v1/horses/"+url.PathEscape(id)+"/pro", nil, &hd)
	return hd, err
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.user, c.pass)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("GET %s: %w", path, ErrNotFound)
	case resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

// CardSource adapts racecard fetches to Source so upcoming races can be
// ingested day by day like results.
type CardSource struct {
	Client *Client
}

// Results fetches the racecards of every day from from to to.
func (s CardSource) Results(ctx context.Context, from, to string) ([]Race, error) {
	days, err := Days(from, to)
	if err != nil {
		return nil, err
	}
	var out []Race
	for _, d := range days {
		races, err := s.Client.Racecards(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("racecards %s: %w", d, err)
		}
		out = append(out, races...)
	}
	return out, nil
}

// Days lists every date from from to to inclusive.
func Days(from, to string) ([]string, error) {
	start, err := time.Parse(time.DateOnly, from)
	if err != nil {
		return nil, fmt.Errorf("bad from date: %w", err)
	}
	end, err := time.Parse(time.DateOnly, to)
	if err != nil {
		return nil, fmt.Errorf("bad to date: %w", err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("to date %s is before from date %s", to, from)
	}
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(time.DateOnly))
	}
	return out, nil
}

// leveled routes retryablehttp's logging through zap.
type leveled struct{ s *zap.SugaredLogger }

func (l leveled) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveled) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveled) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveled) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
