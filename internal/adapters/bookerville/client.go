package bookerville

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/JCCTorres/toplist-backend-sub001/internal/adapters/observability"
	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
)

// Config carries everything the client needs; nothing is read from the
// environment here.
type Config struct {
	BaseURL    string
	Account    string // shared credential, appended to every request
	Secret     string // shared credential, appended to every request
	Timeout    time.Duration
	MaxRetries int // total attempts per call
	RetryDelay time.Duration
	RPS        int
}

type Client struct {
	cfg Config
	hc  *http.Client
	rl  *rate.Limiter
}

func New(cfg Config) (*Client, error) {
	if cfg.Account == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("bookerville credentials are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		rl:  rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS),
	}, nil
}

// ---- Endpoints ----

func (c *Client) PropertySummaries(ctx context.Context) ([]map[string]any, error) {
	m, err := c.get(ctx, "API-PropertySummary", nil)
	if err != nil {
		return nil, err
	}
	return elements(m, "property"), nil
}

func (c *Client) PropertyDetails(ctx context.Context, bkvID string) (map[string]any, error) {
	return c.get(ctx, "API-PropertyDetails", url.Values{"bkvPropertyId": {bkvID}})
}

func (c *Client) Availability(ctx context.Context, bkvID string, from, to string) (map[string]any, error) {
	return c.get(ctx, "API-Availability", url.Values{
		"bkvPropertyId": {bkvID},
		"beginDate":     {from},
		"endDate":       {to},
	})
}

func (c *Client) Rates(ctx context.Context, bkvID string) (map[string]any, error) {
	return c.get(ctx, "API-Rates", url.Values{"bkvPropertyId": {bkvID}})
}

func (c *Client) Reviews(ctx context.Context, bkvID string, limit int) ([]map[string]any, error) {
	m, err := c.get(ctx, "API-GuestReviews", url.Values{
		"bkvPropertyId": {bkvID},
		"limit":         {strconv.Itoa(limit)},
	})
	if err != nil {
		return nil, err
	}
	return elements(m, "review"), nil
}

func (c *Client) Search(ctx context.Context, q domain.SearchQuery) ([]map[string]any, error) {
	m, err := c.get(ctx, "API-MultiPropertySearch", url.Values{
		"beginDate": {q.CheckIn},
		"endDate":   {q.CheckOut},
		"adults":    {strconv.Itoa(q.Adults)},
		"children":  {strconv.Itoa(q.Children)},
	})
	if err != nil {
		return nil, err
	}
	return elements(m, "property"), nil
}

func (c *Client) SubmitBooking(ctx context.Context, bkvID string, booking map[string]string) (map[string]any, error) {
	v := url.Values{"bkvPropertyId": {bkvID}}
	for k, val := range booking {
		v.Set(k, val)
	}
	return c.get(ctx, "API-BookingRequest", v)
}

func (c *Client) PaymentStatus(ctx context.Context, bookingRef string) (map[string]any, error) {
	return c.get(ctx, "API-PaymentStatus", url.Values{"bookingRef": {bookingRef}})
}

// ---- Internals ----

// get performs one logical call: rate-limit, then up to MaxRetries HTTP
// attempts with a fixed delay between them. Transient failures (network,
// timeout, 429, 5xx) are retried; 4xx and unparsable bodies are final.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (map[string]any, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	u, err := c.buildURL(endpoint, params)
	if err != nil {
		return nil, err
	}

	var lastErr error
	var lastStatus int
	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/xml, text/xml")
		req.Header.Set("User-Agent", "toplist-backend/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("bookerville", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, &domain.RemoteAPIError{Endpoint: endpoint, Attempts: attempt, Err: ctx.Err()}
			}
			lastErr, lastStatus = err, 0
			if attempt < c.cfg.MaxRetries && sleepCtx(ctx, c.cfg.RetryDelay) {
				continue
			}
			return nil, &domain.RemoteAPIError{Endpoint: endpoint, Attempts: attempt, Err: lastErr}
		}
		observability.ObserveExternal("bookerville", endpoint, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusOK:
			body, rerr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			resp.Body.Close()
			if rerr != nil {
				lastErr, lastStatus = rerr, resp.StatusCode
				if attempt < c.cfg.MaxRetries && sleepCtx(ctx, c.cfg.RetryDelay) {
					continue
				}
				return nil, &domain.RemoteAPIError{Endpoint: endpoint, Status: lastStatus, Attempts: attempt, Err: lastErr}
			}
			m, perr := parseXML(bytes.NewReader(body))
			if perr != nil {
				// malformed body: retrying would fetch the same bytes
				return nil, &domain.RemoteAPIError{Endpoint: endpoint, Status: resp.StatusCode, Attempts: attempt, Err: perr}
			}
			if msg := apiErrorMessage(m); msg != "" {
				return nil, &domain.RemoteAPIError{Endpoint: endpoint, Status: resp.StatusCode, Attempts: attempt, Err: fmt.Errorf("remote error: %s", msg)}
			}
			// original document kept for the audit column
			m[RawKey] = string(body)
			return m, nil

		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return nil, &domain.RemoteAPIError{Endpoint: endpoint, Status: resp.StatusCode, Attempts: attempt, Err: domain.ErrNotFound}

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			lastErr = fmt.Errorf("remote status %d", resp.StatusCode)
			lastStatus = resp.StatusCode
			if attempt < c.cfg.MaxRetries && sleepCtx(ctx, c.cfg.RetryDelay) {
				continue
			}
			return nil, &domain.RemoteAPIError{Endpoint: endpoint, Status: lastStatus, Attempts: attempt, Err: lastErr}

		default:
			// other 4xx: caller bug or revoked credentials, never retried
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, &domain.RemoteAPIError{
				Endpoint: endpoint,
				Status:   resp.StatusCode,
				Attempts: attempt,
				Err:      fmt.Errorf("bad status: %s", string(b)),
			}
		}
	}

	return nil, &domain.RemoteAPIError{Endpoint: endpoint, Status: lastStatus, Attempts: c.cfg.MaxRetries, Err: lastErr}
}

// buildURL appends the shared credentials and default parameters the remote
// API expects on every request.
func (c *Client) buildURL(endpoint string, params url.Values) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", err
	}
	u.Path = u.Path + "/" + endpoint
	v := url.Values{}
	for k, vals := range params {
		for _, val := range vals {
			v.Add(k, val)
		}
	}
	v.Set("account", c.cfg.Account)
	v.Set("s3cret", c.cfg.Secret)
	v.Set("fullSizePhotos", "true")
	v.Set("currency", "USD")
	u.RawQuery = v.Encode()
	return u.String(), nil
}

// apiErrorMessage digs out the in-band <error> element some endpoints return
// with a 200 status.
func apiErrorMessage(m map[string]any) string {
	switch e := m["error"].(type) {
	case string:
		return e
	case map[string]any:
		if s, ok := e["message"].(string); ok {
			return s
		}
		if s, ok := e["#text"].(string); ok {
			return s
		}
	}
	return ""
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
