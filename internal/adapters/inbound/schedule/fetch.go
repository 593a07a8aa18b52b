package schedule

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"league-predictor/internal/telemetry"
)

// Client fetches schedule documents over HTTP. Requests are rate limited
// so refresh loops stay polite to the data source.
type Client struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(url string) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
	}
}

// Fetch downloads and validates the schedule document.
func (c *Client) Fetch(ctx context.Context) (Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Document{}, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Document{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("schedule fetch: status %d", resp.StatusCode)
	}

	telemetry.Metrics.FetchLatency.Record(time.Since(start))
	telemetry.Debugf("schedule: GET %s -> %d (%s)", c.url, resp.StatusCode, time.Since(start))

	return Parse(body)
}
