package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tcgradar/signal-engine/internal/logger"
)

const (
	maxRetries    = 3
	retryBaseWait = 500 * time.Millisecond
)

// HTTPClient is the shared transport every PriceSource/MetadataSource/
// VelocitySource implementation embeds, generalized from the teacher's
// ESI client: a 30s-timeout http.Client, bounded exponential backoff on
// 5xx/network errors, 429 honored as a retry signal, no retry on other
// 4xx responses.
type HTTPClient struct {
	http *http.Client
	tag  string // logger tag, e.g. "TCGPLAYER"
}

// NewHTTPClient builds a client tagged for log lines.
func NewHTTPClient(tag string) *HTTPClient {
	return &HTTPClient{http: &http.Client{Timeout: 30 * time.Second}, tag: tag}
}

func isRetryable(statusCode int) bool {
	return statusCode == 429 || statusCode >= 500
}

// GetJSON fetches url with the given headers and decodes the JSON body
// into dst, retrying transient failures with exponential backoff.
func (c *HTTPClient) GetJSON(ctx context.Context, url string, headers map[string]string, dst any) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := retryBaseWait * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			logger.Warn(c.tag, "request failed", logger.F("attempt", attempt+1), logger.F("err", err.Error()))
			continue
		}

		if resp.StatusCode == http.StatusOK {
			defer resp.Body.Close()
			if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("%s: %d: %s", url, resp.StatusCode, string(body))

		if !isRetryable(resp.StatusCode) {
			return lastErr
		}
		logger.Warn(c.tag, "retryable response", logger.F("status", resp.StatusCode), logger.F("attempt", attempt+1))
	}
	return lastErr
}
