package postal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"instalabel/internal/config"
	"instalabel/internal/util"
)

// ErrNoMatch is returned when the directory has no entry for a pincode.
// Callers treat every lookup failure as best-effort and stay silent.
var ErrNoMatch = errors.New("pincode not found")

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
}

type directoryResponse struct {
	Status     string `json:"Status"`
	Message    string `json:"Message"`
	PostOffice []struct {
		Name     string `json:"Name"`
		District string `json:"District"`
		State    string `json:"State"`
	} `json:"PostOffice"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.PostalAPIBaseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(cfg.PostalTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.PostalRateLimit),
	}
}

// Resolve maps a 6-digit pincode to its district name.
func (c *Client) Resolve(ctx context.Context, code string) (string, error) {
	if len(code) != 6 || !util.IsDigits(code) {
		return "", fmt.Errorf("invalid pincode: %q", code)
	}

	endpoint, err := url.Parse(c.baseURL + "/pincode/" + code)
	if err != nil {
		return "", err
	}

	body, err := c.fetchJSON(ctx, endpoint.String())
	if err != nil {
		return "", err
	}

	var payload []directoryResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}
	if len(payload) == 0 || payload[0].Status != "Success" || len(payload[0].PostOffice) == 0 {
		return "", ErrNoMatch
	}

	district := strings.TrimSpace(payload[0].PostOffice[0].District)
	if district == "" {
		return "", ErrNoMatch
	}
	return district, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 3 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("postal directory status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("postal directory error: status=%d body=%s", resp.StatusCode, string(body))
		}

		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("postal directory request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
