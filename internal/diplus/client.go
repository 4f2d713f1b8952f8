package diplus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jkaberg/carinfo/internal/netutil"
	"github.com/sirupsen/logrus"
)

// Client handles communication with the local Di-Plus API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a Di-Plus client for baseURL, e.g.
// "http://localhost:8988/api/getDiPars".
func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: netutil.NewHTTPClient(timeout, logger),
		logger:     logger,
	}
}

// Fetch requests every sensor in Sensors and returns the parsed readings.
func (c *Client) Fetch(ctx context.Context) (Readings, error) {
	body, err := c.makeRequest(ctx, buildTemplate(Sensors))
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	readings, err := ParseResponse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}
	c.logger.WithField("active_sensors", len(readings)).Debug("Successfully parsed sensor data")
	return readings, nil
}

func (c *Client) makeRequest(ctx context.Context, template string) ([]byte, error) {
	fullURL := fmt.Sprintf("%s?text=%s", c.baseURL, url.QueryEscape(template))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"response_size": len(body),
	}).Debug("Received API response")
	return body, nil
}
