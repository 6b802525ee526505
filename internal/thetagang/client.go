// Package thetagang provides access to the thetagang.com API: the patron
// trade feed and the trending symbols list.
package thetagang

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/thetawatch/thetawatch/internal/models"
)

// Client provides access to the thetagang.com API.
type Client struct {
	apiBaseURL string
	tradesKey  string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a new thetagang.com client. tradesKey is the Authorization
// value for the patron trade feed; the trends endpoint is public.
func NewClient(apiBaseURL, tradesKey string, timeout time.Duration, maxRetries int, retryDelay time.Duration) *Client {
	return &Client{
		apiBaseURL: apiBaseURL,
		tradesKey:  tradesKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// Trades retrieves the most recent patron trades, newest first.
func (c *Client) Trades(ctx context.Context) ([]models.Trade, error) {
	endpoint := fmt.Sprintf("%s/api/patrons", c.apiBaseURL)

	resp, err := c.doRequest(ctx, endpoint, c.tradesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trades: %w", err)
	}
	defer resp.Body.Close()

	var response struct {
		Data []models.Trade `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode trades: %w", err)
	}

	return response.Data, nil
}

// Trade retrieves a single trade by guid from the patron feed. The API has no
// single-trade endpoint, so this scans the current feed.
func (c *Client) Trade(ctx context.Context, guid string) (models.Trade, error) {
	trades, err := c.Trades(ctx)
	if err != nil {
		return models.Trade{}, err
	}

	for _, t := range trades {
		if t.GUID == guid {
			return t, nil
		}
	}

	return models.Trade{}, fmt.Errorf("trade %s not found in recent trades", guid)
}

// Trends retrieves the currently trending symbols.
func (c *Client) Trends(ctx context.Context) ([]string, error) {
	endpoint := fmt.Sprintf("%s/api/trends", c.apiBaseURL)

	resp, err := c.doRequest(ctx, endpoint, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trends: %w", err)
	}
	defer resp.Body.Close()

	var response struct {
		Data struct {
			Trends []string `json:"trends"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode trends: %w", err)
	}

	return response.Data.Trends, nil
}

// doRequest performs an HTTP GET with retry logic on transient failures.
func (c *Client) doRequest(ctx context.Context, endpoint, authorization string) (*http.Response, error) {
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
		if err != nil {
			return nil, err
		}

		req.Header.Set("Accept", "application/json")
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(i+1) * c.retryDelay)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			time.Sleep(time.Duration(i+1) * c.retryDelay)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
