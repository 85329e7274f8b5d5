// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// APIMetrics tracks API call counts and durations
type APIMetrics struct {
	// API call durations by endpoint
	RequestDurations map[string][]float64 // endpoint -> list of durations in seconds

	TotalRequests  int64 // Total number of API requests, including failed ones
	FailedRequests int64 // Requests that errored or returned a non-2xx status
}

// NewAPIMetrics creates a new metrics tracker
func NewAPIMetrics() *APIMetrics {
	return &APIMetrics{
		RequestDurations: make(map[string][]float64),
	}
}

// baseConnector carries what every upstream connector shares: an HTTP client,
// a rate limiter, request logging and metrics.
type baseConnector struct {
	id      string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	debug   bool
	logger  *Logger
	metrics *APIMetrics
}

func newBaseConnector(id, baseURL string, timeout time.Duration, logger *Logger, metrics *APIMetrics, debug bool) baseConnector {
	if metrics == nil {
		metrics = NewAPIMetrics()
	}
	return baseConnector{
		id:      id,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(ConnectorRateLimit, ConnectorBurst),
		debug:   debug,
		logger:  logger.WithComponent(id),
		metrics: metrics,
	}
}

func (c *baseConnector) ID() string {
	return c.id
}

// get issues a single GET and returns the response body for 2xx responses.
// Any other status becomes an *APIError.
func (c *baseConnector) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", GetUserAgent())

	c.debugLogRequest(req.Method, reqURL, req.Header)

	startTime := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(startTime).Seconds()

	// Track total requests (including failed ones)
	c.metrics.TotalRequests++

	if err != nil {
		c.metrics.FailedRequests++
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = maskURL(urlErr.URL)
		}
		return nil, NewAPIError(0, endpoint, "request failed", err)
	}
	defer resp.Body.Close()

	c.logger.LogAPIRequest(req.Method, endpoint, resp.StatusCode, duration)
	c.metrics.RequestDurations[endpoint] = append(c.metrics.RequestDurations[endpoint], duration)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.FailedRequests++
		return nil, NewAPIError(resp.StatusCode, endpoint, "failed to read response body", err)
	}

	c.debugLogResponse(resp, body, duration)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.FailedRequests++
		return nil, NewAPIError(resp.StatusCode, endpoint, truncate(strings.TrimSpace(string(body)), MaxLoggedBodyBytes), nil)
	}

	return body, nil
}

// debugLogRequest logs detailed request information in debug mode
func (c *baseConnector) debugLogRequest(method, rawURL string, headers http.Header) {
	if !c.debug {
		return
	}

	flatHeaders := make(map[string]string)
	for key, values := range headers {
		if len(values) > 0 {
			flatHeaders[key] = values[0]
		}
	}

	c.logger.Debug("→ HTTP Request",
		"method", method,
		"url", maskURL(rawURL),
		"headers", flatHeaders,
	)
}

// debugLogResponse logs detailed response information in debug mode
func (c *baseConnector) debugLogResponse(resp *http.Response, bodyPreview []byte, duration float64) {
	if !c.debug {
		return
	}

	c.logger.Debug("← HTTP Response",
		"status", resp.StatusCode,
		"status_text", resp.Status,
		"duration_ms", duration*1000,
		"content_type", resp.Header.Get("Content-Type"),
	)

	// compressed payloads are not worth previewing
	if len(bodyPreview) > 0 && !isGzip(bodyPreview) {
		c.logger.Debug("  Response Body", "body", truncate(string(bodyPreview), MaxLoggedBodyBytes))
	}
}

// maskURL hides the api_key query parameter, keeping the first and last
// four characters of long keys.
func maskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	key := q.Get("api_key")
	if key == "" {
		return rawURL
	}
	if len(key) > 12 {
		q.Set("api_key", key[:4]+"..."+key[len(key)-4:])
	} else {
		q.Set("api_key", "***")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max] + "... (truncated)"
	}
	return s
}
