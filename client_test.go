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
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewEIAClient(t *testing.T) {
	client := NewEIAClient("", "test-api-key", testLogger(t), nil, true)

	if client.apiKey != "test-api-key" {
		t.Errorf("Expected apiKey test-api-key, got %s", client.apiKey)
	}

	if client.baseURL != DefaultEIABaseURL {
		t.Errorf("Expected baseURL %s, got %s", DefaultEIABaseURL, client.baseURL)
	}

	if client.ID() != "eia" {
		t.Errorf("Expected ID eia, got %s", client.ID())
	}

	if !client.debug {
		t.Error("Expected debug to be enabled")
	}

	if client.client == nil {
		t.Fatal("Expected HTTP client to be initialized")
	}

	if client.client.Timeout != 10*time.Second {
		t.Errorf("Expected HTTP timeout %v, got %v", 10*time.Second, client.client.Timeout)
	}

	if client.metrics == nil {
		t.Error("Expected metrics to be initialized")
	}
}

func TestNewEurostatClientHasNoTimeout(t *testing.T) {
	client := NewEurostatClient("https://example.test/sdmx/2.1/", testLogger(t), nil, false)

	if client.client.Timeout != 0 {
		t.Errorf("Expected no client timeout, got %v", client.client.Timeout)
	}

	if client.baseURL != "https://example.test/sdmx/2.1" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
}

func TestBaseConnectorGet(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantStatus int
	}{
		{name: "ok", status: http.StatusOK, body: "payload"},
		{name: "no content is success", status: http.StatusNoContent, body: ""},
		{name: "not found", status: http.StatusNotFound, body: "missing", wantErr: true, wantStatus: 404},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantErr: true, wantStatus: 500},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var gotUA string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUA = r.Header.Get("User-Agent")
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			metrics := NewAPIMetrics()
			c := newBaseConnector("test", server.URL, time.Second, testLogger(t), metrics, false)
			body, err := c.get(context.Background(), "/thing", nil)

			if gotUA != GetUserAgent() {
				t.Errorf("Expected User-Agent %q, got %q", GetUserAgent(), gotUA)
			}
			if metrics.TotalRequests != 1 {
				t.Errorf("Expected 1 request counted, got %d", metrics.TotalRequests)
			}

			if !tc.wantErr {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				if string(body) != tc.body {
					t.Errorf("Expected body %q, got %q", tc.body, body)
				}
				return
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected *APIError, got %T (%v)", err, err)
			}
			if apiErr.StatusCode != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, apiErr.StatusCode)
			}
			if metrics.FailedRequests != 1 {
				t.Errorf("Expected 1 failed request, got %d", metrics.FailedRequests)
			}
		})
	}
}

func TestBaseConnectorGetNetworkErrorMasksKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close() // nothing listens any more

	c := newBaseConnector("test", serverURL, time.Second, testLogger(t), nil, false)
	_, err := c.get(context.Background(), "/v2/international/data/", russiaProductionQuery("supersecretkey123456"))
	if err == nil {
		t.Fatal("Expected error from closed server")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 0 {
		t.Fatalf("Expected *APIError with status 0, got %v", err)
	}
	if strings.Contains(err.Error(), "supersecretkey123456") {
		t.Errorf("Error leaks the API key: %v", err)
	}
}

func TestBaseConnectorGetCancelledContext(t *testing.T) {
	c := newBaseConnector("test", "http://127.0.0.1:1", time.Second, testLogger(t), nil, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.get(ctx, "/", nil); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestMaskURL(t *testing.T) {
	testCases := []struct {
		name     string
		in       string
		contains string
		excludes string
	}{
		{
			name:     "long key keeps edges",
			in:       "https://api.eia.gov/v2/international/data/?api_key=abcdefghijklmnopqrst&frequency=monthly",
			contains: "abcd...qrst",
			excludes: "abcdefghijklmnopqrst",
		},
		{
			name:     "short key fully hidden",
			in:       "https://api.eia.gov/v2/?api_key=short",
			contains: "%2A%2A%2A",
			excludes: "short",
		},
		{
			name:     "no key untouched",
			in:       "https://ec.europa.eu/data/nrg_cb_oil?format=TSV",
			contains: "format=TSV",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := maskURL(tc.in)
			if !strings.Contains(got, tc.contains) {
				t.Errorf("maskURL() = %s, want to contain %s", got, tc.contains)
			}
			if tc.excludes != "" && strings.Contains(got, tc.excludes) {
				t.Errorf("maskURL() = %s, should not contain %s", got, tc.excludes)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected short unchanged, got %s", got)
	}
	got := truncate(strings.Repeat("x", 20), 10)
	if !strings.HasPrefix(got, strings.Repeat("x", 10)) || !strings.HasSuffix(got, "(truncated)") {
		t.Errorf("Unexpected truncation %q", got)
	}
}
