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
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		endpoint   string
		message    string
		err        error
		wantString string
		retryable  bool
	}{
		{
			name:       "retryable 429 error",
			statusCode: http.StatusTooManyRequests,
			endpoint:   "/v2/international/data/",
			message:    "rate limited",
			err:        nil,
			wantString: "API error (429) at /v2/international/data/: rate limited",
			retryable:  true,
		},
		{
			name:       "non-retryable 403 error",
			statusCode: http.StatusForbidden,
			endpoint:   "/v2/international/data/",
			message:    "invalid api_key",
			err:        nil,
			wantString: "API error (403) at /v2/international/data/: invalid api_key",
			retryable:  false,
		},
		{
			name:       "error with underlying cause",
			statusCode: http.StatusInternalServerError,
			endpoint:   "/data/nrg_cb_oil",
			message:    "server error",
			err:        errors.New("connection timeout"),
			wantString: "connection timeout",
			retryable:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := NewAPIError(tt.statusCode, tt.endpoint, tt.message, tt.err)

			errStr := apiErr.Error()
			if !strings.Contains(errStr, tt.wantString) {
				t.Errorf("Error() = %q, want to contain %q", errStr, tt.wantString)
			}

			if apiErr.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", apiErr.Retryable, tt.retryable)
			}

			if tt.err != nil && apiErr.Unwrap() != tt.err {
				t.Errorf("Unwrap() = %v, want %v", apiErr.Unwrap(), tt.err)
			}
		})
	}
}

func TestCacheError(t *testing.T) {
	cacheErr := &CacheError{
		Source:    SourceRussia,
		Operation: "read",
		Err:       ErrCacheMiss,
	}

	errStr := cacheErr.Error()
	if !strings.Contains(errStr, "russia") {
		t.Errorf("Error() = %q, want to contain source", errStr)
	}
	if !strings.Contains(errStr, "read") {
		t.Errorf("Error() = %q, want to contain operation", errStr)
	}
	if !errors.Is(cacheErr, ErrCacheMiss) {
		t.Error("errors.Is should see ErrCacheMiss through CacheError")
	}
}

func TestDecodeError(t *testing.T) {
	underlyingErr := errors.New("unexpected end of JSON input")
	decErr := &DecodeError{Endpoint: "/v2/international/data/", Err: underlyingErr}

	if !strings.Contains(decErr.Error(), "/v2/international/data/") {
		t.Errorf("Error() = %q, want to contain endpoint", decErr.Error())
	}
	if decErr.Unwrap() != underlyingErr {
		t.Errorf("Unwrap() = %v, want %v", decErr.Unwrap(), underlyingErr)
	}
}

func TestValidationError(t *testing.T) {
	t.Run("with value", func(t *testing.T) {
		valErr := &ValidationError{
			Field:   "balance_match",
			Value:   "exact",
			Message: "unsupported mode",
		}

		errStr := valErr.Error()
		if !strings.Contains(errStr, "balance_match") {
			t.Errorf("Error() = %q, want to contain field name", errStr)
		}
		if !strings.Contains(errStr, "exact") {
			t.Errorf("Error() = %q, want to contain value", errStr)
		}
	})

	t.Run("without value", func(t *testing.T) {
		valErr := &ValidationError{
			Field:   "data_dir",
			Message: "required",
		}

		errStr := valErr.Error()
		if !strings.Contains(errStr, "data_dir") {
			t.Errorf("Error() = %q, want to contain field name", errStr)
		}
	})
}

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		statusCode int
		retryable  bool
	}{
		{http.StatusOK, false},                 // 200
		{http.StatusBadRequest, false},         // 400
		{http.StatusUnauthorized, false},       // 401
		{http.StatusNotFound, false},           // 404
		{http.StatusTooManyRequests, true},     // 429
		{http.StatusInternalServerError, true}, // 500
		{http.StatusBadGateway, true},          // 502
		{http.StatusServiceUnavailable, true},  // 503
		{http.StatusGatewayTimeout, true},      // 504
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.statusCode), func(t *testing.T) {
			got := isRetryableStatus(tt.statusCode)
			if got != tt.retryable {
				t.Errorf("isRetryableStatus(%d) = %v, want %v", tt.statusCode, got, tt.retryable)
			}
		})
	}
}

func TestErrorsAsThroughWrapping(t *testing.T) {
	apiErr := NewAPIError(503, "/data/nrg_cb_oil", "unavailable", nil)
	wrapped := fmt.Errorf("eurostat: %w", apiErr)

	var targetAPIErr *APIError
	if !errors.As(wrapped, &targetAPIErr) {
		t.Fatal("errors.As should find APIError through fmt.Errorf wrapping")
	}

	if targetAPIErr.StatusCode != 503 {
		t.Errorf("StatusCode = %d, want 503", targetAPIErr.StatusCode)
	}
}
