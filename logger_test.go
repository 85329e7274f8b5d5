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
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
)

// testLogger returns a logger that discards output
func testLogger(t *testing.T) *Logger {
	t.Helper()
	return newLogger(io.Discard, true, false)
}

func TestLoggerWithComponentKeepsOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, false, false).WithComponent("loader").WithRunID("run-1")

	logger.Info("hello")
	logger.UserMessage("plain %d", 42)

	out := buf.String()
	for _, want := range []string{"component=loader", "run_id=run-1", "msg=hello", "plain 42\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got %q", want, out)
		}
	}
}

func TestJSONLoggerLogAPIError(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, false, true)

	logger.LogAPIError(NewAPIError(503, "/data/nrg_cb_oil", "unavailable", nil), "/data/nrg_cb_oil")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["status_code"] != float64(503) {
		t.Errorf("Expected status_code 503, got %v", entry["status_code"])
	}
	if entry["retryable"] != true {
		t.Errorf("Expected retryable true, got %v", entry["retryable"])
	}
}

func TestLogAPIErrorPlainError(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, false, false)

	logger.LogAPIError(errors.New("dial tcp: refused"), "/v2/international/data/")

	if !strings.Contains(buf.String(), "dial tcp: refused") {
		t.Errorf("Expected error text in log, got %q", buf.String())
	}
}

func TestDebugLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false, false).LogCacheHit(SourceEU, "data/eu.csv", 3)
	if buf.Len() != 0 {
		t.Errorf("Expected debug message suppressed at info level, got %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, true, false).LogCacheHit(SourceEU, "data/eu.csv", 3)
	if !strings.Contains(buf.String(), "Cache hit") {
		t.Errorf("Expected debug message at debug level, got %q", buf.String())
	}
}
