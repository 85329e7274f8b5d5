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
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// EurostatClient downloads whole datasets from the Eurostat dissemination API
type EurostatClient struct {
	baseConnector
}

func NewEurostatClient(baseURL string, logger *Logger, metrics *APIMetrics, debug bool) *EurostatClient {
	if baseURL == "" {
		baseURL = DefaultEurostatBaseURL
	}
	return &EurostatClient{
		baseConnector: newBaseConnector("eurostat", baseURL, EurostatClientTimeout, logger, metrics, debug),
	}
}

// GetDataset fetches a dataset as TSV and flattens it into one record per
// dimension combination, with one column per time period.
func (c *EurostatClient) GetDataset(ctx context.Context, code string) (*Dataset, error) {
	endpoint := "/data/" + url.PathEscape(code)
	query := url.Values{}
	query.Set("format", "TSV")
	query.Set("compressed", "true")

	body, err := c.get(ctx, endpoint, query)
	if err != nil {
		return nil, err
	}

	ds, err := parseEurostatTSV(body)
	if err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	if ds.Empty() {
		return nil, fmt.Errorf("dataset %s: %w", code, ErrEmptyPayload)
	}

	c.logger.Debug("Parsed Eurostat dataset",
		"dataset", code,
		"rows", ds.Len(),
		"columns", len(ds.Columns),
	)
	return ds, nil
}

func isGzip(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}

// parseEurostatTSV decodes the SDMX TSV layout. The first header cell lists
// the dimension names separated by commas (the last one being
// `geo\TIME_PERIOD`) and the first cell of each row holds the matching codes.
// The remaining cells are observations such as "123.4", "56 p" or ": c".
func parseEurostatTSV(raw []byte) (*Dataset, error) {
	var r io.Reader = bytes.NewReader(raw)
	if isGzip(raw) {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		return NewDataset(), nil
	}

	header := strings.Split(strings.TrimRight(scanner.Text(), "\r"), "\t")
	dims := splitTrim(header[0], ",")
	periods := make([]string, 0, len(header)-1)
	for _, p := range header[1:] {
		periods = append(periods, strings.TrimSpace(p))
	}

	ds := NewDataset(append(append([]string{}, dims...), periods...)...)

	line := 1
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		cells := strings.Split(text, "\t")
		codes := splitTrim(cells[0], ",")
		if len(codes) != len(dims) {
			return nil, fmt.Errorf("line %d: expected %d dimension codes, got %d", line, len(dims), len(codes))
		}

		rec := make(Record, len(ds.Columns))
		for i, dim := range dims {
			rec[dim] = StringValue(codes[i])
		}
		for i, period := range periods {
			if i+1 < len(cells) {
				rec[period] = parseObservation(cells[i+1])
			} else {
				rec[period] = Missing
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read line %d: %w", line+1, err)
	}
	return ds, nil
}

// parseObservation strips status flags from an observation. ":" marks a
// value that is not available.
func parseObservation(cell string) Value {
	fields := strings.Fields(cell)
	if len(fields) == 0 || fields[0] == EurostatMissingMarker {
		return Missing
	}
	f, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Missing
	}
	return NumberValue(f)
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
