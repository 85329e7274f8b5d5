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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// MetricsCollector renders the outcome of a run in Prometheus text format,
// for node_exporter's textfile collector.
type MetricsCollector struct {
	result  *LoadResult
	metrics *APIMetrics
	now     func() time.Time
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(result *LoadResult, metrics *APIMetrics) *MetricsCollector {
	if metrics == nil {
		metrics = NewAPIMetrics()
	}
	return &MetricsCollector{
		result:  result,
		metrics: metrics,
		now:     time.Now,
	}
}

// WriteFile writes the exposition atomically so the collector never scrapes
// a half-written file.
func (m *MetricsCollector) WriteFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".energyfetch-*.prom.tmp")
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(m.collectMetrics()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// collectMetrics gathers all run metrics
func (m *MetricsCollector) collectMetrics() string {
	var metrics strings.Builder
	now := m.now()

	m.writeMetricHeader(&metrics, "energyfetch_info", "gauge", "Build information")
	m.writeMetric(&metrics, "energyfetch_info", map[string]string{
		"version":    GetVersion(),
		"user_agent": GetUserAgent(),
	}, 1)

	m.writeMetricHeader(&metrics, "energyfetch_last_run_timestamp", "gauge", "Unix timestamp of the last run")
	m.writeMetric(&metrics, "energyfetch_last_run_timestamp", nil, float64(now.Unix()))

	m.writeMetricHeader(&metrics, "energyfetch_api_requests_total", "counter", "Upstream API requests issued during the run")
	m.writeMetric(&metrics, "energyfetch_api_requests_total", nil, float64(m.metrics.TotalRequests))

	m.writeMetricHeader(&metrics, "energyfetch_api_request_failures_total", "counter", "Upstream API requests that failed during the run")
	m.writeMetric(&metrics, "energyfetch_api_request_failures_total", nil, float64(m.metrics.FailedRequests))

	if len(m.metrics.RequestDurations) > 0 {
		m.writeMetricHeader(&metrics, "energyfetch_api_request_duration_seconds", "gauge", "Duration of the last request per endpoint")
		endpoints := make([]string, 0, len(m.metrics.RequestDurations))
		for endpoint := range m.metrics.RequestDurations {
			endpoints = append(endpoints, endpoint)
		}
		sort.Strings(endpoints)
		for _, endpoint := range endpoints {
			durations := m.metrics.RequestDurations[endpoint]
			if len(durations) == 0 {
				continue
			}
			m.writeMetric(&metrics, "energyfetch_api_request_duration_seconds", map[string]string{
				"endpoint": endpoint,
			}, durations[len(durations)-1])
		}
	}

	if m.result == nil {
		return metrics.String()
	}

	reports := []struct {
		dataset string
		report  DatasetReport
		rows    int
	}{
		{"eu_production", m.result.EU, m.result.EUProduction.Len()},
		{"russia", m.result.RussiaRep, m.result.Russia.Len()},
	}

	m.writeMetricHeader(&metrics, "energyfetch_rows", "gauge", "Rows returned per dataset")
	for _, r := range reports {
		m.writeMetric(&metrics, "energyfetch_rows", map[string]string{"dataset": r.dataset}, float64(r.rows))
	}

	m.writeMetricHeader(&metrics, "energyfetch_data_source", "gauge", "Where each dataset came from (1 for the active source)")
	for _, r := range reports {
		for _, origin := range []DataOrigin{OriginAPI, OriginCache, OriginNone} {
			value := 0
			if r.report.Origin == origin {
				value = 1
			}
			m.writeMetric(&metrics, "energyfetch_data_source", map[string]string{
				"dataset": r.dataset,
				"source":  string(origin),
			}, float64(value))
		}
	}

	wroteHeader := false
	for _, r := range reports {
		if r.report.Origin != OriginCache || r.report.CacheModTime.IsZero() {
			continue
		}
		if !wroteHeader {
			m.writeMetricHeader(&metrics, "energyfetch_cache_age_seconds", "gauge", "Age of the cache file used, in seconds")
			wroteHeader = true
		}
		m.writeMetric(&metrics, "energyfetch_cache_age_seconds", map[string]string{
			"dataset": r.dataset,
		}, now.Sub(r.report.CacheModTime).Seconds())
	}

	return metrics.String()
}

// writeMetricHeader writes metric description and type
func (m *MetricsCollector) writeMetricHeader(sb *strings.Builder, name, metricType, description string) {
	sb.WriteString(fmt.Sprintf("# HELP %s %s\n", name, description))
	sb.WriteString(fmt.Sprintf("# TYPE %s %s\n", name, metricType))
}

// writeMetric writes a metric with optional labels, sorted by key
func (m *MetricsCollector) writeMetric(sb *strings.Builder, name string, labels map[string]string, value float64) {
	if len(labels) > 0 {
		keys := make([]string, 0, len(labels))
		for key := range labels {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		labelPairs := make([]string, 0, len(keys))
		for _, key := range keys {
			labelPairs = append(labelPairs, fmt.Sprintf(`%s="%s"`, key, escapeLabel(labels[key])))
		}
		sb.WriteString(fmt.Sprintf("%s{%s} %g\n", name, strings.Join(labelPairs, ","), value))
	} else {
		sb.WriteString(fmt.Sprintf("%s %g\n", name, value))
	}
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return strings.ReplaceAll(v, "\n", `\n`)
}
