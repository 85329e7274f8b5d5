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
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/google/uuid"
)

// runOnce wires the connectors, cache and loader from cfg and performs a
// single load. It never fails; the result says where each dataset came from.
func runOnce(ctx context.Context, cfg *Config, logger *Logger, metrics *APIMetrics) *LoadResult {
	cache := NewCacheStore(cfg.DataDir)
	eu := NewEurostatClient(cfg.EurostatBaseURL, logger, metrics, cfg.Debug)

	var russia RussiaProductionFetcher
	if cfg.APIKeyConfigured() {
		russia = NewEIAClient(cfg.EIABaseURL, cfg.EIAAPIKey, logger, metrics, cfg.Debug)
	}

	loader := NewLoader(eu, russia, cache, logger)
	loader.SetBalanceMatch(BalanceMatch(cfg.BalanceMatch))

	return loader.Load(ctx, LoadOptions{
		ForceUpdate:      cfg.ForceUpdate,
		APIKeyConfigured: cfg.APIKeyConfigured(),
	})
}

func main() {
	var configPath, envFile, apiKey, dataDir, metricsFile, balanceMatch string
	var forceUpdate, debug, jsonLogs, showVersion bool

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&envFile, "env-file", ".env", "Path to a dotenv file with EIA_API_KEY (ignored if missing)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.StringVar(&apiKey, "key", "", "EIA API key (default $EIA_API_KEY)")
	flag.StringVar(&dataDir, "data-dir", "", "Directory for cache files (default $ENERGYFETCH_DATA_DIR or ./data)")
	flag.BoolVar(&forceUpdate, "force", false, "Fetch from the APIs even when cache files exist")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")
	flag.StringVar(&metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	flag.StringVar(&balanceMatch, "balance-match", "", "How nrg_bal is matched against PRD: contains or prefix")
	flag.Parse()

	if showVersion {
		fmt.Printf("energyfetch %s\n", GetVersion())
		fmt.Printf("User-Agent: %s\n", GetUserAgent())
		os.Exit(0)
	}

	if err := LoadEnvFile(envFile); err != nil {
		log.Fatalf("Error loading env file: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Error loading config file: %v", err)
	}
	config.ApplyDefaults()

	// Command line arguments override environment variables, which override the config file
	if apiKey == "" {
		apiKey = os.Getenv("EIA_API_KEY")
	}
	if apiKey != "" {
		config.EIAAPIKey = apiKey
	}
	if dataDir == "" {
		dataDir = os.Getenv("ENERGYFETCH_DATA_DIR")
	}
	if dataDir != "" {
		config.DataDir = dataDir
	}
	if forceUpdate {
		config.ForceUpdate = true
	}
	if debug {
		config.Debug = true
	}
	if jsonLogs {
		config.JSONLogs = true
	}
	if metricsFile != "" {
		config.MetricsFile = metricsFile
	}
	if balanceMatch != "" {
		config.BalanceMatch = balanceMatch
	}

	if err := config.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	var logger *Logger
	if config.JSONLogs {
		logger = NewJSONLogger(config.Debug)
	} else {
		logger = NewLogger(config.Debug)
	}
	logger = logger.WithRunID(uuid.NewString())

	logger.Debug("Starting energyfetch",
		"version", GetVersion(),
		"data_dir", config.DataDir,
		"force_update", config.ForceUpdate,
		"api_key_configured", config.APIKeyConfigured(),
		"balance_match", config.BalanceMatch,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	metrics := NewAPIMetrics()
	result := runOnce(ctx, config, logger, metrics)

	PrintSummary(logger, result, stdoutIsTerminal())

	if config.MetricsFile != "" {
		collector := NewMetricsCollector(result, metrics)
		if err := collector.WriteFile(config.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics file", "path", config.MetricsFile, "error", err)
		}
	}
}
