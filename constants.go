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
	"time"

	"golang.org/x/time/rate"
)

// Upstream endpoints
const (
	// DefaultEurostatBaseURL - Eurostat SDMX 2.1 dissemination API
	DefaultEurostatBaseURL = "https://ec.europa.eu/eurostat/api/dissemination/sdmx/2.1"

	// DefaultEIABaseURL - US Energy Information Administration API root
	DefaultEIABaseURL = "https://api.eia.gov"

	// EIAInternationalPath - EIA v2 international energy data route
	EIAInternationalPath = "/v2/international/data/"
)

// Eurostat dataset settings
const (
	// EurostatOilDataset - Supply, transformation and consumption of oil, monthly
	EurostatOilDataset = "nrg_cb_oil"

	// EurostatTimeDimension - Trailing header token naming the time axis in TSV downloads
	EurostatTimeDimension = `geo\TIME_PERIOD`

	// EurostatMissingMarker - Observation placeholder for "not available"
	EurostatMissingMarker = ":"
)

// EIA query settings for Russian crude production
const (
	EIAFrequency     = "monthly"
	EIADataField     = "value"
	EIACountryRegion = "RUS"
	EIAProductID     = "57"
	EIAUnit          = "TBPD"
	EIAStartPeriod   = "2022-01"
	EIASortColumn    = "period"
	EIASortDirection = "desc"
)

// Russia dataset columns
const (
	ColumnMonth          = "Month"
	ColumnProductionTBPD = "Production_TBPD"
	ColumnProductionKT   = "Production_K_Tonnes"

	// ColumnBalance - Eurostat energy balance code column
	ColumnBalance = "nrg_bal"

	// ProductionBalanceCode - Marker identifying production balance rows
	ProductionBalanceCode = "PRD"
)

// TBPDPerKTonne - Conversion factor from thousand barrels per day to thousand tonnes
const TBPDPerKTonne = 7.33

// HTTP client settings
const (
	// EIAClientTimeout - Maximum time for the EIA request
	EIAClientTimeout = 10 * time.Second

	// EurostatClientTimeout - Zero means no client timeout; only the context bounds the call
	EurostatClientTimeout = 0

	// ConnectorBurst - Requests allowed back to back before the limiter kicks in
	ConnectorBurst = 1

	// MaxLoggedBodyBytes - Truncate logged request/response bodies beyond this
	MaxLoggedBodyBytes = 500
)

// ConnectorRateLimit - Minimum spacing between requests to the same upstream
var ConnectorRateLimit = rate.Every(1 * time.Second)

// Cache file settings
const (
	// DefaultDataDir - Directory holding cache files, relative to the working directory
	DefaultDataDir = "data"

	// EUCacheFileName - Cached Eurostat dataset
	EUCacheFileName = "eu_energy_sample.csv"

	// RussiaCacheFileName - Cached EIA Russian production dataset
	RussiaCacheFileName = "russia_energy_sample.csv"
)

// Output settings
const (
	// SummaryRows - Number of Russia rows shown in the final summary
	SummaryRows = 5

	// CriticalNoRussiaData - Printed when neither the API nor the cache produced Russia data
	CriticalNoRussiaData = "CRITICAL: No Russian data available (API failed and no local file found)."
)
