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
	"sort"
	"strings"
	"time"
)

// EUDatasetFetcher downloads a full Eurostat dataset
type EUDatasetFetcher interface {
	GetDataset(ctx context.Context, code string) (*Dataset, error)
}

// RussiaProductionFetcher downloads Russian monthly production
type RussiaProductionFetcher interface {
	GetRussiaProduction(ctx context.Context) (*Dataset, error)
}

// DataOrigin records where a dataset came from
type DataOrigin string

const (
	OriginAPI   DataOrigin = "api"
	OriginCache DataOrigin = "cache"
	OriginNone  DataOrigin = "none"
)

// BalanceMatch selects how nrg_bal codes are compared with "PRD"
type BalanceMatch string

const (
	// BalanceMatchContains keeps any code containing PRD anywhere
	BalanceMatchContains BalanceMatch = "contains"
	// BalanceMatchPrefix keeps only codes starting with PRD
	BalanceMatchPrefix BalanceMatch = "prefix"
)

type LoadOptions struct {
	ForceUpdate      bool
	APIKeyConfigured bool
}

// DatasetReport describes the provenance of one loaded dataset
type DatasetReport struct {
	Origin       DataOrigin
	Rows         int
	CacheModTime time.Time // zero unless Origin is OriginCache
}

type LoadResult struct {
	EUProduction *Dataset
	Russia       *Dataset

	EU        DatasetReport // describes the unfiltered EU dataset
	RussiaRep DatasetReport
}

// Loader decides per source whether to fetch or use the cache and returns
// the filtered EU dataset alongside the Russia dataset.
type Loader struct {
	eu      EUDatasetFetcher
	russia  RussiaProductionFetcher
	cache   *CacheStore
	logger  *Logger
	match   BalanceMatch
	dataset string
}

func NewLoader(eu EUDatasetFetcher, russia RussiaProductionFetcher, cache *CacheStore, logger *Logger) *Loader {
	return &Loader{
		eu:      eu,
		russia:  russia,
		cache:   cache,
		logger:  logger.WithComponent("loader"),
		match:   BalanceMatchContains,
		dataset: EurostatOilDataset,
	}
}

func (l *Loader) SetBalanceMatch(match BalanceMatch) {
	l.match = match
}

// Load runs both flows once. Failures never escape: every branch degrades to
// the cache or to an empty dataset.
func (l *Loader) Load(ctx context.Context, opts LoadOptions) *LoadResult {
	result := &LoadResult{}

	euData, euReport := l.loadEU(ctx, opts.ForceUpdate)
	result.EU = euReport

	russiaData, russiaReport := l.loadRussia(ctx, opts)
	result.Russia = russiaData
	result.RussiaRep = russiaReport

	result.EUProduction = l.filterProduction(euData)
	return result
}

func (l *Loader) loadEU(ctx context.Context, forceUpdate bool) (*Dataset, DatasetReport) {
	log := l.logger.WithSource(SourceEU)

	if !forceUpdate && l.cache.Exists(SourceEU) {
		l.logger.UserMessage("Loading EU data from local cache...")
		return l.fromCache(SourceEU, log)
	}

	l.logger.UserMessage("Fetching EU data from Eurostat...")
	ds, err := l.eu.GetDataset(ctx, l.dataset)
	if err == nil {
		if err := l.cache.Save(SourceEU, ds); err != nil {
			log.Warn("Failed to write cache", "error", err)
		}
		return ds, DatasetReport{Origin: OriginAPI, Rows: ds.Len()}
	}

	log.LogAPIError(err, "/data/"+l.dataset)
	l.logger.UserMessage("Eurostat failed. Falling back to local cache.")
	if l.cache.Exists(SourceEU) {
		return l.fromCache(SourceEU, log)
	}
	log.LogCacheMiss(SourceEU, "no cache file")
	return NewDataset(), DatasetReport{Origin: OriginNone}
}

func (l *Loader) loadRussia(ctx context.Context, opts LoadOptions) (*Dataset, DatasetReport) {
	log := l.logger.WithSource(SourceRussia)

	attemptAPI := opts.ForceUpdate || !l.cache.Exists(SourceRussia)
	if attemptAPI && opts.APIKeyConfigured && l.russia != nil {
		l.logger.UserMessage("Attempting to refresh Russia data from EIA...")
		ds := l.fetchRussia(ctx, log)
		if !ds.Empty() {
			if err := l.cache.Save(SourceRussia, ds); err != nil {
				log.Warn("Failed to write cache", "error", err)
			}
			return ds, DatasetReport{Origin: OriginAPI, Rows: ds.Len()}
		}
	} else if attemptAPI {
		log.Debug("Skipping EIA request", "reason", "no API key configured")
	}

	if l.cache.Exists(SourceRussia) {
		l.logger.UserMessage("Using local Russia data backup.")
		return l.fromCache(SourceRussia, log)
	}
	log.LogCacheMiss(SourceRussia, "no cache file")
	return NewDataset(), DatasetReport{Origin: OriginNone}
}

// fetchRussia never fails: any error is logged and yields an empty dataset.
func (l *Loader) fetchRussia(ctx context.Context, log *Logger) *Dataset {
	ds, err := l.russia.GetRussiaProduction(ctx)
	if err != nil {
		if errors.Is(err, ErrEmptyPayload) {
			log.Warn("EIA API returned no data")
		} else {
			log.LogAPIError(err, EIAInternationalPath)
		}
		l.logger.UserMessage("EIA API unavailable (%v)", err)
		return NewDataset()
	}
	return ds
}

func (l *Loader) fromCache(source Source, log *Logger) (*Dataset, DatasetReport) {
	ds, err := l.cache.Load(source)
	if err != nil {
		log.Error("Failed to read cache", "path", l.cache.Path(source), "error", err)
		return NewDataset(), DatasetReport{Origin: OriginNone}
	}
	log.LogCacheHit(source, l.cache.Path(source), ds.Len())
	report := DatasetReport{Origin: OriginCache, Rows: ds.Len()}
	if mt, ok := l.cache.ModTime(source); ok {
		report.CacheModTime = mt
	}
	return ds, report
}

// filterProduction keeps rows whose nrg_bal code matches PRD. Missing codes
// never match. Without data or without the column the result is empty.
func (l *Loader) filterProduction(ds *Dataset) *Dataset {
	if ds.Empty() || !ds.HasColumn(ColumnBalance) {
		return NewDataset()
	}

	filtered := ds.Filter(func(r Record) bool {
		code, ok := r[ColumnBalance].Text()
		return ok && matchesBalance(code, l.match)
	})

	if l.match == BalanceMatchContains {
		if odd := substringOnlyCodes(filtered); len(odd) > 0 {
			l.logger.Warn("nrg_bal codes matched PRD only as a substring",
				"codes", strings.Join(odd, ","),
				"hint", "set balance_match: prefix to exclude them",
			)
		}
	}
	return filtered
}

func matchesBalance(code string, match BalanceMatch) bool {
	if match == BalanceMatchPrefix {
		return strings.HasPrefix(code, ProductionBalanceCode)
	}
	return strings.Contains(code, ProductionBalanceCode)
}

func substringOnlyCodes(ds *Dataset) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, r := range ds.Records {
		code, _ := r[ColumnBalance].Text()
		if strings.HasPrefix(code, ProductionBalanceCode) || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
