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
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// EIAClient queries the EIA v2 international energy data route
type EIAClient struct {
	baseConnector
	apiKey string
}

type EIAObservation struct {
	Period string          `json:"period"`
	Value  json.RawMessage `json:"value"` // number, numeric string or null depending on the series
}

type EIAResponse struct {
	Response struct {
		Total json.RawMessage  `json:"total"`
		Data  []EIAObservation `json:"data"`
	} `json:"response"`
}

func NewEIAClient(baseURL, apiKey string, logger *Logger, metrics *APIMetrics, debug bool) *EIAClient {
	if baseURL == "" {
		baseURL = DefaultEIABaseURL
	}
	return &EIAClient{
		baseConnector: newBaseConnector("eia", baseURL, EIAClientTimeout, logger, metrics, debug),
		apiKey:        apiKey,
	}
}

func russiaProductionQuery(apiKey string) url.Values {
	q := url.Values{}
	q.Set("api_key", apiKey)
	q.Set("frequency", EIAFrequency)
	q.Set("data[0]", EIADataField)
	q.Set("facets[countryRegionId][]", EIACountryRegion)
	q.Set("facets[productId][]", EIAProductID)
	q.Set("facets[unit][]", EIAUnit)
	q.Set("start", EIAStartPeriod)
	q.Set("sort[0][column]", EIASortColumn)
	q.Set("sort[0][direction]", EIASortDirection)
	return q
}

// GetRussiaProduction returns monthly Russian crude production with columns
// Month, Production_TBPD and Production_K_Tonnes.
func (c *EIAClient) GetRussiaProduction(ctx context.Context) (*Dataset, error) {
	body, err := c.get(ctx, EIAInternationalPath, russiaProductionQuery(c.apiKey))
	if err != nil {
		return nil, err
	}

	var result EIAResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &DecodeError{Endpoint: EIAInternationalPath, Err: err}
	}
	if len(result.Response.Data) == 0 {
		return nil, ErrEmptyPayload
	}

	ds, err := russiaDatasetFromObservations(result.Response.Data)
	if err != nil {
		return nil, &DecodeError{Endpoint: EIAInternationalPath, Err: err}
	}
	return ds, nil
}

func russiaDatasetFromObservations(obs []EIAObservation) (*Dataset, error) {
	ds := NewDataset(ColumnMonth, ColumnProductionTBPD, ColumnProductionKT)
	for i, o := range obs {
		tbpd, err := numericValue(o.Value)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i, o.Period, err)
		}

		kt := Missing
		if f, ok := tbpd.Float(); ok {
			kt = NumberValue(f / TBPDPerKTonne)
		}

		month := Missing
		if o.Period != "" {
			month = StringValue(o.Period)
		}

		ds.Records = append(ds.Records, Record{
			ColumnMonth:          month,
			ColumnProductionTBPD: tbpd,
			ColumnProductionKT:   kt,
		})
	}
	return ds, nil
}

// numericValue coerces a JSON scalar to a number. null and empty strings
// become missing; anything else non-numeric is an error.
func numericValue(raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Missing, nil
	}

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Missing, err
		}
		text = strings.TrimSpace(s)
		if text == "" {
			return Missing, nil
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Missing, fmt.Errorf("value %s is not numeric", raw)
	}
	return NumberValue(f), nil
}
