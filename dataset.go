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
	"math"
	"strconv"
	"strings"
)

type valueKind int

const (
	kindMissing valueKind = iota
	kindString
	kindNumber
)

// Value is a single cell of a Dataset: a string, a number, or missing.
// The zero Value is missing.
type Value struct {
	kind valueKind
	str  string
	num  float64
}

// Missing is the value used for absent cells
var Missing = Value{}

func StringValue(s string) Value {
	return Value{kind: kindString, str: s}
}

// NumberValue wraps f. NaN is treated as missing, matching how the cache
// files encode absent observations.
func NumberValue(f float64) Value {
	if math.IsNaN(f) {
		return Missing
	}
	return Value{kind: kindNumber, num: f}
}

// ParseValue infers the type of a raw text field: empty is missing, anything
// that parses as a float is a number, everything else stays a string.
func ParseValue(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Missing
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return NumberValue(f)
	}
	return StringValue(raw)
}

func (v Value) IsMissing() bool { return v.kind == kindMissing }
func (v Value) IsNumber() bool  { return v.kind == kindNumber }

// Float returns the numeric value and whether the cell holds a number
func (v Value) Float() (float64, bool) {
	if v.kind != kindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the string content and whether the cell holds a string
func (v Value) Text() (string, bool) {
	if v.kind != kindString {
		return "", false
	}
	return v.str, true
}

// String formats the value the way it is written to a cache file.
func (v Value) String() string {
	switch v.kind {
	case kindString:
		return v.str
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Record maps column names to cell values. Absent keys read as Missing.
type Record map[string]Value

// Dataset is an ordered table of records with a stable column order.
type Dataset struct {
	Columns []string
	Records []Record
}

// NewDataset returns an empty dataset with the given header
func NewDataset(columns ...string) *Dataset {
	return &Dataset{Columns: append([]string(nil), columns...)}
}

// Len returns the number of records; a nil dataset has none.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Append adds a record. Columns not yet in the header are appended to it.
func (d *Dataset) Append(r Record) {
	for name := range r {
		if !d.HasColumn(name) {
			d.Columns = append(d.Columns, name)
		}
	}
	d.Records = append(d.Records, r)
}

// Filter returns a new dataset with the same header holding only the
// records for which keep returns true.
func (d *Dataset) Filter(keep func(Record) bool) *Dataset {
	out := NewDataset()
	if d == nil {
		return out
	}
	out.Columns = append(out.Columns, d.Columns...)
	for _, r := range d.Records {
		if keep(r) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// Head returns the first n records as a new dataset.
func (d *Dataset) Head(n int) *Dataset {
	out := NewDataset()
	if d == nil {
		return out
	}
	out.Columns = append(out.Columns, d.Columns...)
	if n > len(d.Records) {
		n = len(d.Records)
	}
	out.Records = append(out.Records, d.Records[:n]...)
	return out
}

// Rows renders every record as strings in column order.
func (d *Dataset) Rows() [][]string {
	if d == nil {
		return nil
	}
	rows := make([][]string, 0, len(d.Records))
	for _, r := range d.Records {
		row := make([]string, len(d.Columns))
		for i, c := range d.Columns {
			row[i] = r[c].String()
		}
		rows = append(rows, row)
	}
	return rows
}
