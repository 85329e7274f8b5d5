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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Source identifies one upstream dataset and its cache file
type Source string

const (
	SourceEU     Source = "eu"
	SourceRussia Source = "russia"
)

var cacheFileNames = map[Source]string{
	SourceEU:     EUCacheFileName,
	SourceRussia: RussiaCacheFileName,
}

// CacheStore keeps one CSV snapshot per source under a data directory.
// Snapshots are replaced wholesale, never merged.
type CacheStore struct {
	dir string
}

func NewCacheStore(dir string) *CacheStore {
	return &CacheStore{dir: dir}
}

// Path returns the cache file location for a source
func (s *CacheStore) Path(source Source) string {
	name, ok := cacheFileNames[source]
	if !ok {
		name = fmt.Sprintf("%s_energy_sample.csv", source)
	}
	return filepath.Join(s.dir, name)
}

func (s *CacheStore) Exists(source Source) bool {
	info, err := os.Stat(s.Path(source))
	return err == nil && !info.IsDir()
}

// ModTime reports when the snapshot was last written
func (s *CacheStore) ModTime(source Source) (time.Time, bool) {
	info, err := os.Stat(s.Path(source))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// Load reads the snapshot for a source. A missing file yields ErrCacheMiss.
func (s *CacheStore) Load(source Source) (*Dataset, error) {
	f, err := os.Open(s.Path(source))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &CacheError{Source: source, Operation: "read", Err: ErrCacheMiss}
		}
		return nil, &CacheError{Source: source, Operation: "read", Err: err}
	}
	defer f.Close()

	ds, err := readCSV(f)
	if err != nil {
		return nil, &CacheError{Source: source, Operation: "decode", Err: err}
	}
	return ds, nil
}

// Save replaces the snapshot for a source. The data is written to a temp
// file in the same directory and renamed into place so readers never see a
// partial snapshot.
func (s *CacheStore) Save(source Source, ds *Dataset) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return &CacheError{Source: source, Operation: "write", Err: fmt.Errorf("failed to create data directory: %w", err)}
	}

	tmp, err := os.CreateTemp(s.dir, "."+string(source)+"-*.csv.tmp")
	if err != nil {
		return &CacheError{Source: source, Operation: "write", Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if err := writeCSV(tmp, ds); err != nil {
		tmp.Close()
		return &CacheError{Source: source, Operation: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &CacheError{Source: source, Operation: "write", Err: err}
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return &CacheError{Source: source, Operation: "write", Err: err}
	}
	if err := os.Rename(tmpPath, s.Path(source)); err != nil {
		return &CacheError{Source: source, Operation: "write", Err: err}
	}
	return nil
}

func writeCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(ds.Rows()); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

func readCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return NewDataset(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	ds := NewDataset(header...)
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", ds.Len()+1, err)
		}
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(fields) {
				rec[col] = ParseValue(fields[i])
			} else {
				rec[col] = Missing
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}
