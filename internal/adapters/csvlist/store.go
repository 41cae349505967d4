// Package csvlist implements the curated list on a local CSV file, using
// the same nine-column schema as the Google Sheets store. It is the
// zero-credential default: no API keys, no network, survives restarts.
package csvlist

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tablescout/tablescout/pkg/domain"
)

// header matches the sheet layout column for column, so a CSV export can be
// pasted into the spreadsheet and vice versa.
var header = []string{
	"Restaurant Name",
	"Booking Website",
	"Brief Description",
	"Yelp Review Average",
	"Recommendation Source",
	"Price Range",
	"Cuisine Type",
	"Priority Rank",
	"Date Added",
}

const (
	colName = iota
	colBooking
	colDescription
	colYelp
	colSources
	colPrice
	colCuisine
	colRank
	colAdded

	columnCount = 9
)

const dateLayout = "2006-01-02"

// Store implements ports.ListStore and ports.ListEditor over one CSV file.
// Safe for concurrent use within a process; cross-process callers need
// external coordination.
type Store struct {
	path string
	mu   sync.Mutex
}

// New opens (or creates) the list at path. A missing file is created with
// the header row so the schema is visible even before the first append.
func New(path string) (*Store, error) {
	s := &Store{path: path}

	if _, err := os.Stat(path); err == nil {
		return s, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat list file: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create list directory: %w", err)
		}
	}
	if err := s.writeAll(nil); err != nil {
		return nil, err
	}
	return s, nil
}

// FetchAll reads every row into a ListEntry, in file order.
func (s *Store) FetchAll(ctx context.Context) ([]domain.ListEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ListEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}
	return entries, nil
}

// Append writes one entry as a new row. Appends are individual, matching
// the list store contract: no batching, no transaction across rows.
func (s *Store) Append(ctx context.Context, entry domain.ListEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open list file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(entryToRow(entry)); err != nil {
		return fmt.Errorf("failed to write list row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush list row: %w", err)
	}
	return f.Sync()
}

// Remove deletes the first row whose normalized name matches. The rewrite
// works on raw records so columns the workflow does not produce (like the
// Yelp average) survive untouched. Removing an absent name is not an error.
func (s *Store) Remove(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return err
	}

	want := domain.NormalizeName(name)
	for i, row := range rows {
		if domain.NormalizeName(row[colName]) == want {
			rows = append(rows[:i], rows[i+1:]...)
			return s.writeAll(rows)
		}
	}
	return nil
}

// readRows returns the data rows, header skipped, each padded to the full
// column count. Callers hold the mutex.
func (s *Store) readRows() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open list file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows edited by hand may be short

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read list file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		for len(rec) < columnCount {
			rec = append(rec, "")
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// writeAll rewrites the whole file atomically: temp file in the same
// directory, then rename. Callers hold the mutex.
func (s *Store) writeAll(rows [][]string) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "list-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp list file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write list header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write list row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush list file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync list file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp list file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace list file: %w", err)
	}
	return nil
}

func entryToRow(entry domain.ListEntry) []string {
	row := make([]string, columnCount)
	row[colName] = entry.Name
	row[colBooking] = entry.BookingURL
	row[colDescription] = entry.Description
	row[colSources] = joinSources(entry.Scores)
	row[colPrice] = entry.Price.String()
	row[colCuisine] = entry.Cuisine
	if overall, ok := entry.OverallScore(); ok {
		row[colRank] = strconv.FormatFloat(overall, 'f', 1, 64)
	}
	if !entry.AddedAt.IsZero() {
		row[colAdded] = entry.AddedAt.UTC().Format(dateLayout)
	}
	return row
}

// rowToEntry rebuilds an entry from a row. The per-source score breakdown
// is not stored, so each named source carries the recorded overall rank;
// the mean, and therefore the rendered rank, is unchanged.
func rowToEntry(row []string) domain.ListEntry {
	entry := domain.ListEntry{
		Candidate: domain.Candidate{
			Name:        row[colName],
			BookingURL:  row[colBooking],
			Description: row[colDescription],
			Cuisine:     row[colCuisine],
			Price:       domain.ParsePriceTier(row[colPrice]),
		},
	}

	if rank, err := strconv.ParseFloat(strings.TrimSpace(row[colRank]), 64); err == nil {
		for _, src := range splitSources(row[colSources]) {
			entry.SetScore(src, rank)
		}
	}
	if t, err := time.Parse(dateLayout, strings.TrimSpace(row[colAdded])); err == nil {
		entry.AddedAt = t
	}
	return entry
}

func joinSources(scores map[domain.SourceID]float64) string {
	if len(scores) == 0 {
		return ""
	}
	names := make([]string, 0, len(scores))
	for src := range scores {
		names = append(names, string(src))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// splitSources parses the Recommendation Source column. Rows with a rank
// but no source attribute it to "list" so the score has a home.
func splitSources(raw string) []domain.SourceID {
	parts := strings.Split(raw, ",")
	out := make([]domain.SourceID, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, domain.SourceID(p))
		}
	}
	if len(out) == 0 {
		out = append(out, "list")
	}
	return out
}
