// Package sheets implements the curated list on a Google spreadsheet. Rows
// use the same nine-column layout as the local CSV store, so a sheet and a
// CSV export stay copy-paste compatible in both directions.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/tablescout/tablescout/internal/logging"
	"github.com/tablescout/tablescout/pkg/domain"
	"github.com/tablescout/tablescout/pkg/ports"
)

// DefaultSheetName is the tab the list lives on unless configured otherwise.
const DefaultSheetName = "Date Night Restaurant List"

// header is row 1 of the sheet, written once by EnsureHeader.
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
	lastColumn  = "I"
)

const dateLayout = "2006-01-02"

// Store implements ports.ListStore and ports.ListEditor over one sheet tab.
// Rows the workflow does not produce, like the Yelp average, pass through
// reads untouched and are left blank on writes.
type Store struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheetName     string

	httpClient *http.Client
	endpoint   string

	logger *slog.Logger
	now    func() time.Time
}

var (
	_ ports.ListStore  = (*Store)(nil)
	_ ports.ListEditor = (*Store)(nil)
)

// Option configures the store.
type Option func(*Store)

// WithSheetName selects the tab inside the spreadsheet.
func WithSheetName(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.sheetName = name
		}
	}
}

// WithHTTPClient supplies the authenticated HTTP client, typically from
// OAuthClient. Without it the Sheets service falls back to application
// default credentials.
func WithHTTPClient(h *http.Client) Option {
	return func(s *Store) { s.httpClient = h }
}

// WithEndpoint points the store at a different Sheets API endpoint.
func WithEndpoint(u string) Option {
	return func(s *Store) { s.endpoint = u }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the timestamp source for appended rows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New connects to the spreadsheet. The context governs service construction
// only; each operation takes its own.
func New(ctx context.Context, spreadsheetID string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, fmt.Errorf("sheets: %w: missing spreadsheet ID", domain.ErrCollaboratorUnavailable)
	}

	s := &Store{
		spreadsheetID: spreadsheetID,
		sheetName:     DefaultSheetName,
		logger:        logging.NewNop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	var clientOpts []option.ClientOption
	if s.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(s.httpClient))
	}
	if s.endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(s.endpoint))
	}

	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: %w: %v", domain.ErrCollaboratorUnavailable, err)
	}
	s.svc = svc
	return s, nil
}

// FetchAll reads every data row, in sheet order. Cleared rows, which the
// Sheets API leaves behind as blanks after a removal, are skipped.
func (s *Store) FetchAll(ctx context.Context) ([]domain.ListEntry, error) {
	readRange := fmt.Sprintf("%s!A2:%s", s.sheetName, lastColumn)

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, s.wrap("read rows", err)
	}

	entries := make([]domain.ListEntry, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := coerceRow(raw)
		if strings.TrimSpace(row[colName]) == "" {
			continue
		}
		entries = append(entries, rowToEntry(row))
	}

	s.logger.Debug("sheet read", "sheet", s.sheetName, "entries", len(entries))
	return entries, nil
}

// Append adds one entry as a new row under the existing data. A zero AddedAt
// is stamped with the current date, so rows written outside the workflow
// still carry one.
func (s *Store) Append(ctx context.Context, entry domain.ListEntry) error {
	if entry.AddedAt.IsZero() {
		entry.AddedAt = s.now()
	}

	appendRange := fmt.Sprintf("%s!A:%s", s.sheetName, lastColumn)
	body := &gsheets.ValueRange{Values: [][]interface{}{entryToRow(entry)}}

	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, appendRange, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return s.wrap("append row", err)
	}

	s.logger.Debug("sheet append", "sheet", s.sheetName, "name", entry.Name)
	return nil
}

// Remove clears the first row whose normalized name matches. Clearing keeps
// row numbers stable for anyone mid-edit in the sheet UI; FetchAll skips the
// blanks. Removing an absent name is not an error.
func (s *Store) Remove(ctx context.Context, name string) error {
	readRange := fmt.Sprintf("%s!A2:%s", s.sheetName, lastColumn)

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return s.wrap("read rows", err)
	}

	want := domain.NormalizeName(name)
	for i, raw := range resp.Values {
		row := coerceRow(raw)
		if domain.NormalizeName(row[colName]) != want {
			continue
		}

		rowNum := i + 2 // data starts on row 2
		clearRange := fmt.Sprintf("%s!A%d:%s%d", s.sheetName, rowNum, lastColumn, rowNum)
		_, err := s.svc.Spreadsheets.Values.
			Clear(s.spreadsheetID, clearRange, &gsheets.ClearValuesRequest{}).
			Context(ctx).Do()
		if err != nil {
			return s.wrap("clear row", err)
		}

		s.logger.Debug("sheet row cleared", "sheet", s.sheetName, "name", name, "row", rowNum)
		return nil
	}
	return nil
}

// EnsureHeader writes the header row if row 1 does not already carry all
// nine columns. Safe to call repeatedly; existing headers are untouched.
func (s *Store) EnsureHeader(ctx context.Context) error {
	headerRange := fmt.Sprintf("%s!A1:%s1", s.sheetName, lastColumn)

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return s.wrap("read header", err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) == columnCount {
		return nil
	}

	row := make([]interface{}, columnCount)
	for i, name := range header {
		row[i] = name
	}
	body := &gsheets.ValueRange{Values: [][]interface{}{row}}

	_, err = s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, headerRange, body).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return s.wrap("write header", err)
	}

	s.logger.Info("sheet header written", "sheet", s.sheetName)
	return nil
}

// wrap maps a Sheets API failure onto the collaborator error taxonomy.
func (s *Store) wrap(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("sheets: %w: %s: unauthorized", domain.ErrCollaboratorUnavailable, op)
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("sheets: %w: %s: rate limited", domain.ErrCollaboratorUnavailable, op)
		}
	}
	return fmt.Errorf("sheets: %w: %s: %v", domain.ErrCollaboratorUnavailable, op, err)
}

// coerceRow flattens one API row into nine string cells. The API returns
// untyped cells; anything non-string is rendered the way the sheet shows it.
func coerceRow(raw []interface{}) []string {
	row := make([]string, columnCount)
	for i := 0; i < len(raw) && i < columnCount; i++ {
		switch v := raw[i].(type) {
		case nil:
		case string:
			row[i] = v
		default:
			row[i] = fmt.Sprint(v)
		}
	}
	return row
}

func entryToRow(entry domain.ListEntry) []interface{} {
	row := make([]interface{}, columnCount)
	for i := range row {
		row[i] = ""
	}
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

// rowToEntry rebuilds an entry from a row. The per-source breakdown is not
// stored, so each named source carries the recorded overall rank; the mean,
// and therefore the rendered rank, is unchanged.
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
