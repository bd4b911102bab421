package csvimport

import (
	"encoding/csv"
	"errors"
	"strings"

	"whatsbot-gateway/internal/models"
	"whatsbot-gateway/internal/store"
	"whatsbot-gateway/pkg/logger"

	"go.uber.org/zap"
)

// ErrEmptyFile is returned when the input has no header row.
var ErrEmptyFile = errors.New("csv file is empty")

// PreviewRows is how many data rows Preview parses for display.
const PreviewRows = 10

// ColumnMap holds the index of each logical field in the source rows.
// OrderNumber is -1 when the sheet has no order number column.
type ColumnMap struct {
	Product     int `json:"product"`
	Name        int `json:"name"`
	Phone       int `json:"phone"`
	Address     int `json:"address"`
	Status      int `json:"status"`
	OrderNumber int `json:"order_number"`
}

// DetectColumns maps source headers onto logical fields by case-insensitive
// substring matching, keeping positional defaults for anything unmatched.
func DetectColumns(headers []string) ColumnMap {
	m := ColumnMap{Product: 0, Name: 1, Phone: 2, Address: 3, Status: 4, OrderNumber: -1}
	for i, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch {
		case strings.Contains(lower, "item") || strings.Contains(lower, "product") || strings.Contains(lower, "lineitem"):
			m.Product = i
		case strings.Contains(lower, "name"):
			m.Name = i
		case strings.Contains(lower, "phone") || strings.Contains(lower, "mobile") || strings.Contains(lower, "contact"):
			m.Phone = i
		case strings.Contains(lower, "address"):
			m.Address = i
		case strings.Contains(lower, "status"):
			m.Status = i
		case strings.Contains(lower, "order"):
			m.OrderNumber = i
		}
	}
	return m
}

// NormalizePhone strips every non-digit character.
func NormalizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parse reads comma-delimited text with optional double-quoted fields,
// returning the header row and up to maxRows data rows (all when maxRows<=0).
// Blank lines are skipped and ragged rows are tolerated.
func parse(text string, maxRows int) ([]string, [][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyFile
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	var rows [][]string
	for _, rec := range records[1:] {
		blank := true
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
			if rec[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		rows = append(rows, rec)
		if maxRows > 0 && len(rows) >= maxRows {
			break
		}
	}
	return headers, rows, nil
}

// Preview parses the header plus a bounded prefix of data rows for display
// before an import is committed.
func Preview(text string) ([]string, [][]string, ColumnMap, error) {
	headers, rows, err := parse(text, PreviewRows)
	if err != nil {
		return nil, nil, ColumnMap{}, err
	}
	return headers, rows, DetectColumns(headers), nil
}

// field safely reads column idx from a ragged row.
func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Result summarizes a committed import.
type Result struct {
	Imported          int `json:"imported"`
	SkippedInvalid    int `json:"skipped_invalid"`
	SkippedDuplicates int `json:"skipped_duplicates"`
}

// Importer turns CSV text into orders in the store.
type Importer struct {
	store *store.Store
}

func NewImporter(s *store.Store) *Importer {
	return &Importer{store: s}
}

// Import parses the full CSV text and adds every valid, non-duplicate row as
// an order. Rows missing a name or a normalized phone are dropped; rows whose
// phone matches an existing order (or an earlier row of the same file) are
// dropped, first seen wins.
func (imp *Importer) Import(text string) (Result, error) {
	headers, rows, err := parse(text, 0)
	if err != nil {
		return Result{}, err
	}
	cols := DetectColumns(headers)

	var res Result
	seen := make(map[string]bool)
	for i, row := range rows {
		name := field(row, cols.Name)
		phone := NormalizePhone(field(row, cols.Phone))
		if name == "" || phone == "" {
			res.SkippedInvalid++
			continue
		}

		if seen[phone] {
			res.SkippedDuplicates++
			continue
		}
		exists, err := imp.store.PhoneExists(phone)
		if err != nil {
			return res, err
		}
		if exists {
			res.SkippedDuplicates++
			continue
		}
		seen[phone] = true

		product := field(row, cols.Product)
		if product == "" {
			product = "Unknown Product"
		}

		order := models.Order{
			OrderNumber: store.AssignOrderNumber(field(row, cols.OrderNumber), i),
			Product:     product,
			Name:        name,
			Phone:       phone,
			Address:     field(row, cols.Address),
			Status:      models.NormalizeStatus(field(row, cols.Status)),
		}
		if _, err := imp.store.Add(order); err != nil {
			return res, err
		}
		res.Imported++
	}

	logger.Info("CSV import finished",
		zap.Int("imported", res.Imported),
		zap.Int("skipped_invalid", res.SkippedInvalid),
		zap.Int("skipped_duplicates", res.SkippedDuplicates))
	return res, nil
}
