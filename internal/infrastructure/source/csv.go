package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/reportdash/backend/internal/domain"
)

var (
	ErrMissingColumns = errors.New("source: export is missing date or location column")
	ErrInvalidCount   = errors.New("source: invalid alert count")
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

// ParseAlertCSV reads the historical alert export. Header names are matched
// case-insensitively; count columns that are absent read as zero and dates
// that cannot be parsed are kept as unknown.
func ParseAlertCSV(r io.Reader) ([]domain.AlertSnapshot, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []domain.AlertSnapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := columns[key]; !dup {
			columns[key] = i
		}
	}

	dateIdx, hasDate := columns["date"]
	locationIdx, hasLocation := columns["location"]
	if !hasDate || !hasLocation {
		return nil, fmt.Errorf("%w: have %v", ErrMissingColumns, header)
	}

	field := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	rows := make([]domain.AlertSnapshot, 0)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		location := ""
		if locationIdx < len(record) {
			location = strings.TrimSpace(record[locationIdx])
		}
		if location == "" {
			continue
		}

		row := domain.AlertSnapshot{
			Location: location,
			Customer: field(record, "customer"),
		}
		if dateIdx < len(record) {
			row.Date = parseDate(strings.TrimSpace(record[dateIdx]))
		}

		counts := []struct {
			name string
			dst  *int
		}{
			{"critical", &row.Critical},
			{"immediate", &row.Immediate},
			{"warning", &row.Warning},
			{"total", &row.Total},
		}
		for _, c := range counts {
			n, err := parseCount(field(record, c.name))
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, c.name, err)
			}
			*c.dst = n
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func parseCount(s string) (int, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, s)
	}
	return int(f), nil
}
