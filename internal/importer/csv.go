package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonAmountChars = regexp.MustCompile(`[^0-9.\-]`)

// parseAmount strips currency symbols and grouping before parsing, since
// exported spreadsheets arrive with values like "$1,250.00".
func parseAmount(raw string) float64 {
	cleaned := nonAmountChars.ReplaceAllString(raw, "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// parseCsvDate accepts the date spellings seen in real exports: ISO dates,
// Australian D/M/YYYY, and a bare year which is treated as end of year.
func parseCsvDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range []string{"2006-01-02", "2/1/2006", "02/01/2006"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}
	if len(raw) == 4 {
		if year, err := strconv.Atoi(raw); err == nil {
			endOfYear := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
			return &endOfYear
		}
	}
	return nil
}

// headerMap resolves free-form member CSV headers to field names, falling
// back to the conventional column order when headers are unrecognisable.
func headerMap(header []string) map[string]int {
	m := make(map[string]int)
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))
		switch {
		case strings.Contains(col, "first"):
			m["first_name"] = i
		case strings.Contains(col, "last"):
			m["last_name"] = i
		case strings.Contains(col, "fellowship"):
			m["fellowship"] = i
		case strings.Contains(col, "concession"):
			m["concession"] = i
		case strings.Contains(col, "fee") && strings.Contains(col, "status"):
			m["site_fee_status"] = i
		case strings.Contains(col, "paid") && strings.Contains(col, "until"),
			strings.Contains(col, "expiry"):
			m["site_fee_paid_until"] = i
		case strings.Contains(col, "site") && strings.Contains(col, "type"):
			m["site_type"] = i
		case strings.Contains(col, "site") && (strings.Contains(col, "number") || strings.Contains(col, "#")),
			col == "camp site":
			m["site_number"] = i
		}
	}
	if _, ok := m["first_name"]; !ok {
		m["first_name"] = 0
	}
	if _, ok := m["last_name"]; !ok {
		m["last_name"] = 1
	}
	if _, ok := m["fellowship"]; !ok {
		m["fellowship"] = 2
	}
	if _, ok := m["concession"]; !ok {
		m["concession"] = 3
	}
	if _, ok := m["site_fee_status"]; !ok {
		m["site_fee_status"] = 4
	}
	return m
}

// parseCount reads a whole number cell, treating anything unparsable as
// zero.
func parseCount(raw string) int {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

func cell(row []string, index int, ok bool) string {
	if !ok || index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
