package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// SplitList splits a comma separated setting like "csv, json" into trimmed,
// lower-cased, non-empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseNullableFloat parses a float cell. An empty cell is nil; NaN and
// infinities are rejected.
func ParseNullableFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite value %q", s)
	}
	return &f, nil
}

// FormatValue renders a nullable number the way the report tables print it.
func FormatValue(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Slugify turns a chart title into a file name stem:
// "Death Rate by Year and Race" -> "death_rate_by_year_and_race"
func Slugify(title string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "_")
	if slug == "" {
		return "chart"
	}
	return slug
}
