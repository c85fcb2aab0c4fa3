// Package parse converts raw request and display strings into the forms the core expects.
package parse

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// defaultFilename replaces uploads that arrive without a usable name.
const defaultFilename = "photo"

// Filename returns the base name of raw with every character outside [A-Za-z0-9_.-] replaced by "_".
func Filename(raw string) string {
	name := strings.TrimSpace(raw)
	// Browsers on Windows may send the full client path.
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)
	if name == "." || name == "/" || name == "" {
		return defaultFilename
	}
	return unsafeNameRe.ReplaceAllString(name, "_")
}

// Humanize turns an enum-like value such as "PREVENTIVE_CHECK" into "Preventive check".
func Humanize(raw string) string {
	s := strings.TrimSpace(strings.ToLower(strings.ReplaceAll(raw, "_", " ")))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ID parses a positive decimal identifier.
func ID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid id", goerr.V("raw", raw))
	}
	if id <= 0 {
		return 0, goerr.New("id must be positive", goerr.V("raw", raw))
	}
	return id, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02",
}

// Time parses an RFC 3339 timestamp, a datetime-local value or a plain date. Values without a zone are read as UTC.
func Time(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, goerr.New("invalid time", goerr.V("raw", raw))
}

// OptionalTime is Time for values that may be absent. A nil or blank input yields nil.
func OptionalTime(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := Time(*raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
