package timeutil

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// serialEpoch is day zero of spreadsheet serial timestamps.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// layouts tried for string timestamps, most specific first. Layouts without
// a zone are taken as UTC.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeTimestamp converts a heterogeneous timestamp into canonical UTC
// ISO-8601 text. It never fails: if the input cannot be interpreted it is
// returned unchanged as text, with a logged warning. Canonical output is a
// fixed point of this function.
func NormalizeTimestamp(input any, logger *slog.Logger) string {
	switch v := input.(type) {
	case nil:
		return ""
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case string:
		return normalizeString(v, logger)
	case float64:
		return fromSerial(v)
	case float32:
		return fromSerial(float64(v))
	case int:
		return fromSerial(float64(v))
	case int64:
		return fromSerial(float64(v))
	case json.Number:
		return normalizeString(v.String(), logger)
	default:
		return normalizeString(fmt.Sprint(v), logger)
	}
}

func normalizeString(value string, logger *slog.Logger) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	for _, layout := range layouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts.UTC().Format(time.RFC3339)
		}
	}

	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return fromSerial(serial)
	}

	if logger != nil {
		logger.Warn("could not normalize timestamp, keeping original", "value", value)
	}
	return value
}

func fromSerial(days float64) string {
	ts := serialEpoch.Add(time.Duration(days * 24 * float64(time.Hour)))
	return ts.UTC().Format(time.RFC3339)
}
