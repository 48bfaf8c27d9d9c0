package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	ISODateFormat = "2006-01-02"
	TimeFormat    = "15:04:05"
)

// Vendor files disagree on date formats; these are the layouts seen across
// the supported brokerages.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"01/02/06",
	"20060102",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"15:04:05.000",
}

// NormalizeDate parses a vendor date string and returns it as an ISO calendar
// date. An empty input is returned as-is.
func NormalizeDate(dateStr string) (string, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return "", nil
	}
	// Already ISO with a possible trailing time part.
	if len(dateStr) >= 10 {
		if t, err := time.Parse(ISODateFormat, dateStr[:10]); err == nil {
			return t.Format(ISODateFormat), nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t.Format(ISODateFormat), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", dateStr)
}

// NormalizeTime parses a vendor time string into "15:04:05". Empty input maps
// to midnight, which is what exports without a time column imply.
func NormalizeTime(timeStr string) (string, error) {
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		return "00:00:00", nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, timeStr); err == nil {
			return t.Format(TimeFormat), nil
		}
	}
	return "", fmt.Errorf("unrecognized time %q", timeStr)
}

// MonthOf extracts the "2006-01" calendar month from an ISO date.
func MonthOf(isoDate string) string {
	if len(isoDate) < 7 {
		return isoDate
	}
	return isoDate[:7]
}
