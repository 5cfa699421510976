package scrape

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const dateOutFmt = "Jan 02, 2006"

var (
	monthFirstRe = regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})`)
	dayFirstRe   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?,?\s+(\d{4})`)
)

// RecoverDate replaces a relative date ("3 hours ago") with an absolute one
// recovered from fallback text elsewhere on the page. Recovery tries a full
// parse of the fallback, then a month-first pattern, then a day-first
// pattern; when all fail the relative string is kept as-is. Recovered dates
// come back as "Jan 02, 2006".
func RecoverDate(raw, fallback string) string {
	if !strings.Contains(strings.ToLower(raw), "ago") {
		return raw
	}
	if fallback == "" {
		return raw
	}

	if t, err := dateparse.ParseAny(fallback); err == nil {
		return t.Format(dateOutFmt)
	}
	if m := monthFirstRe.FindStringSubmatch(fallback); m != nil {
		if t, err := parseDayMonthYear(m[2], m[1], m[3]); err == nil {
			return t.Format(dateOutFmt)
		}
	}
	if m := dayFirstRe.FindStringSubmatch(fallback); m != nil {
		if t, err := parseDayMonthYear(m[1], m[2], m[3]); err == nil {
			return t.Format(dateOutFmt)
		}
	}
	return raw
}

func parseDayMonthYear(day, month, year string) (time.Time, error) {
	return time.Parse("Jan 2 2006", fmt.Sprintf("%s %s %s", normalizeMonth(month), day, year))
}

func normalizeMonth(m string) string {
	m = strings.ToLower(m[:3])
	return strings.ToUpper(m[:1]) + m[1:]
}
