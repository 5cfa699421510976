package search

import (
	"fmt"
	"time"
)

// Window is one half-month date range, endpoints inclusive, formatted
// MM/DD/YYYY for the search API's custom date range parameter.
type Window struct {
	Start string
	End   string
}

// Period is a compact label for the window, used for temp-file names.
func (w Window) Period() string {
	return w.Start + "_" + w.End
}

const dateFmt = "01/02/2006"

// ParseMonthYear parses a "Jan 2006" or "January 2006" month marker.
func ParseMonthYear(s string) (time.Time, error) {
	for _, layout := range []string{"Jan 2006", "January 2006", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("search: cannot parse month %q", s)
}

// Windows splits the inclusive month range [start, end] into half-month
// windows: the 1st through the 15th, then the 16th through the last day of
// the month.
func Windows(start, end time.Time) []Window {
	var out []Window
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(last) {
		mid := cur.AddDate(0, 0, 14)
		eom := cur.AddDate(0, 1, -1)
		out = append(out,
			Window{Start: cur.Format(dateFmt), End: mid.Format(dateFmt)},
			Window{Start: mid.AddDate(0, 0, 1).Format(dateFmt), End: eom.Format(dateFmt)},
		)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}
