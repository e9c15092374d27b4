// Package calendar provides the business-day arithmetic used by the
// reminder scheduler. Weekends are Saturday and Sunday; there is no
// holiday calendar.
package calendar

import (
	"fmt"
	"time"
)

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AddBusinessDays advances t by n business days. The starting date is
// never counted; each iteration advances exactly one calendar day and
// counts it only if it is not a weekend. AddBusinessDays(t, 0) == t.
func AddBusinessDays(t time.Time, n int) time.Time {
	d := t
	for added := 0; added < n; {
		d = d.AddDate(0, 0, 1)
		if !IsWeekend(d) {
			added++
		}
	}
	return d
}

// DateKey formats t as a zero-padded "YYYY-MM-DD" local calendar date.
func DateKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), t.Month(), t.Day())
}
