// Package ledger records daily attendance. Per employee and calendar day an
// entry moves through exactly three states: no entry, checked in, checked
// out. The first scan of a day creates the entry, the second sets the
// check-out time, and every later scan is an informational no-op.
package ledger

import (
	"errors"
	"time"
)

// ErrUnknownBadge is returned when a scanned token does not resolve to an
// employee of the scanning school. The same error covers tokens that do not
// exist at all and tokens belonging to another school, so a scan can never
// confirm an employee's existence elsewhere.
var ErrUnknownBadge = errors.New("badge not recognized")

// Outcome is the caller-visible result of a scan.
type Outcome string

const (
	OutcomeCheckedIn         Outcome = "checked_in"
	OutcomeCheckedOut        Outcome = "checked_out"
	OutcomeAlreadyCheckedOut Outcome = "already_checked_out"
)

// Entry is the per-employee-per-day attendance record. CheckOutAt is nil
// until the second scan and is never modified once set.
type Entry struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employee_id"`
	Day        time.Time  `json:"day"`
	CheckInAt  time.Time  `json:"check_in_at"`
	CheckOutAt *time.Time `json:"check_out_at,omitempty"`
}

// Status derives the reporting status from the entry's timestamps.
func (e Entry) Status() string {
	if e.CheckOutAt != nil {
		return "CheckedOut"
	}
	return "Present"
}

// DayOf truncates a timestamp to its calendar date. The date is taken in
// the timestamp's own location; callers sample time.Now() in server local
// time, which matches how the ledger has always drawn the day boundary.
// This is the only truncation point, so switching to per-school zones later
// only touches this function's callers.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
