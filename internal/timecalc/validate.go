package timecalc

import "time"

// Validation error and warning codes surfaced to API callers.
const (
	CodeCheckoutBeforeCheckin  = "checkout-before-checkin"
	CodeIncompleteEntry        = "incomplete-entry"
	CodeInvalidBreakWindow     = "invalid-break-window"
	CodeShiftExceedsMax        = "shift-exceeds-max"
	CodeMissingBreakUnresolved = "missing-break-unresolved"
	CodeLongShiftWarning       = "long-shift-warning"
	CodeSubmissionNotOpen      = "submission-not-open"
)

// ValidateSequence checks the ordering invariants of an entry's timestamps:
// check-out after check-in, and a break window strictly inside the shift.
// A half-populated break (one bound missing) is reported as an invalid window.
func ValidateSequence(e Entry) []string {
	var errs []string

	if e.CheckOut != nil && !e.CheckOut.After(e.CheckIn) {
		errs = append(errs, CodeCheckoutBeforeCheckin)
	}

	hasStart := e.BreakStart != nil
	hasEnd := e.BreakEnd != nil
	switch {
	case hasStart != hasEnd:
		errs = append(errs, CodeInvalidBreakWindow)
	case hasStart && hasEnd:
		if !e.BreakStart.After(e.CheckIn) ||
			!e.BreakEnd.After(*e.BreakStart) ||
			(e.CheckOut != nil && e.BreakEnd.After(*e.CheckOut)) {
			errs = append(errs, CodeInvalidBreakWindow)
		}
	}
	return errs
}

// ValidateShiftLength checks computed hours against the hard ceiling and the
// soft warning threshold. Errors block the save; warnings are advisory only.
// Non-positive thresholds fall back to the package defaults.
func ValidateShiftLength(totalHours, maxShiftHours, warnHours float64) (errs, warnings []string) {
	if maxShiftHours <= 0 {
		maxShiftHours = DefaultMaxShiftHours
	}
	if warnHours <= 0 {
		warnHours = DefaultOvertimeWarningHours
	}
	if totalHours > maxShiftHours {
		errs = append(errs, CodeShiftExceedsMax)
	} else if totalHours > warnHours {
		warnings = append(warnings, CodeLongShiftWarning)
	}
	return errs, warnings
}

// RequiresBreakResolution reports whether the entry is a submission blocker:
// a shift longer than six hours with no break recorded. The caller must
// resolve it via "add_break" or "no_break" before the owning timecard can
// move out of draft.
func RequiresBreakResolution(e Entry, totalHours float64) bool {
	return totalHours > MissingBreakThresholdHours && e.BreakStart == nil && e.BreakEnd == nil
}

// SubmissionOpen reports whether a timecard may be submitted at the given
// time. When the timing policy is enforced, submission opens on the
// production start day.
func SubmissionOpen(now, projectStart time.Time, enforce bool) bool {
	if !enforce {
		return true
	}
	startDay := time.Date(projectStart.Year(), projectStart.Month(), projectStart.Day(), 0, 0, 0, 0, projectStart.Location())
	return !now.Before(startDay)
}
