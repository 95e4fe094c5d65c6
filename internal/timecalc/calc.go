package timecalc

import (
	"math"
	"time"
)

// Time types supported by a rate rule.
const (
	TimeTypeHourly = "hourly"
	TimeTypeDaily  = "daily"
)

// Default thresholds, used when the configuration row carries no override.
const (
	DefaultBreakGraceMinutes    = 5
	DefaultMaxShiftHours        = 20.0
	DefaultOvertimeWarningHours = 12.0
	// MissingBreakThresholdHours is the shift length above which a break
	// must be recorded (or explicitly waived) before submission.
	MissingBreakThresholdHours = 6.0
	// DefaultManualEditHoursDelta is the recalculation delta (in hours)
	// above which a stored entry is flagged as manually edited. 0.25h == 15 min.
	DefaultManualEditHoursDelta = 0.25
)

// Entry is one day's raw clock data. CheckOut and the break fields may be
// nil for an in-progress shift.
type Entry struct {
	CheckIn    time.Time  `json:"check_in"`
	CheckOut   *time.Time `json:"check_out,omitempty"`
	BreakStart *time.Time `json:"break_start,omitempty"`
	BreakEnd   *time.Time `json:"break_end,omitempty"`
}

// Rule is the immutable rate configuration an entry is calculated against.
// It is resolved per request by the persistence layer (project override or
// global defaults) and passed in explicitly; Calculate never reads ambient state.
type Rule struct {
	Rate                   float64 `json:"rate"`
	TimeType               string  `json:"time_type"`
	OvertimeThresholdHours float64 `json:"overtime_threshold_hours"`
	OvertimeMultiplier     float64 `json:"overtime_multiplier"`
	DefaultBreakMinutes    int     `json:"default_break_minutes"`
	BreakGraceMinutes      int     `json:"break_grace_minutes"`
}

// Result is the derived output of a calculation. It is never stored on its
// own; the service layer copies the fields onto the time entry row.
type Result struct {
	TotalHours           float64  `json:"total_hours"`
	BreakDurationMinutes float64  `json:"break_duration_minutes"`
	TotalPay             float64  `json:"total_pay"`
	IsValid              bool     `json:"is_valid"`
	ValidationErrors     []string `json:"validation_errors"`
}

// Round2 rounds to 2 decimal places, half up. Inputs here are non-negative
// hours and pay amounts.
func Round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// BreakMinutes returns the effective break duration for the entry with the
// rule's grace period applied: a measured break that runs over the default
// duration by no more than the grace window is treated as exactly the
// default, absorbing minor clock imprecision without shorting the worker.
func BreakMinutes(e Entry, r Rule) float64 {
	if e.BreakStart == nil || e.BreakEnd == nil {
		return 0
	}
	measured := e.BreakEnd.Sub(*e.BreakStart).Minutes()
	if measured < 0 {
		return 0
	}
	def := float64(r.DefaultBreakMinutes)
	grace := float64(r.BreakGraceMinutes)
	if def > 0 && measured > def && measured <= def+grace {
		return def
	}
	return measured
}

// Calculate converts one entry plus a rate rule into hours, break duration
// and pay. A nil CheckOut yields a zero result with IsValid=false and no
// error codes: the shift is incomplete, not broken. Sequence violations
// yield IsValid=false with the offending codes and no figures.
func Calculate(e Entry, r Rule) Result {
	if e.CheckOut == nil {
		return Result{ValidationErrors: []string{}}
	}
	if errs := ValidateSequence(e); len(errs) > 0 {
		return Result{ValidationErrors: errs}
	}

	rawMinutes := e.CheckOut.Sub(e.CheckIn).Minutes()
	breakMinutes := BreakMinutes(e, r)
	workedMinutes := rawMinutes - breakMinutes
	if workedMinutes < 0 {
		workedMinutes = 0
	}
	totalHours := Round2(workedMinutes / 60)

	return Result{
		TotalHours:           totalHours,
		BreakDurationMinutes: breakMinutes,
		TotalPay:             Pay(totalHours, r),
		IsValid:              true,
		ValidationErrors:     []string{},
	}
}

// Pay computes the amount owed for the given hours under the rule. Daily
// rates are flat regardless of hours; hourly rates apply the overtime
// multiplier above the threshold.
func Pay(totalHours float64, r Rule) float64 {
	if r.TimeType == TimeTypeDaily {
		return Round2(r.Rate)
	}
	if totalHours <= r.OvertimeThresholdHours || r.OvertimeThresholdHours <= 0 {
		return Round2(totalHours * r.Rate)
	}
	base := r.OvertimeThresholdHours * r.Rate
	overtime := (totalHours - r.OvertimeThresholdHours) * r.Rate * r.OvertimeMultiplier
	return Round2(base + overtime)
}

// ManualEditExceeded reports whether a recalculation moved total hours far
// enough from the previously stored value that the entry should be flagged
// as manually edited. threshold <= 0 falls back to the 15-minute default.
func ManualEditExceeded(prevHours, newHours, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultManualEditHoursDelta
	}
	return math.Abs(newHours-prevHours) > threshold
}

// SynthesizeBreak returns a copy of the entry with a break of the given
// default duration centered in the shift. Used by the "add_break"
// missing-break resolution. The entry must have a CheckOut.
func SynthesizeBreak(e Entry, defaultBreakMinutes int) Entry {
	if e.CheckOut == nil || defaultBreakMinutes <= 0 {
		return e
	}
	shift := e.CheckOut.Sub(e.CheckIn)
	half := time.Duration(defaultBreakMinutes) * time.Minute / 2
	mid := e.CheckIn.Add(shift / 2)
	start := mid.Add(-half)
	end := mid.Add(half)
	e.BreakStart = &start
	e.BreakEnd = &end
	return e
}

// ClearBreak returns a copy of the entry with the break fields removed.
// Used by the "no_break" missing-break resolution; hours and pay are left
// unchanged by the caller.
func ClearBreak(e Entry) Entry {
	e.BreakStart = nil
	e.BreakEnd = nil
	return e
}
