package timecalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateSequence(t *testing.T) {
	in := day.Add(9 * time.Hour)

	tests := []struct {
		name  string
		entry Entry
		want  []string
	}{
		{
			name:  "valid plain shift",
			entry: Entry{CheckIn: in, CheckOut: tp(in.Add(8 * time.Hour))},
			want:  nil,
		},
		{
			name:  "checkout before checkin",
			entry: Entry{CheckIn: in, CheckOut: tp(in.Add(-time.Hour))},
			want:  []string{CodeCheckoutBeforeCheckin},
		},
		{
			name:  "checkout equal to checkin",
			entry: Entry{CheckIn: in, CheckOut: tp(in)},
			want:  []string{CodeCheckoutBeforeCheckin},
		},
		{
			name: "break before checkin",
			entry: Entry{
				CheckIn:    in,
				CheckOut:   tp(in.Add(8 * time.Hour)),
				BreakStart: tp(in.Add(-30 * time.Minute)),
				BreakEnd:   tp(in.Add(30 * time.Minute)),
			},
			want: []string{CodeInvalidBreakWindow},
		},
		{
			name: "break end past checkout",
			entry: Entry{
				CheckIn:    in,
				CheckOut:   tp(in.Add(8 * time.Hour)),
				BreakStart: tp(in.Add(7 * time.Hour)),
				BreakEnd:   tp(in.Add(9 * time.Hour)),
			},
			want: []string{CodeInvalidBreakWindow},
		},
		{
			name: "break end before break start",
			entry: Entry{
				CheckIn:    in,
				CheckOut:   tp(in.Add(8 * time.Hour)),
				BreakStart: tp(in.Add(4 * time.Hour)),
				BreakEnd:   tp(in.Add(3 * time.Hour)),
			},
			want: []string{CodeInvalidBreakWindow},
		},
		{
			name: "half populated break",
			entry: Entry{
				CheckIn:    in,
				CheckOut:   tp(in.Add(8 * time.Hour)),
				BreakStart: tp(in.Add(4 * time.Hour)),
			},
			want: []string{CodeInvalidBreakWindow},
		},
		{
			name: "both violations reported",
			entry: Entry{
				CheckIn:  in,
				CheckOut: tp(in.Add(-time.Hour)),
				BreakEnd: tp(in.Add(time.Hour)),
			},
			want: []string{CodeCheckoutBeforeCheckin, CodeInvalidBreakWindow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateSequence(tt.entry))
		})
	}
}

func TestValidateShiftLength(t *testing.T) {
	errs, warns := ValidateShiftLength(21, 0, 0)
	assert.Equal(t, []string{CodeShiftExceedsMax}, errs)
	assert.Empty(t, warns)

	errs, warns = ValidateShiftLength(13, 0, 0)
	assert.Empty(t, errs)
	assert.Equal(t, []string{CodeLongShiftWarning}, warns)

	errs, warns = ValidateShiftLength(8, 0, 0)
	assert.Empty(t, errs)
	assert.Empty(t, warns)

	// Ceiling check applies regardless of custom warning threshold.
	errs, _ = ValidateShiftLength(25, 24, 12)
	assert.Equal(t, []string{CodeShiftExceedsMax}, errs)
}

func TestRequiresBreakResolution(t *testing.T) {
	in := day.Add(8 * time.Hour)

	long := Entry{CheckIn: in, CheckOut: tp(in.Add(7 * time.Hour))}
	assert.True(t, RequiresBreakResolution(long, 7))

	short := Entry{CheckIn: in, CheckOut: tp(in.Add(5 * time.Hour))}
	assert.False(t, RequiresBreakResolution(short, 5))

	withBreak := Entry{
		CheckIn:    in,
		CheckOut:   tp(in.Add(8 * time.Hour)),
		BreakStart: tp(in.Add(4 * time.Hour)),
		BreakEnd:   tp(in.Add(4*time.Hour + 30*time.Minute)),
	}
	assert.False(t, RequiresBreakResolution(withBreak, 7.5))

	// Exactly six hours does not trip the blocker.
	boundary := Entry{CheckIn: in, CheckOut: tp(in.Add(6 * time.Hour))}
	assert.False(t, RequiresBreakResolution(boundary, 6))
}

func TestSubmissionOpen(t *testing.T) {
	start := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	assert.False(t, SubmissionOpen(start.AddDate(0, 0, -1), start, true))
	// Submission opens at midnight on the production start day.
	assert.True(t, SubmissionOpen(time.Date(2026, 4, 1, 0, 0, 1, 0, time.UTC), start, true))
	assert.True(t, SubmissionOpen(start.AddDate(0, 0, 3), start, true))
	// Policy off: always open.
	assert.True(t, SubmissionOpen(start.AddDate(0, 0, -10), start, false))
}
