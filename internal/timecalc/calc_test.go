package timecalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tp(t time.Time) *time.Time { return &t }

var day = time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

func hourlyRule() Rule {
	return Rule{
		Rate:                   20,
		TimeType:               TimeTypeHourly,
		OvertimeThresholdHours: 8,
		OvertimeMultiplier:     1.5,
		DefaultBreakMinutes:    30,
		BreakGraceMinutes:      DefaultBreakGraceMinutes,
	}
}

func TestCalculateInProgressShift(t *testing.T) {
	res := Calculate(Entry{CheckIn: day.Add(8 * time.Hour)}, hourlyRule())
	assert.False(t, res.IsValid)
	assert.Empty(t, res.ValidationErrors)
	assert.Zero(t, res.TotalHours)
	assert.Zero(t, res.TotalPay)
}

func TestCalculateSimpleShift(t *testing.T) {
	e := Entry{
		CheckIn:  day.Add(9 * time.Hour),
		CheckOut: tp(day.Add(17 * time.Hour)),
	}
	res := Calculate(e, hourlyRule())
	require.True(t, res.IsValid)
	assert.Equal(t, 8.0, res.TotalHours)
	assert.Equal(t, 160.0, res.TotalPay)
	assert.Zero(t, res.BreakDurationMinutes)
}

func TestCalculateIsIdempotent(t *testing.T) {
	e := Entry{
		CheckIn:    day.Add(9 * time.Hour),
		CheckOut:   tp(day.Add(18*time.Hour + 17*time.Minute)),
		BreakStart: tp(day.Add(13 * time.Hour)),
		BreakEnd:   tp(day.Add(13*time.Hour + 33*time.Minute)),
	}
	first := Calculate(e, hourlyRule())
	second := Calculate(e, hourlyRule())
	assert.Equal(t, first, second)
}

func TestBreakGracePeriod(t *testing.T) {
	e := Entry{
		CheckIn:    day.Add(9 * time.Hour),
		CheckOut:   tp(day.Add(17 * time.Hour)),
		BreakStart: tp(day.Add(12 * time.Hour)),
		BreakEnd:   tp(day.Add(12*time.Hour + 33*time.Minute)),
	}
	res := Calculate(e, hourlyRule())
	require.True(t, res.IsValid)
	// 33 actual minutes sits inside the 5-minute grace window over the
	// 30-minute default, so the break collapses to exactly 30.
	assert.Equal(t, 30.0, res.BreakDurationMinutes)
	assert.Equal(t, 7.5, res.TotalHours)
}

func TestBreakOutsideGraceKeptAsMeasured(t *testing.T) {
	e := Entry{
		CheckIn:    day.Add(9 * time.Hour),
		CheckOut:   tp(day.Add(17 * time.Hour)),
		BreakStart: tp(day.Add(12 * time.Hour)),
		BreakEnd:   tp(day.Add(12*time.Hour + 40*time.Minute)),
	}
	res := Calculate(e, hourlyRule())
	assert.Equal(t, 40.0, res.BreakDurationMinutes)
}

func TestShortBreakNotInflated(t *testing.T) {
	e := Entry{
		CheckIn:    day.Add(9 * time.Hour),
		CheckOut:   tp(day.Add(17 * time.Hour)),
		BreakStart: tp(day.Add(12 * time.Hour)),
		BreakEnd:   tp(day.Add(12*time.Hour + 20*time.Minute)),
	}
	res := Calculate(e, hourlyRule())
	assert.Equal(t, 20.0, res.BreakDurationMinutes)
}

func TestOvertimeBoundary(t *testing.T) {
	e := Entry{
		CheckIn:  day.Add(8 * time.Hour),
		CheckOut: tp(day.Add(18 * time.Hour)),
	}
	res := Calculate(e, hourlyRule())
	require.True(t, res.IsValid)
	assert.Equal(t, 10.0, res.TotalHours)
	// 8*20 + 2*20*1.5
	assert.Equal(t, 220.0, res.TotalPay)
}

func TestDailyRateFlatPay(t *testing.T) {
	rule := hourlyRule()
	rule.TimeType = TimeTypeDaily
	rule.Rate = 300
	e := Entry{
		CheckIn:  day.Add(7 * time.Hour),
		CheckOut: tp(day.Add(18 * time.Hour)),
	}
	res := Calculate(e, rule)
	require.True(t, res.IsValid)
	assert.Equal(t, 11.0, res.TotalHours)
	assert.Equal(t, 300.0, res.TotalPay)
}

func TestCheckoutMonotonicity(t *testing.T) {
	rule := hourlyRule()
	base := Entry{
		CheckIn:    day.Add(9 * time.Hour),
		CheckOut:   tp(day.Add(15 * time.Hour)),
		BreakStart: tp(day.Add(12 * time.Hour)),
		BreakEnd:   tp(day.Add(12*time.Hour + 30*time.Minute)),
	}
	prev := Calculate(base, rule)
	for i := 1; i <= 48; i++ {
		later := base
		later.CheckOut = tp(day.Add(15*time.Hour + time.Duration(i)*15*time.Minute))
		cur := Calculate(later, rule)
		assert.GreaterOrEqual(t, cur.TotalHours, prev.TotalHours)
		assert.GreaterOrEqual(t, cur.TotalPay, prev.TotalPay)
		prev = cur
	}
}

func TestCalculateSequenceViolation(t *testing.T) {
	e := Entry{
		CheckIn:  day.Add(17 * time.Hour),
		CheckOut: tp(day.Add(9 * time.Hour)),
	}
	res := Calculate(e, hourlyRule())
	assert.False(t, res.IsValid)
	assert.Contains(t, res.ValidationErrors, CodeCheckoutBeforeCheckin)
	assert.Zero(t, res.TotalPay)
}

func TestRound2HalfUp(t *testing.T) {
	// 0.125 and 0.375 are exactly representable, so the .5 boundary is real.
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, 0.38, Round2(0.375))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 10.0, Round2(9.999))
	// 461 worked minutes -> 7.6833... -> 7.68
	assert.Equal(t, 7.68, Round2(461.0/60))
}

func TestManualEditExceeded(t *testing.T) {
	assert.False(t, ManualEditExceeded(8.0, 8.25, 0))
	assert.True(t, ManualEditExceeded(8.0, 8.26, 0))
	assert.True(t, ManualEditExceeded(8.5, 8.0, 0.25))
	assert.False(t, ManualEditExceeded(8.0, 8.4, 0.5))
}

func TestSynthesizeBreakCentered(t *testing.T) {
	e := Entry{
		CheckIn:  day.Add(9 * time.Hour),
		CheckOut: tp(day.Add(17 * time.Hour)),
	}
	withBreak := SynthesizeBreak(e, 30)
	require.NotNil(t, withBreak.BreakStart)
	require.NotNil(t, withBreak.BreakEnd)
	assert.Equal(t, day.Add(12*time.Hour+45*time.Minute), *withBreak.BreakStart)
	assert.Equal(t, day.Add(13*time.Hour+15*time.Minute), *withBreak.BreakEnd)
	assert.Empty(t, ValidateSequence(withBreak))

	res := Calculate(withBreak, hourlyRule())
	assert.Equal(t, 7.5, res.TotalHours)
}

func TestClearBreak(t *testing.T) {
	e := Entry{
		CheckIn:    day.Add(9 * time.Hour),
		CheckOut:   tp(day.Add(17 * time.Hour)),
		BreakStart: tp(day.Add(12 * time.Hour)),
		BreakEnd:   tp(day.Add(12*time.Hour + 30*time.Minute)),
	}
	cleared := ClearBreak(e)
	assert.Nil(t, cleared.BreakStart)
	assert.Nil(t, cleared.BreakEnd)
}
