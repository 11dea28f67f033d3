package valueobject

import (
	"fmt"
	"time"
)

// Periodicity is the cadence at which installments fall due.
type Periodicity struct {
	value string
}

const (
	periodicityDaily     = "DAILY"
	periodicityWeekly    = "WEEKLY"
	periodicityBiweekly  = "BIWEEKLY"
	periodicityMonthly   = "MONTHLY"
	periodicityQuarterly = "QUARTERLY"
)

var (
	PeriodicityDaily     = Periodicity{value: periodicityDaily}
	PeriodicityWeekly    = Periodicity{value: periodicityWeekly}
	PeriodicityBiweekly  = Periodicity{value: periodicityBiweekly}
	PeriodicityMonthly   = Periodicity{value: periodicityMonthly}
	PeriodicityQuarterly = Periodicity{value: periodicityQuarterly}
)

var validPeriodicities = map[string]Periodicity{
	periodicityDaily:     PeriodicityDaily,
	periodicityWeekly:    PeriodicityWeekly,
	periodicityBiweekly:  PeriodicityBiweekly,
	periodicityMonthly:   PeriodicityMonthly,
	periodicityQuarterly: PeriodicityQuarterly,
}

// NewPeriodicity creates a Periodicity from a raw string.
func NewPeriodicity(s string) (Periodicity, error) {
	v, ok := validPeriodicities[s]
	if !ok {
		return Periodicity{}, fmt.Errorf("invalid periodicity: %q", s)
	}
	return v, nil
}

// String returns the string representation of the periodicity.
func (p Periodicity) String() string { return p.value }

// IsZero returns true if the periodicity has not been initialised.
func (p Periodicity) IsZero() bool { return p.value == "" }

// Equal returns true when both periodicities carry the same value.
func (p Periodicity) Equal(other Periodicity) bool { return p.value == other.value }

// AddTo advances a date by the given number of periodicity steps.
// Monthly and quarterly steps are calendar-aware: the day of month is
// preserved, clamped to the last day of shorter target months.
func (p Periodicity) AddTo(date time.Time, steps int) time.Time {
	switch p.value {
	case periodicityDaily:
		return date.AddDate(0, 0, steps)
	case periodicityWeekly:
		return date.AddDate(0, 0, 7*steps)
	case periodicityBiweekly:
		return date.AddDate(0, 0, 14*steps)
	case periodicityMonthly:
		return addMonthsClamped(date, steps)
	case periodicityQuarterly:
		return addMonthsClamped(date, 3*steps)
	default:
		return date
	}
}

// StepsBetween returns the number of whole periodicity steps elapsed from
// one date to another. Returns zero when to does not lie after from.
func (p Periodicity) StepsBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}

	switch p.value {
	case periodicityDaily, periodicityWeekly, periodicityBiweekly:
		days := int(to.Sub(from).Hours() / 24)
		return days / p.stepDays()
	case periodicityMonthly, periodicityQuarterly:
		months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
		per := 1
		if p.value == periodicityQuarterly {
			per = 3
		}
		steps := months / per
		for steps > 0 && p.AddTo(from, steps).After(to) {
			steps--
		}
		return steps
	default:
		return 0
	}
}

func (p Periodicity) stepDays() int {
	switch p.value {
	case periodicityDaily:
		return 1
	case periodicityWeekly:
		return 7
	case periodicityBiweekly:
		return 14
	default:
		return 1
	}
}

// addMonthsClamped adds months preserving the day of month, clamping to the
// end of the target month (Jan 31 + 1 month = Feb 28/29, not Mar 2/3).
func addMonthsClamped(date time.Time, months int) time.Time {
	year, month, day := date.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, date.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, date.Location())
}
