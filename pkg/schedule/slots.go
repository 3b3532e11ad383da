package schedule

import (
	"fmt"
	"time"
)

// Slot is one bookable start time on a specific date.
type Slot struct {
	Time     string    `json:"time"`
	StartsAt time.Time `json:"-"`
}

// GenerateSlots produces the ordered bookable start times for a calendar
// date and area. A closed day, disabled reservations or a disabled area
// all yield an empty result; "nothing available" is an expected outcome,
// not an error. The only error is a malformed date string, which callers
// are expected to have validated already.
//
// The max-advance-days window is deliberately NOT enforced here so that
// callers can tell "past the advance window" apart from "no slots today";
// see DaysUntil.
func GenerateSlots(date string, n *NormalizedOpeningHours, area string, now time.Time) ([]Slot, error) {
	day, err := time.ParseInLocation(DateLayout, date, n.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	if !n.ReservationsEnabled || !n.AreaOpen(area) {
		return nil, nil
	}

	resolved := n.ResolveDay(date, day.Weekday())
	if resolved.Closed {
		return nil, nil
	}

	cutoff := now.Add(time.Duration(n.Slot.MinLeadMinutes) * time.Minute)
	step := n.Slot.StepMinutes

	var slots []Slot
	for _, interval := range resolved.Intervals {
		start, err := parseClock(interval.Start)
		if err != nil {
			continue
		}
		end, err := parseClock(interval.End)
		if err != nil {
			continue
		}

		// A slot must fit entirely inside the shift window; no partial
		// trailing slot.
		for m := start; m+step <= end; m += step {
			startsAt := time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, n.Location)
			if startsAt.Before(cutoff) {
				continue
			}
			slots = append(slots, Slot{Time: formatClock(m), StartsAt: startsAt})
		}
	}

	return slots, nil
}

// ContainsSlot reports whether the generated slot set for date/area
// includes the given "HH:MM" start time.
func ContainsSlot(date string, n *NormalizedOpeningHours, area string, startTime string, now time.Time) (bool, error) {
	slots, err := GenerateSlots(date, n, area, now)
	if err != nil {
		return false, err
	}
	for _, slot := range slots {
		if slot.Time == startTime {
			return true, nil
		}
	}
	return false, nil
}

// DaysUntil returns the signed number of calendar days from today (in the
// schedule timezone) to the given date. Zero means today, negative means
// the date already passed.
func DaysUntil(date string, n *NormalizedOpeningHours, now time.Time) (int, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}

	localNow := now.In(n.Location)
	today := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, time.UTC)
	target := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	return int(target.Sub(today).Hours() / 24), nil
}
