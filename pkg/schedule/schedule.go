// Package schedule is the reservation availability engine: it normalizes
// admin-authored opening-hours documents and generates bookable time slots.
// Everything here is a pure function of its inputs; callers pass `now`
// explicitly so results stay deterministic and testable.
package schedule

import (
	"time"

	"tavola/pkg/model"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	DefaultStepMinutes    = 30
	DefaultMinLeadMinutes = 60
	DefaultMaxAdvanceDays = 60
)

var weekdayKeys = map[time.Weekday]string{
	time.Monday:    "mon",
	time.Tuesday:   "tue",
	time.Wednesday: "wed",
	time.Thursday:  "thu",
	time.Friday:    "fri",
	time.Saturday:  "sat",
	time.Sunday:    "sun",
}

// WeekdayKeys in calendar order, Monday first.
var WeekdayKeys = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// Warning flags a dropped or substituted piece of schedule configuration.
// Normalization never fails; warnings let admins see what was ignored.
type Warning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NormalizedOpeningHours is the canonical in-memory schedule: all seven
// weekday keys present, intervals sorted and merged, defaults substituted.
type NormalizedOpeningHours struct {
	Timezone            string
	Location            *time.Location
	ReservationsEnabled bool
	Week                map[string]model.DaySchedule
	Exceptions          map[string]model.DaySchedule
	Slot                model.SlotConfig
	Areas               map[string]model.AreaConfig
}

// ResolveDay returns the effective schedule for a calendar date. A
// date-keyed exception always wins over the weekly default.
func (n *NormalizedOpeningHours) ResolveDay(date string, weekday time.Weekday) model.DaySchedule {
	if day, ok := n.Exceptions[date]; ok {
		return day
	}
	return n.Week[weekdayKeys[weekday]]
}

// AreaOpen reports whether an area can take reservations at all.
// A disabled area yields zero capacity regardless of the stored number.
func (n *NormalizedOpeningHours) AreaOpen(area string) bool {
	cfg, ok := n.Areas[area]
	return ok && cfg.Enabled && cfg.Capacity > 0
}

// AreaCapacity returns the bookable capacity for an area, zero when the
// area is unknown or disabled.
func (n *NormalizedOpeningHours) AreaCapacity(area string) int {
	cfg, ok := n.Areas[area]
	if !ok || !cfg.Enabled || cfg.Capacity < 0 {
		return 0
	}
	return cfg.Capacity
}
