package schedule

import (
	"fmt"
	"sort"
	"time"

	"tavola/pkg/model"
)

// Normalize converts a loosely-typed opening-hours document into its
// canonical form. It never fails: malformed intervals are dropped,
// missing weekdays default to closed, missing slot and area config fall
// back to safe defaults. Every dropped or substituted entry is reported
// as a warning so admin tooling can surface configuration mistakes.
func Normalize(raw *model.OpeningHours) (*NormalizedOpeningHours, []Warning) {
	var warnings []Warning

	if raw == nil {
		raw = &model.OpeningHours{}
		warnings = append(warnings, Warning{
			Field:   "document",
			Message: "opening hours document is missing, treating every day as closed",
		})
	}

	n := &NormalizedOpeningHours{
		Timezone:            raw.Timezone,
		ReservationsEnabled: raw.ReservationsEnabled == nil || *raw.ReservationsEnabled,
		Week:                make(map[string]model.DaySchedule, len(WeekdayKeys)),
		Exceptions:          make(map[string]model.DaySchedule, len(raw.Exceptions)),
		Areas:               make(map[string]model.AreaConfig, len(model.AreaKeys)),
	}

	if n.Timezone == "" {
		n.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(n.Timezone)
	if err != nil {
		warnings = append(warnings, Warning{
			Field:   "timezone",
			Message: fmt.Sprintf("unknown timezone %q, falling back to UTC", n.Timezone),
		})
		n.Timezone = "UTC"
		loc = time.UTC
	}
	n.Location = loc

	for _, key := range WeekdayKeys {
		day, ok := raw.Week[key]
		if !ok {
			n.Week[key] = model.DaySchedule{Closed: true}
			continue
		}
		normalized, dayWarnings := normalizeDay("week."+key, day)
		n.Week[key] = normalized
		warnings = append(warnings, dayWarnings...)
	}

	for date, day := range raw.Exceptions {
		if _, err := time.Parse(DateLayout, date); err != nil {
			warnings = append(warnings, Warning{
				Field:   "exceptions." + date,
				Message: "exception key is not a YYYY-MM-DD date, entry dropped",
			})
			continue
		}
		normalized, dayWarnings := normalizeDay("exceptions."+date, day)
		n.Exceptions[date] = normalized
		warnings = append(warnings, dayWarnings...)
	}

	n.Slot, warnings = normalizeSlotConfig(raw.Slot, warnings)
	n.Areas, warnings = normalizeAreas(raw.Areas, warnings)

	return n, warnings
}

// normalizeDay drops malformed intervals, sorts the rest and merges
// overlapping or adjacent ones so the slot generator never emits
// duplicate start times.
func normalizeDay(field string, day model.DaySchedule) (model.DaySchedule, []Warning) {
	if day.Closed {
		return model.DaySchedule{Closed: true}, nil
	}

	var warnings []Warning
	type span struct{ start, end int }
	var spans []span

	for _, interval := range day.Intervals {
		start, err := parseClock(interval.Start)
		if err != nil {
			warnings = append(warnings, Warning{
				Field:   field,
				Message: fmt.Sprintf("interval start %q is not a valid HH:MM time, interval dropped", interval.Start),
			})
			continue
		}
		end, err := parseClock(interval.End)
		if err != nil {
			warnings = append(warnings, Warning{
				Field:   field,
				Message: fmt.Sprintf("interval end %q is not a valid HH:MM time, interval dropped", interval.End),
			})
			continue
		}
		if start >= end {
			warnings = append(warnings, Warning{
				Field:   field,
				Message: fmt.Sprintf("interval %s-%s does not satisfy start < end, interval dropped", interval.Start, interval.End),
			})
			continue
		}
		spans = append(spans, span{start: start, end: end})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var merged []span
	for _, s := range spans {
		if len(merged) > 0 && s.start <= merged[len(merged)-1].end {
			last := &merged[len(merged)-1]
			if s.start < last.end {
				warnings = append(warnings, Warning{
					Field:   field,
					Message: fmt.Sprintf("interval %s-%s overlaps the previous shift, intervals merged", formatClock(s.start), formatClock(s.end)),
				})
			}
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}

	out := model.DaySchedule{}
	for _, s := range merged {
		out.Intervals = append(out.Intervals, model.TimeInterval{
			Start: formatClock(s.start),
			End:   formatClock(s.end),
		})
	}
	return out, warnings
}

func normalizeSlotConfig(raw *model.SlotConfig, warnings []Warning) (model.SlotConfig, []Warning) {
	out := model.SlotConfig{
		StepMinutes:    DefaultStepMinutes,
		MinLeadMinutes: DefaultMinLeadMinutes,
		MaxAdvanceDays: DefaultMaxAdvanceDays,
	}
	if raw == nil {
		return out, warnings
	}

	if raw.StepMinutes > 0 {
		out.StepMinutes = raw.StepMinutes
	} else if raw.StepMinutes < 0 {
		warnings = append(warnings, Warning{
			Field:   "slot.step_minutes",
			Message: fmt.Sprintf("step must be positive, got %d, using default %d", raw.StepMinutes, DefaultStepMinutes),
		})
	}

	if raw.MinLeadMinutes >= 0 {
		out.MinLeadMinutes = raw.MinLeadMinutes
	} else {
		warnings = append(warnings, Warning{
			Field:   "slot.min_lead_minutes",
			Message: fmt.Sprintf("lead time cannot be negative, got %d, using default %d", raw.MinLeadMinutes, DefaultMinLeadMinutes),
		})
	}

	if raw.MaxAdvanceDays >= 0 {
		out.MaxAdvanceDays = raw.MaxAdvanceDays
	} else {
		warnings = append(warnings, Warning{
			Field:   "slot.max_advance_days",
			Message: fmt.Sprintf("advance window cannot be negative, got %d, using default %d", raw.MaxAdvanceDays, DefaultMaxAdvanceDays),
		})
	}

	return out, warnings
}

func normalizeAreas(raw map[string]model.AreaConfig, warnings []Warning) (map[string]model.AreaConfig, []Warning) {
	out := make(map[string]model.AreaConfig, len(model.AreaKeys))

	for _, key := range model.AreaKeys {
		cfg, ok := raw[key]
		if !ok {
			out[key] = model.AreaConfig{Capacity: 0, Enabled: false}
			continue
		}
		if cfg.Capacity < 0 {
			warnings = append(warnings, Warning{
				Field:   "areas." + key,
				Message: fmt.Sprintf("capacity cannot be negative, got %d, using 0", cfg.Capacity),
			})
			cfg.Capacity = 0
		}
		out[key] = cfg
	}

	for key := range raw {
		if _, ok := out[key]; !ok {
			warnings = append(warnings, Warning{
				Field:   "areas." + key,
				Message: "unknown area key, entry dropped",
			})
		}
	}

	return out, warnings
}

// parseClock converts an "HH:MM" string to minutes since midnight.
func parseClock(clock string) (int, error) {
	t, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
