package schedule

import (
	"testing"
	"time"

	"tavola/pkg/model"
)

// 2025-06-02 is a Monday.
func testSchedule(t *testing.T) *NormalizedOpeningHours {
	t.Helper()
	n, warnings := Normalize(&model.OpeningHours{
		Timezone: "UTC",
		Week: map[string]model.DaySchedule{
			"mon": {Intervals: []model.TimeInterval{{Start: "18:00", End: "22:00"}}},
			"tue": {Intervals: []model.TimeInterval{
				{Start: "11:30", End: "14:00"},
				{Start: "18:00", End: "22:00"},
			}},
			"wed": {Closed: true},
		},
		Exceptions: map[string]model.DaySchedule{
			"2025-06-09": {Closed: true},
			"2025-06-10": {Intervals: []model.TimeInterval{{Start: "12:00", End: "13:30"}}},
		},
		Slot: &model.SlotConfig{StepMinutes: 30, MinLeadMinutes: 60, MaxAdvanceDays: 60},
		Areas: map[string]model.AreaConfig{
			model.AreaIndoor:  {Capacity: 40, Enabled: true},
			model.AreaOutdoor: {Capacity: 24, Enabled: false},
		},
	})
	if len(warnings) != 0 {
		t.Fatalf("test schedule should normalize cleanly, got warnings: %v", warnings)
	}
	return n
}

func slotTimes(slots []Slot) []string {
	times := make([]string, 0, len(slots))
	for _, s := range slots {
		times = append(times, s.Time)
	}
	return times
}

func TestGenerateSlots(t *testing.T) {
	n := testSchedule(t)
	// Well before any slot on the test dates.
	early := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		area string
		now  time.Time
		want []string
	}{
		{
			name: "full evening shift on the step grid",
			date: "2025-06-02",
			area: model.AreaIndoor,
			now:  early,
			want: []string{"18:00", "18:30", "19:00", "19:30", "20:00", "20:30", "21:00", "21:30"},
		},
		{
			name: "two shifts generate two runs",
			date: "2025-06-03",
			area: model.AreaIndoor,
			now:  early,
			want: []string{
				"11:30", "12:00", "12:30", "13:00", "13:30",
				"18:00", "18:30", "19:00", "19:30", "20:00", "20:30", "21:00", "21:30",
			},
		},
		{
			name: "closed weekday yields nothing",
			date: "2025-06-04",
			area: model.AreaIndoor,
			now:  early,
			want: nil,
		},
		{
			name: "closed exception overrides open weekday",
			date: "2025-06-09",
			area: model.AreaIndoor,
			now:  early,
			want: nil,
		},
		{
			name: "open exception overrides weekly schedule",
			date: "2025-06-10",
			area: model.AreaIndoor,
			now:  early,
			want: []string{"12:00", "12:30", "13:00"},
		},
		{
			name: "disabled area yields nothing",
			date: "2025-06-02",
			area: model.AreaOutdoor,
			now:  early,
			want: nil,
		},
		{
			name: "lead time cuts same-day slots",
			date: "2025-06-02",
			area: model.AreaIndoor,
			now:  time.Date(2025, 6, 2, 19, 10, 0, 0, time.UTC),
			want: []string{"20:30", "21:00", "21:30"},
		},
		{
			name: "slot exactly at the cutoff stays bookable",
			date: "2025-06-02",
			area: model.AreaIndoor,
			now:  time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC),
			want: []string{"21:00", "21:30"},
		},
		{
			name: "lead time past closing empties the day",
			date: "2025-06-02",
			area: model.AreaIndoor,
			now:  time.Date(2025, 6, 2, 21, 0, 0, 0, time.UTC),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := GenerateSlots(tt.date, n, tt.area, tt.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := slotTimes(slots)
			if len(got) != len(tt.want) {
				t.Fatalf("slot times mismatch:\n got %v\nwant %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("slot times mismatch:\n got %v\nwant %v", got, tt.want)
				}
			}
		})
	}
}

func TestGenerateSlotsNoPartialTrailingSlot(t *testing.T) {
	n, _ := Normalize(&model.OpeningHours{
		Week: map[string]model.DaySchedule{
			"mon": {Intervals: []model.TimeInterval{{Start: "18:00", End: "21:45"}}},
		},
		Slot: &model.SlotConfig{StepMinutes: 30, MinLeadMinutes: 0, MaxAdvanceDays: 60},
		Areas: map[string]model.AreaConfig{
			model.AreaIndoor: {Capacity: 10, Enabled: true},
		},
	})

	slots, err := GenerateSlots("2025-06-02", n, model.AreaIndoor, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := slotTimes(slots)
	// 21:30 would spill past 21:45, so 21:00 is the last start.
	want := []string{"18:00", "18:30", "19:00", "19:30", "20:00", "20:30", "21:00"}
	if len(got) != len(want) {
		t.Fatalf("slot times mismatch:\n got %v\nwant %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("slot times mismatch:\n got %v\nwant %v", got, want)
		}
	}
}

func TestGenerateSlotsReservationsDisabled(t *testing.T) {
	disabled := false
	n, _ := Normalize(&model.OpeningHours{
		ReservationsEnabled: &disabled,
		Week: map[string]model.DaySchedule{
			"mon": {Intervals: []model.TimeInterval{{Start: "18:00", End: "22:00"}}},
		},
		Areas: map[string]model.AreaConfig{
			model.AreaIndoor: {Capacity: 10, Enabled: true},
		},
	})

	slots, err := GenerateSlots("2025-06-02", n, model.AreaIndoor, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("disabled reservations should yield no slots, got %v", slotTimes(slots))
	}
}

func TestGenerateSlotsInvalidDate(t *testing.T) {
	n := testSchedule(t)
	if _, err := GenerateSlots("02.06.2025", n, model.AreaIndoor, time.Now()); err == nil {
		t.Error("expected an error for a malformed date")
	}
}

// The lead-time cutoff must be monotone: moving now forward never adds
// slots back.
func TestGenerateSlotsLeadTimeMonotonic(t *testing.T) {
	n := testSchedule(t)

	prev := -1
	for hour := 8; hour <= 23; hour++ {
		now := time.Date(2025, 6, 2, hour, 0, 0, 0, time.UTC)
		slots, err := GenerateSlots("2025-06-02", n, model.AreaIndoor, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prev >= 0 && len(slots) > prev {
			t.Fatalf("slot count grew from %d to %d as now advanced to %s", prev, len(slots), now)
		}
		prev = len(slots)
	}
}

func TestContainsSlot(t *testing.T) {
	n := testSchedule(t)
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		date      string
		startTime string
		want      bool
	}{
		{name: "grid slot is contained", date: "2025-06-02", startTime: "19:30", want: true},
		{name: "off-grid time is not", date: "2025-06-02", startTime: "19:45", want: false},
		{name: "outside shift is not", date: "2025-06-02", startTime: "15:00", want: false},
		{name: "closed day contains nothing", date: "2025-06-04", startTime: "19:30", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ContainsSlot(tt.date, n, model.AreaIndoor, tt.startTime, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ContainsSlot(%s %s) = %v, want %v", tt.date, tt.startTime, got, tt.want)
			}
		})
	}
}

func TestDaysUntil(t *testing.T) {
	n := testSchedule(t)
	now := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		want int
	}{
		{name: "today", date: "2025-06-02", want: 0},
		{name: "tomorrow", date: "2025-06-03", want: 1},
		{name: "yesterday", date: "2025-06-01", want: -1},
		{name: "next month", date: "2025-07-02", want: 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DaysUntil(tt.date, n, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DaysUntil(%s) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}

// A guest in Berlin at half past midnight is already on the next
// calendar day even though UTC still shows the previous one.
func TestDaysUntilUsesScheduleTimezone(t *testing.T) {
	n, _ := Normalize(&model.OpeningHours{Timezone: "Europe/Berlin"})

	// 23:30 UTC on June 1st is 01:30 on June 2nd in Berlin.
	now := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)

	got, err := DaysUntil("2025-06-02", n, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 2025-06-02 to be today in Berlin, got %d days", got)
	}
}
