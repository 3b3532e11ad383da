package validator

import (
	"testing"
	"time"

	"tavola/pkg/logger"
	"tavola/pkg/model"
	"tavola/pkg/schedule"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
}

// 2025-06-02 is a Monday; the restaurant is open Mon-Tue evenings and
// Tuesday lunch, closed Wednesday.
func testSchedule(t *testing.T, reservationsEnabled bool) *schedule.NormalizedOpeningHours {
	t.Helper()
	n, warnings := schedule.Normalize(&model.OpeningHours{
		Timezone:            "UTC",
		ReservationsEnabled: &reservationsEnabled,
		Week: map[string]model.DaySchedule{
			"mon": {Intervals: []model.TimeInterval{{Start: "18:00", End: "22:00"}}},
			"tue": {Intervals: []model.TimeInterval{
				{Start: "11:30", End: "14:00"},
				{Start: "18:00", End: "22:00"},
			}},
			"wed": {Closed: true},
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

func validRequest() *model.ReservationRequest {
	return &model.ReservationRequest{
		Date:         "2025-06-03",
		Time:         "19:00",
		PartySize:    4,
		Area:         model.AreaIndoor,
		ContactName:  "Anna Beck",
		ContactPhone: "+49 151 23456789",
	}
}

func errorFields(errs ValidationErrors) map[string]int {
	fields := make(map[string]int)
	for _, err := range errs {
		fields[err.Field]++
	}
	return fields
}

func TestValidateAcceptsValidRequest(t *testing.T) {
	v := NewReservationValidator(testLogger())
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	reservation, errs := v.Validate(validRequest(), testSchedule(t, true), now)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got: %v", errs)
	}
	if reservation.Status != model.ReservationStatusPending {
		t.Errorf("expected pending status, got %q", reservation.Status)
	}
	if reservation.ContactPhone != "+4915123456789" {
		t.Errorf("expected E.164 phone, got %q", reservation.ContactPhone)
	}
}

func TestValidateNormalizesFields(t *testing.T) {
	v := NewReservationValidator(testLogger())
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	req := validRequest()
	req.Time = "  19:00 "
	req.Area = " INNEN "
	req.ContactName = "  Anna   Beck  "

	reservation, errs := v.Validate(req, testSchedule(t, true), now)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got: %v", errs)
	}
	if reservation.Time != "19:00" {
		t.Errorf("expected canonical time, got %q", reservation.Time)
	}
	if reservation.Area != model.AreaIndoor {
		t.Errorf("expected lowercased area, got %q", reservation.Area)
	}
	if reservation.ContactName != "Anna Beck" {
		t.Errorf("expected collapsed whitespace in name, got %q", reservation.ContactName)
	}
}

func TestValidateSingleDefects(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		mutate    func(*model.ReservationRequest)
		wantField string
	}{
		{
			name:      "past date",
			mutate:    func(r *model.ReservationRequest) { r.Date = "2025-06-01" },
			wantField: "date",
		},
		{
			name:      "date beyond the advance window",
			mutate:    func(r *model.ReservationRequest) { r.Date = "2025-08-05" },
			wantField: "date",
		},
		{
			name:      "closed day",
			mutate:    func(r *model.ReservationRequest) { r.Date = "2025-06-04" },
			wantField: "date",
		},
		{
			name:      "malformed date",
			mutate:    func(r *model.ReservationRequest) { r.Date = "03.06.2025" },
			wantField: "date",
		},
		{
			name:      "off-grid time",
			mutate:    func(r *model.ReservationRequest) { r.Time = "19:10" },
			wantField: "time",
		},
		{
			name:      "time outside opening hours",
			mutate:    func(r *model.ReservationRequest) { r.Time = "09:00" },
			wantField: "time",
		},
		{
			name:      "malformed time",
			mutate:    func(r *model.ReservationRequest) { r.Time = "7pm" },
			wantField: "time",
		},
		{
			name:      "unknown area",
			mutate:    func(r *model.ReservationRequest) { r.Area = "garten" },
			wantField: "area",
		},
		{
			name:      "disabled area",
			mutate:    func(r *model.ReservationRequest) { r.Area = model.AreaOutdoor },
			wantField: "area",
		},
		{
			name:      "party size zero",
			mutate:    func(r *model.ReservationRequest) { r.PartySize = 0 },
			wantField: "party_size",
		},
		{
			name:      "party size above area capacity",
			mutate:    func(r *model.ReservationRequest) { r.PartySize = 45 },
			wantField: "party_size",
		},
		{
			name:      "name too short",
			mutate:    func(r *model.ReservationRequest) { r.ContactName = " A " },
			wantField: "contact_name",
		},
		{
			name:      "missing phone",
			mutate:    func(r *model.ReservationRequest) { r.ContactPhone = "" },
			wantField: "contact_phone",
		},
		{
			name:      "implausible phone",
			mutate:    func(r *model.ReservationRequest) { r.ContactPhone = "call me maybe" },
			wantField: "contact_phone",
		},
		{
			name:      "invalid email",
			mutate:    func(r *model.ReservationRequest) { r.ContactEmail = "not-an-email" },
			wantField: "contact_email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewReservationValidator(testLogger())
			req := validRequest()
			tt.mutate(req)

			reservation, errs := v.Validate(req, testSchedule(t, true), now)
			if reservation != nil {
				t.Fatal("expected no reservation on validation failure")
			}
			if len(errs) != 1 {
				t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), errs)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("expected error on %q, got %q: %s", tt.wantField, errs[0].Field, errs[0].Message)
			}
		})
	}
}

// Independent defects must each produce their own error so the booking
// form can show all of them at once.
func TestValidateCollectsAllErrors(t *testing.T) {
	v := NewReservationValidator(testLogger())
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	req := validRequest()
	req.Date = "2025-06-01"
	req.PartySize = 45
	req.ContactPhone = ""

	_, errs := v.Validate(req, testSchedule(t, true), now)
	if len(errs) != 3 {
		t.Fatalf("expected exactly 3 errors, got %d: %v", len(errs), errs)
	}

	fields := errorFields(errs)
	for _, want := range []string{"date", "party_size", "contact_phone"} {
		if fields[want] != 1 {
			t.Errorf("expected exactly one error on %q, got %d", want, fields[want])
		}
	}
}

func TestValidateLeadTimeExcludesSoonSlots(t *testing.T) {
	v := NewReservationValidator(testLogger())
	// 18:30 on the reservation day; with a 60-minute lead a 19:00 slot
	// is no longer bookable.
	now := time.Date(2025, 6, 3, 18, 30, 0, 0, time.UTC)

	req := validRequest()

	_, errs := v.Validate(req, testSchedule(t, true), now)
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].Field != "time" {
		t.Errorf("expected error on time, got %q", errs[0].Field)
	}
}

func TestValidateReservationsDisabled(t *testing.T) {
	v := NewReservationValidator(testLogger())
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	_, errs := v.Validate(validRequest(), testSchedule(t, false), now)
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].Field != "date" {
		t.Errorf("expected error on date, got %q", errs[0].Field)
	}
}

func TestValidateEmptyRequest(t *testing.T) {
	v := NewReservationValidator(testLogger())
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	_, errs := v.Validate(&model.ReservationRequest{}, testSchedule(t, true), now)

	fields := errorFields(errs)
	for _, want := range []string{"date", "time", "area", "party_size", "contact_name", "contact_phone"} {
		if fields[want] == 0 {
			t.Errorf("expected an error on %q, got none: %v", want, errs)
		}
	}
}
