package service

import (
	"context"
	"strings"
	"time"

	openinghoursservice "tavola/internal/openinghours/service"
	"tavola/internal/reservations/repository"
	"tavola/pkg/config"
	apperrors "tavola/pkg/errors"
	"tavola/pkg/model"
	"tavola/pkg/schedule"
)

// Reasons for an empty slot list. "Outside window" is worth telling
// apart from a closed day so the booking UI can say why.
const (
	ReasonDateInPast    = "date_in_past"
	ReasonOutsideWindow = "outside_booking_window"
)

// Availability is the slot list for one date and area. Reason is set
// only when the list is empty because the date falls outside the
// bookable window.
type Availability struct {
	Date   string           `json:"date"`
	Area   string           `json:"area"`
	Slots  []model.TimeSlot `json:"slots"`
	Reason string           `json:"reason,omitempty"`
}

type AvailabilityService interface {
	// Slots returns the bookable start times for one date and area with
	// the remaining capacity per slot. Closed days, disabled areas and
	// dates outside the booking window all yield an empty list, not an
	// error; only malformed input is a client error.
	Slots(ctx context.Context, date, area string) (*Availability, error)
}

type availabilityService struct {
	schedules    openinghoursservice.OpeningHoursService
	reservations repository.ReservationRepository
	cfg          *config.Config

	now func() time.Time
}

func NewAvailabilityService(
	schedules openinghoursservice.OpeningHoursService,
	reservations repository.ReservationRepository,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		schedules:    schedules,
		reservations: reservations,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *availabilityService) Slots(ctx context.Context, date, area string) (*Availability, error) {
	area = strings.ToLower(strings.TrimSpace(area))
	if area != model.AreaIndoor && area != model.AreaOutdoor {
		return nil, apperrors.InvalidInput("area must be innen or aussen")
	}

	result := &Availability{Date: date, Area: area, Slots: []model.TimeSlot{}}

	normalized, _, err := s.schedules.Normalized(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()

	days, err := schedule.DaysUntil(date, normalized, now)
	if err != nil {
		return nil, apperrors.InvalidInput("date must be a YYYY-MM-DD calendar date")
	}
	switch {
	case days < 0:
		result.Reason = ReasonDateInPast
		return result, nil
	case days > normalized.Slot.MaxAdvanceDays:
		result.Reason = ReasonOutsideWindow
		return result, nil
	}

	slots, err := schedule.GenerateSlots(date, normalized, area, now)
	if err != nil {
		return nil, apperrors.InvalidInput("date must be a YYYY-MM-DD calendar date")
	}
	if len(slots) == 0 {
		return result, nil
	}

	totals, err := s.reservations.PartySizeTotals(ctx, date, area)
	if err != nil {
		s.cfg.Log.Error("Failed to aggregate reservations", "date", date, "area", area, "error", err)
		return nil, apperrors.Internal("Failed to compute availability", err)
	}

	capacity := normalized.AreaCapacity(area)
	for _, slot := range slots {
		remaining := capacity - totals[slot.Time]
		if remaining < 0 {
			remaining = 0
		}
		result.Slots = append(result.Slots, model.TimeSlot{Time: slot.Time, Remaining: remaining})
	}
	return result, nil
}
