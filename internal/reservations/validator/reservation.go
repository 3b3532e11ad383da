package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"tavola/pkg/logger"
	"tavola/pkg/model"
	"tavola/pkg/sanitizer"
	"tavola/pkg/schedule"
)

// Permissive on purpose: guests type phone numbers in every imaginable
// format, strict E.164 checking belongs to the sanitizer.
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()/\-.]{4,28}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	log.Info("Reservation validator initialized successfully")
	return &ReservationValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// Validate checks a prospective reservation against the normalized
// schedule. Every rule runs and every failure is collected, never a
// first-error short circuit, so the booking form can highlight all
// problems at once. On success the returned reservation carries trimmed
// strings, canonical date/time values and pending status.
//
// Slot membership is re-derived from the schedule at validation time
// rather than trusted from the client, which closes the race between a
// stale client-side slot list and the current lead-time cutoff.
func (v *ReservationValidator) Validate(req *model.ReservationRequest, n *schedule.NormalizedOpeningHours, now time.Time) (*model.Reservation, ValidationErrors) {
	var errs ValidationErrors

	name := sanitizer.NormalizeName(req.ContactName)
	email := sanitizer.NormalizeEmail(req.ContactEmail)
	phone := strings.TrimSpace(req.ContactPhone)
	notes := sanitizer.TrimAndNormalize(req.Notes)
	date := strings.TrimSpace(req.Date)
	clock := strings.TrimSpace(req.Time)
	area := strings.ToLower(strings.TrimSpace(req.Area))

	dateUsable := false
	switch {
	case date == "":
		errs = append(errs, ValidationError{Field: "date", Message: "date is required"})
	default:
		if _, err := time.Parse(schedule.DateLayout, date); err != nil {
			errs = append(errs, ValidationError{Field: "date", Message: "date must be a YYYY-MM-DD calendar date"})
		} else {
			dateUsable = true
		}
	}

	dayOpen := false
	if dateUsable {
		days, _ := schedule.DaysUntil(date, n, now)
		switch {
		case days < 0:
			errs = append(errs, ValidationError{Field: "date", Message: "date cannot be in the past"})
		case days > n.Slot.MaxAdvanceDays:
			errs = append(errs, ValidationError{
				Field:   "date",
				Message: fmt.Sprintf("reservations can be made at most %d days in advance", n.Slot.MaxAdvanceDays),
			})
		case !n.ReservationsEnabled:
			errs = append(errs, ValidationError{Field: "date", Message: "online reservations are currently disabled"})
		default:
			parsed, _ := time.Parse(schedule.DateLayout, date)
			if n.ResolveDay(date, parsed.Weekday()).Closed {
				errs = append(errs, ValidationError{Field: "date", Message: "the restaurant is closed on this date"})
			} else {
				dayOpen = true
			}
		}
	}

	areaCapacity := 0
	areaUsable := false
	switch {
	case area == "":
		errs = append(errs, ValidationError{Field: "area", Message: "area is required"})
	case area != model.AreaIndoor && area != model.AreaOutdoor:
		errs = append(errs, ValidationError{
			Field:   "area",
			Message: fmt.Sprintf("area must be %q or %q", model.AreaIndoor, model.AreaOutdoor),
		})
	case !n.AreaOpen(area):
		errs = append(errs, ValidationError{Field: "area", Message: "this area is not currently taking reservations"})
	default:
		areaCapacity = n.AreaCapacity(area)
		areaUsable = true
	}

	switch {
	case clock == "":
		errs = append(errs, ValidationError{Field: "time", Message: "time is required"})
	default:
		parsed, err := time.Parse(schedule.TimeLayout, clock)
		if err != nil {
			errs = append(errs, ValidationError{Field: "time", Message: "time must be a HH:MM 24-hour time"})
			break
		}
		clock = fmt.Sprintf("%02d:%02d", parsed.Hour(), parsed.Minute())

		// Membership only makes sense once date and area passed their own
		// checks; a closed day or disabled area already has its error.
		if dayOpen && areaUsable {
			ok, err := schedule.ContainsSlot(date, n, area, clock, now)
			if err == nil && !ok {
				errs = append(errs, ValidationError{Field: "time", Message: "time is not an available slot for this date"})
			}
		}
	}

	switch {
	case req.PartySize < 1:
		errs = append(errs, ValidationError{Field: "party_size", Message: "party_size must be at least 1"})
	case areaUsable && req.PartySize > areaCapacity:
		errs = append(errs, ValidationError{
			Field:   "party_size",
			Message: fmt.Sprintf("party_size exceeds the %s capacity of %d", area, areaCapacity),
		})
	}

	if utf8.RuneCountInString(name) < 2 {
		errs = append(errs, ValidationError{Field: "contact_name", Message: "contact_name must be at least 2 characters"})
	}

	switch {
	case phone == "":
		errs = append(errs, ValidationError{Field: "contact_phone", Message: "contact_phone is required"})
	case !phonePattern.MatchString(phone):
		errs = append(errs, ValidationError{Field: "contact_phone", Message: "contact_phone is not a plausible phone number"})
	}

	if email != "" {
		if err := v.validate.Var(email, "email"); err != nil {
			errs = append(errs, ValidationError{Field: "contact_email", Message: "contact_email must be a valid email address"})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	if normalized := sanitizer.NormalizePhone(phone); normalized != "" {
		phone = normalized
	}

	return &model.Reservation{
		Date:         date,
		Time:         clock,
		PartySize:    req.PartySize,
		Area:         area,
		ContactName:  name,
		ContactPhone: phone,
		ContactEmail: email,
		Notes:        notes,
		Status:       model.ReservationStatusPending,
	}, nil
}
