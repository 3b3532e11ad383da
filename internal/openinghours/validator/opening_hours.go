package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"tavola/pkg/logger"
	"tavola/pkg/model"
	"tavola/pkg/schedule"
)

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

// OpeningHoursValidator checks admin-submitted schedule documents.
// Unlike the normalizer, which tolerates legacy junk on the read path,
// admin writes are rejected outright so bad config never reaches storage.
type OpeningHoursValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewOpeningHoursValidator(log *logger.Logger) *OpeningHoursValidator {
	v := validator.New()
	log.Info("Opening hours validator initialized successfully")
	return &OpeningHoursValidator{
		validate: v,
		logger:   log,
	}
}

func (v *OpeningHoursValidator) Validate(doc *model.OpeningHours) error {
	var errs ValidationErrors

	if err := v.validate.Struct(doc); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			errs = append(errs, translate(validationErrs)...)
		} else {
			return err
		}
	}

	for key := range doc.Week {
		if !isWeekdayKey(key) {
			errs = append(errs, ValidationError{
				Field:   "week." + key,
				Message: "weekday key must be one of mon,tue,wed,thu,fri,sat,sun",
			})
			continue
		}
		errs = append(errs, validateDay("week."+key, doc.Week[key])...)
	}

	for date := range doc.Exceptions {
		if _, err := time.Parse(schedule.DateLayout, date); err != nil {
			errs = append(errs, ValidationError{
				Field:   "exceptions." + date,
				Message: "exception key must be a YYYY-MM-DD date",
			})
			continue
		}
		errs = append(errs, validateDay("exceptions."+date, doc.Exceptions[date])...)
	}

	for key := range doc.Areas {
		if key != model.AreaIndoor && key != model.AreaOutdoor {
			errs = append(errs, ValidationError{
				Field:   "areas." + key,
				Message: fmt.Sprintf("area key must be %q or %q", model.AreaIndoor, model.AreaOutdoor),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateDay(field string, day model.DaySchedule) ValidationErrors {
	if day.Closed {
		return nil
	}

	var errs ValidationErrors
	prevEnd := -1
	for i, interval := range day.Intervals {
		start, startErr := parseClock(interval.Start)
		end, endErr := parseClock(interval.End)

		if startErr != nil || endErr != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.intervals[%d]", field, i),
				Message: "start and end must be HH:MM 24-hour times",
			})
			continue
		}
		if start >= end {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.intervals[%d]", field, i),
				Message: "interval start must be before its end",
			})
			continue
		}
		if start < prevEnd {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.intervals[%d]", field, i),
				Message: "intervals must be ordered and non-overlapping",
			})
		}
		prevEnd = end
	}
	return errs
}

func isWeekdayKey(key string) bool {
	for _, k := range schedule.WeekdayKeys {
		if k == key {
			return true
		}
	}
	return false
}

func parseClock(clock string) (int, error) {
	t, err := time.Parse(schedule.TimeLayout, clock)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors
	for _, err := range errs {
		message := err.Error()
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "timezone":
			message = fmt.Sprintf("%s must be a valid IANA timezone name", err.Field())
		}
		out = append(out, ValidationError{Field: err.Field(), Message: message})
	}
	return out
}
