package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"tavola/pkg/logger"
	"tavola/pkg/model"
	"tavola/pkg/sanitizer"
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

type ContactValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewContactValidator(log *logger.Logger) *ContactValidator {
	log.Info("Contact validator initialized successfully")
	return &ContactValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// Validate sanitizes the submission in place and checks it. The message
// body keeps its internal line breaks, only the single-line fields get
// whitespace collapsed.
func (v *ContactValidator) Validate(message *model.ContactMessage) error {
	message.ID = ""
	message.Read = false
	message.Name = sanitizer.NormalizeName(message.Name)
	message.Email = sanitizer.NormalizeEmail(message.Email)
	message.Subject = sanitizer.TrimAndNormalize(message.Subject)
	message.Message = strings.TrimSpace(message.Message)
	if normalized := sanitizer.NormalizePhone(message.Phone); normalized != "" {
		message.Phone = normalized
	} else {
		message.Phone = strings.TrimSpace(message.Phone)
	}

	if err := v.validate.Struct(message); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors
	for _, err := range errs {
		message := err.Error()
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		}
		out = append(out, ValidationError{Field: err.Field(), Message: message})
	}
	return out
}
