package orchestrator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"mediagen/internal/domain"
)

var (
	phonePattern          = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	conversationIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("e164phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("conversation_id", func(fl validator.FieldLevel) bool {
			return conversationIDPattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// validateInput runs struct validation and converts failures into a
// domain.ValidationError.
func validateInput(in any) error {
	err := inputValidator().Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("orchestrator: validate input: %w", err)
	}
	out := &domain.ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, domain.FieldError{Field: fe.Field(), Reason: reason(fe)})
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "e164phone":
		return "must be an E.164 phone number (e.g. +15551234567)"
	case "conversation_id":
		return "must be 1-128 letters, digits, '-' or '_'"
	case "url":
		return "must be an absolute URL"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
