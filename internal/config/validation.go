package config

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return true
			}
			d, err := time.ParseDuration(s)
			return err == nil && d >= 0
		})
	})
	return validate
}

// Validate checks cfg and reports every problem in one ConfigurationError.
func Validate(cfg Config) error {
	err := getValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ConfigurationError{FilePath: "config", ErrorType: "validation", Message: err.Error()}
	}

	ce := &ConfigurationError{
		FilePath:  "config",
		ErrorType: "validation",
		Message:   fmt.Sprintf("%d invalid setting(s)", len(fieldErrs)),
	}
	for _, fe := range fieldErrs {
		ce.Details = append(ce.Details, describeFieldError(fe))
	}
	if hasTag(fieldErrs, "required") {
		ce.Suggestions = append(ce.Suggestions,
			"set clientID and clientSecret in the config file or via WITHINGS_CLIENT_ID / WITHINGS_CLIENT_SECRET")
	}
	return ce
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "required_with":
		return fmt.Sprintf("%s must be set together with %s", fe.Namespace(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", fe.Namespace(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Namespace(), fe.Param(), fe.Value())
	case "duration":
		return fmt.Sprintf("%s must be a duration such as 1s or 500ms, got %q", fe.Namespace(), fe.Value())
	case "min", "max":
		return fmt.Sprintf("%s must be %s %s, got %v", fe.Namespace(), map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag())
	}
}

func hasTag(errs validator.ValidationErrors, tag string) bool {
	for _, fe := range errs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}
