package validation

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

// ConfigValidator provides a fluent interface for validating configuration values.
// It collects all validation errors rather than failing on the first one.
type ConfigValidator struct {
	errors []error
	name   string
}

// NewConfigValidator creates a new config validator with the given config name.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{
		name:   configName,
		errors: make([]error, 0),
	}
}

func (cv *ConfigValidator) add(field, format string, args ...any) {
	cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %s", cv.name, field, fmt.Sprintf(format, args...)))
}

// Range validates that value lies in [min, max].
func Range[T constraints.Ordered](cv *ConfigValidator, field string, value, min, max T) *ConfigValidator {
	if value < min || value > max {
		cv.add(field, "value %v is outside range [%v, %v]", value, min, max)
	}
	return cv
}

// Fraction validates that a float lies in [0, 1].
func (cv *ConfigValidator) Fraction(field string, value float64) *ConfigValidator {
	return Range(cv, field, value, 0.0, 1.0)
}

// Distinct validates that no value appears twice.
func (cv *ConfigValidator) Distinct(field string, values []string) *ConfigValidator {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			cv.add(field, "duplicate value %q", v)
			return cv
		}
		seen[v] = struct{}{}
	}
	return cv
}

// OneOf validates that a string field is one of the allowed values.
func (cv *ConfigValidator) OneOf(field, value string, allowed []string) *ConfigValidator {
	for _, a := range allowed {
		if value == a {
			return cv
		}
	}
	cv.add(field, "value %q must be one of %v", value, allowed)
	return cv
}

// Custom applies a custom validation function.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
	}
	return cv
}

// When conditionally applies validations if the condition is true.
func (cv *ConfigValidator) When(condition bool, validations func(*ConfigValidator)) *ConfigValidator {
	if condition {
		validations(cv)
	}
	return cv
}

// Validate returns every collected error joined, or nil.
func (cv *ConfigValidator) Validate() error {
	if len(cv.errors) == 0 {
		return nil
	}
	return errors.Join(cv.errors...)
}
