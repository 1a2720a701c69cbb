// Package validation adapts go-playground/validator rules to record
// validators.
package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	records "github.com/goliatone/go-records"
)

// Default is the shared validate instance used when callers pass nil.
var Default = validator.New(validator.WithRequiredStructEnabled())

// Struct decodes the instance into T and runs the `validate` struct tags of
// T. Failed rules reject the instance; decode failures are errors.
func Struct[T any](validate *validator.Validate) records.Validator {
	if validate == nil {
		validate = Default
	}
	return func(_ context.Context, instance *records.Instance) (bool, error) {
		value, err := records.Decode[T](instance)
		if err != nil {
			return false, err
		}
		return accept(validate.Struct(value))
	}
}

// Var checks one attribute against tag, for example "required,email".
// A missing attribute is validated as nil.
func Var(validate *validator.Validate, key, tag string) records.Validator {
	if validate == nil {
		validate = Default
	}
	return func(_ context.Context, instance *records.Instance) (bool, error) {
		value, _ := instance.Get(key)
		return accept(validate.Var(value, tag))
	}
}

func accept(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	var failed validator.ValidationErrors
	if errors.As(err, &failed) {
		return false, nil
	}
	return false, fmt.Errorf("validation: %w", err)
}
