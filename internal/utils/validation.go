package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Validator represents a validation function
type Validator[T any] func(T) error

// ValidatorChain allows chaining multiple validators
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a new validator chain
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Add adds a validator to the chain
func (vc *ValidatorChain[T]) Add(validator Validator[T]) *ValidatorChain[T] {
	vc.validators = append(vc.validators, validator)
	return vc
}

// Validate runs all validators in the chain
func (vc *ValidatorChain[T]) Validate(value T) error {
	for _, validator := range vc.validators {
		if err := validator(value); err != nil {
			return err
		}
	}
	return nil
}

// Common validation functions

// NotEmpty validates that a string is not empty or blank
func NotEmpty(field string) Validator[string] {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: "cannot be empty",
			}
		}
		return nil
	}
}

// HasPrefix validates that a string has a specific prefix
func HasPrefix(field, prefix string) Validator[string] {
	return func(value string) error {
		if !strings.HasPrefix(value, prefix) {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("must start with '%s'", prefix),
			}
		}
		return nil
	}
}

// MatchesRegex validates that a string matches a regex pattern
func MatchesRegex(field, pattern string) Validator[string] {
	regex := regexp.MustCompile(pattern)
	return func(value string) error {
		if !regex.MatchString(value) {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: fmt.Sprintf("must match pattern '%s'", pattern),
			}
		}
		return nil
	}
}

// ValidateEach validates each item in a slice using the provided validator
func ValidateEach[T any](field string, itemValidator Validator[T]) Validator[[]T] {
	return func(value []T) error {
		for i, item := range value {
			if err := itemValidator(item); err != nil {
				return ValidationError{
					Field:   fmt.Sprintf("%s[%d]", field, i),
					Value:   item,
					Message: err.Error(),
				}
			}
		}
		return nil
	}
}

// Custom validates using a custom function
func Custom[T any](field string, message string, validatorFunc func(T) bool) Validator[T] {
	return func(value T) error {
		if !validatorFunc(value) {
			return ValidationError{
				Field:   field,
				Value:   value,
				Message: message,
			}
		}
		return nil
	}
}

// Common validation patterns for specific use cases

var (
	tagNamePattern   = regexp.MustCompile(`^@?\\?[A-Za-z_]\w*([\\.][A-Za-z_]\w*)*$`)
	namespacedClass  = regexp.MustCompile(`^\\?[A-Za-z_]\w*(\\[A-Za-z_]\w*)*$`)
	importPathClass  = regexp.MustCompile(`^[\w.\-~/]+\.[A-Za-z_]\w*$`)
	identifierSyntax = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

// ValidateTagName validates an annotation tag such as @Route or ORM\Column
func ValidateTagName(field string) Validator[string] {
	return NewValidatorChain(
		NotEmpty(field),
		Custom(field, "is not a valid annotation tag", tagNamePattern.MatchString),
	).Validate
}

// ValidateClassName validates a namespaced class (App\Attribute\Route) or a
// Go type written as import/path.Type
func ValidateClassName(field string) Validator[string] {
	return NewValidatorChain(
		NotEmpty(field),
		Custom(field, "is neither a namespaced class nor import/path.Type", func(class string) bool {
			return namespacedClass.MatchString(class) || importPathClass.MatchString(class)
		}),
	).Validate
}

// ValidateParameterNames validates a list of constructor parameter names
func ValidateParameterNames(field string) Validator[[]string] {
	return ValidateEach(field, NewValidatorChain(
		NotEmpty(field),
		MatchesRegex(field, identifierSyntax.String()),
	).Validate)
}

// ValidateExtension validates a file extension such as .php
func ValidateExtension(field string) Validator[string] {
	return NewValidatorChain(
		HasPrefix(field, "."),
		MatchesRegex(field, `^\.\w+$`),
	).Validate
}
