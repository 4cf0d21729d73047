package utils

import "fmt"

// Common error wrapping patterns used throughout the codebase so messages
// read the same everywhere.

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(item string, err error) error {
	return fmt.Errorf("failed to parse %s: %w", item, err)
}

// WrapLoadError wraps an error with a "failed to load" message
func WrapLoadError(item string, err error) error {
	return fmt.Errorf("failed to load %s: %w", item, err)
}

// WrapConvertError wraps an error with a "failed to convert" message
func WrapConvertError(item string, err error) error {
	return fmt.Errorf("failed to convert %s: %w", item, err)
}

// WrapResolveError wraps an error with a "failed to resolve" message
func WrapResolveError(item string, err error) error {
	return fmt.Errorf("failed to resolve %s: %w", item, err)
}

// WrapProcessError wraps an error with a "failed to process" message
func WrapProcessError(item string, err error) error {
	return fmt.Errorf("failed to process %s: %w", item, err)
}
