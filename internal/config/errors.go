package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrSettingNotFound indicates no value exists at a setting path.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrTypeMismatch indicates a setting holds a value of the wrong type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed indicates a value outside its allowed range or format.
	ErrValidationFailed = errors.New("validation failed")

	// ErrInvalidPath indicates a malformed setting path, or one that crosses
	// a non-map value.
	ErrInvalidPath = errors.New("invalid setting path")

	// ErrNoFile indicates a file operation on a configuration without a settings file.
	ErrNoFile = errors.New("no settings file")
)

// ValidationError reports a setting whose value cannot be used.
type ValidationError struct {
	Path    string
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s, got %v", e.Path, e.Message, e.Value)
}

// Is matches ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// TypeError reports a setting of the wrong type.
type TypeError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s must be %s, got %s", e.Path, e.Expected, e.Actual)
}

// Is matches ErrTypeMismatch.
func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// withPathPrefix qualifies the path of a ValidationError in err's chain.
// Other errors are returned unchanged.
func withPathPrefix(err error, prefix string) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		verr.Path = prefix + verr.Path
	}
	return err
}
