package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrApplicationsClosed = errors.New("applications closed")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrDependencyFailure  = errors.New("dependency failure")
	ErrInvalidInput       = errors.New("invalid input")
)

var domainErrors = []error{
	ErrNotFound,
	ErrUnauthorized,
	ErrApplicationsClosed,
	ErrInvalidTransition,
	ErrDependencyFailure,
	ErrInvalidInput,
}

// classify leaves engine error kinds untouched and wraps anything else, which can
// only have come from the store, as ErrDependencyFailure.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range domainErrors {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrDependencyFailure, err)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
