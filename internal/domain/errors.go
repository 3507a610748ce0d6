package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable marks failures of the underlying store. It is
	// fatal during initialization.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrValidation indicates invalid caller input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound indicates a missing user or task, or one owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrNotCompletable is returned when a task cannot be completed.
	ErrNotCompletable = errors.New("task not completable")

	// ErrUserNotFound is returned for unknown user ids.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrTaskNotFound is returned when the task is absent for the given owner.
	// It matches both ErrNotFound and ErrNotCompletable.
	ErrTaskNotFound = &taskNotFoundError{}
	// ErrAlreadyCompleted is returned when completing a task that is already done.
	ErrAlreadyCompleted = fmt.Errorf("task already completed: %w", ErrNotCompletable)
)

type taskNotFoundError struct{}

func (*taskNotFoundError) Error() string { return "task not found" }

func (*taskNotFoundError) Is(target error) bool {
	return target == ErrNotFound || target == ErrNotCompletable
}

// ValidationError wraps ErrValidation with a field level message.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
