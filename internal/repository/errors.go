package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Store errors. Callers match them with errors.Is.
var (
	// ErrNotFound is returned when the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
	// ErrTransient is returned when the store call itself failed (timeout, connection, driver).
	ErrTransient = errors.New("store unavailable")
	// ErrValidation is returned when required input is missing or malformed.
	ErrValidation = errors.New("validation failed")
)

// translate maps a gorm/driver error onto the store error taxonomy, keeping the cause.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict),
		errors.Is(err, ErrTransient), errors.Is(err, ErrValidation):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), isDuplicate(err):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
	}
}

// isDuplicate catches drivers that do not implement gorm's error translator.
func isDuplicate(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
