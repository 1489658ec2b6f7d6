package sqlite

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicate is returned when a seeded id already exists.
var ErrDuplicate = errors.New("duplicate id")

// The driver reports constraint failures only through the message text.
func isForeignKeyViolation(err error) bool {
	return hasMessage(err, "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	return hasMessage(err, "UNIQUE constraint failed")
}

func hasMessage(err error, msg string) bool {
	return err != nil && strings.Contains(err.Error(), msg)
}

// insertError classifies a failed insert of the named entity.
func insertError(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("%s %s: %w", entity, id, ErrDuplicate)
	default:
		return fmt.Errorf("failed to create %s: %w", entity, err)
	}
}
