package repository

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrOverlap is returned when a write would leave two active bookings
	// overlapping at one location.
	ErrOverlap = errors.New("booking overlaps an active booking")
	// ErrStaleStatus is returned by conditional status writes whose expected
	// current status no longer matches.
	ErrStaleStatus = errors.New("booking status changed concurrently")
)

// DuplicateKeyError reports a violated uniqueness constraint. Storage drivers
// translate their native codes into it so services never branch on them.
type DuplicateKeyError struct {
	Constraint string
}

func (e *DuplicateKeyError) Error() string {
	if e.Constraint == "" {
		return "duplicate key"
	}
	return fmt.Sprintf("duplicate key violates %q", e.Constraint)
}

// Is lets errors.Is(err, ErrConflict) match duplicate keys as well.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrConflict
}

func IsDuplicateKey(err error) bool {
	var dk *DuplicateKeyError
	return errors.As(err, &dk)
}
