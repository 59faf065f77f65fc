package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserAlreadyExists   = errors.New("a user with this email address already exists")
	ErrRecordNotFound      = errors.New("record not found")
	ErrEditConflict        = errors.New("edit conflict")
	ErrDuplicateRecord     = errors.New("record already exists")
	ErrRecordInUse         = errors.New("record is referenced by other records")
	ErrInvalidImage        = errors.New("upload a valid image, the file you uploaded was either not an image or a corrupted image")
	ErrImageTooLarge       = errors.New("image file is too large")
	ErrEmptyOrder          = errors.New("an order must contain at least one ticket")
	ErrSessionNotFound     = errors.New("movie session does not exist")
	ErrRowOutOfRange       = errors.New("row number must be in available range")
	ErrSeatOutOfRange      = errors.New("seat number must be in available range")
	ErrTicketAlreadyExists = errors.New("this ticket already exists")
)

// ReferenceError reports a foreign key that points to a missing record.
type ReferenceError struct {
	Field string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s references a record that does not exist", e.Field)
}

// TicketError describes why a single ticket of an order was rejected.
// Field is empty when the ticket as a whole is at fault.
type TicketError struct {
	Index int
	Field string
	Err   error
}

func (e *TicketError) Error() string {
	return fmt.Sprintf("ticket %d: %s", e.Index, e.Err)
}

func (e *TicketError) Unwrap() error {
	return e.Err
}

// Path returns the location of the offending value inside an order request,
// e.g. "tickets[2].seat".
func (e *TicketError) Path() string {
	path := fmt.Sprintf("tickets[%d]", e.Index)
	if e.Field != "" {
		path += "." + e.Field
	}

	return path
}

type TicketErrors []*TicketError

func (e TicketErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}

	return strings.Join(msgs, "; ")
}

func (e TicketErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}

	return errs
}
