package service

import (
	"errors"
	"fmt"
	"strings"

	"backoffice/pkg/validator"
)

var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrInvoiceCancelled   = errors.New("invoice is cancelled")
	ErrProductInUse       = errors.New("product is referenced by existing sales")
	ErrProductExists      = errors.New("a product with this name already exists")
	ErrSequenceExhausted  = errors.New("no invoice numbers left for today")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError lists every problem found in a request. Nothing has been
// written when it is returned.
type ValidationError struct {
	Problems []string
}

func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// PersistenceError wraps a storage failure. The surrounding transaction has
// been rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// wrapPersistence leaves domain errors untouched and marks everything else as
// a storage failure of op.
func wrapPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var pe *PersistenceError
	switch {
	case errors.As(err, &ve), errors.As(err, &pe):
		return err
	case errors.Is(err, ErrInvoiceNotFound), errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrInvoiceCancelled), errors.Is(err, ErrProductInUse),
		errors.Is(err, ErrProductExists), errors.Is(err, ErrSequenceExhausted):
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// validate runs struct validation and converts failures into a ValidationError
func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return NewValidationError(validator.Messages(errs)...)
	}
	return nil
}
