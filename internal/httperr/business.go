package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind groups business errors by how callers should react to them.
type Kind string

const (
	KindInvalid         Kind = "invalid"
	KindNotFound        Kind = "not_found"
	KindClosedDay       Kind = "closed_day"
	KindInvalidDuration Kind = "invalid_duration"
	KindSlotConflict    Kind = "slot_conflict"
	KindInvalidState    Kind = "invalid_state"
	KindForbidden       Kind = "forbidden"
)

type BusinessError struct {
	Kind Kind
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

// ErrBusiness builds a validation-type error identified by code.
func ErrBusiness(code string) error {
	return BusinessError{Kind: KindInvalid, Code: code}
}

func New(kind Kind, code string) error {
	return BusinessError{Kind: kind, Code: code}
}

func ErrNotFound(code string) error {
	return BusinessError{Kind: KindNotFound, Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func IsKind(err error, kind Kind) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

// IsExclusionConflict reports a PostgreSQL exclusion-constraint violation,
// raised when two confirmed appointments would overlap.
func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}
