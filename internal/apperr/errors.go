package apperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Kind identifies a class of domain error. The HTTP layer maps kinds to status
// codes; queue handlers use them to decide between ack and DLQ.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindDuplicate
	KindTooLarge
	KindAIResponseMalformed
	KindAIServiceUnavailable
)

// Error is the domain error type carried across service boundaries.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports missing or malformed caller input.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent entity, e.g. "proposal" or "rfp".
func NotFound(entity string) error {
	return &Error{Kind: KindNotFound, Msg: entity + " not found"}
}

// Duplicate reports a unique-constraint conflict.
func Duplicate(format string, args ...any) error {
	return &Error{Kind: KindDuplicate, Msg: fmt.Sprintf(format, args...)}
}

// TooLarge reports a payload over the accepted size limit.
func TooLarge(format string, args ...any) error {
	return &Error{Kind: KindTooLarge, Msg: fmt.Sprintf(format, args...)}
}

// AIMalformed reports upstream model output that could not be parsed into the
// task schema. The raw output is never coerced into partial data.
func AIMalformed(msg string, err error) error {
	return &Error{Kind: KindAIResponseMalformed, Msg: msg, Err: err}
}

// AIUnavailable reports a transport-level failure talking to the model API.
func AIUnavailable(msg string, err error) error {
	return &Error{Kind: KindAIServiceUnavailable, Msg: msg, Err: err}
}

// KindOf extracts the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsValidation(err error) bool    { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool      { return KindOf(err) == KindNotFound }
func IsDuplicate(err error) bool     { return KindOf(err) == KindDuplicate }
func IsTooLarge(err error) bool      { return KindOf(err) == KindTooLarge }
func IsAIMalformed(err error) bool   { return KindOf(err) == KindAIResponseMalformed }
func IsAIUnavailable(err error) bool { return KindOf(err) == KindAIServiceUnavailable }

// FromDB translates pgx errors into domain errors. pgx.ErrNoRows becomes a
// NotFound for the given entity, unique violations become Duplicate.
func FromDB(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound(entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Duplicate("%s already exists", entity)
	}
	return err
}
