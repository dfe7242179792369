package ledger

import "errors"

// Kind classifies why an operation was rejected. Every rejection happens
// before any state is written, so a non-nil error always means no change.
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindAuthorization
	KindConflict
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func IsValidation(err error) bool    { return isKind(err, KindValidation) }
func IsNotFound(err error) bool      { return isKind(err, KindNotFound) }
func IsAuthorization(err error) bool { return isKind(err, KindAuthorization) }
func IsConflict(err error) bool      { return isKind(err, KindConflict) }

func isKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func validation(msg string) error    { return &Error{Kind: KindValidation, Msg: msg} }
func notFound(msg string) error      { return &Error{Kind: KindNotFound, Msg: msg} }
func authorization(msg string) error { return &Error{Kind: KindAuthorization, Msg: msg} }
func conflict(msg string) error      { return &Error{Kind: KindConflict, Msg: msg} }
