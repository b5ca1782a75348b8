package apperr

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type Kind string

const (
	KindNetwork          Kind = "NETWORK"
	KindParse            Kind = "PARSE"
	KindEmptyResult      Kind = "EMPTY_RESULT"
	KindInsufficientData Kind = "INSUFFICIENT_DATA"
	KindInvalidInput     Kind = "INVALID_INPUT"
	KindStorage          Kind = "STORAGE"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
	Stack   []byte
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StackTrace() []byte {
	return e.Stack
}

func New(kind Kind, message string, err error) *Error {
	var stack []byte
	if err != nil {
		var stackErr *goerrors.Error
		if errors.As(err, &stackErr) {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

func Network(message string, err error) *Error {
	return New(KindNetwork, message, err)
}

func Parse(message string, err error) *Error {
	return New(KindParse, message, err)
}

func EmptyResult(message string) *Error {
	return New(KindEmptyResult, message, nil)
}

func InsufficientData(message string) *Error {
	return New(KindInsufficientData, message, nil)
}

func InvalidInput(message string, err error) *Error {
	return New(KindInvalidInput, message, err)
}

func Storage(message string, err error) *Error {
	return New(KindStorage, message, err)
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// StackOf returns the stack captured by the first *Error in err's chain,
// or nil when err carries none.
func StackOf(err error) []byte {
	var e *Error
	if errors.As(err, &e) {
		return e.Stack
	}
	return nil
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
