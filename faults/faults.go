package faults

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindSandboxViolation
	KindToolExecution
	KindTransport
	KindAuth
	KindBudgetExceeded
	KindRateLimited
	KindIterationLimit
)

func (k Kind) String() string {
	switch k {
	case KindSandboxViolation:
		return "sandbox violation"
	case KindToolExecution:
		return "tool execution"
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindBudgetExceeded:
		return "budget exceeded"
	case KindRateLimited:
		return "rate limited"
	case KindIterationLimit:
		return "iteration limit"
	}
	return "unknown"
}

// Retryable reports whether failures of this kind are transient.
// Auth and budget failures never are, retrying cannot fix them.
func (k Kind) Retryable() bool {
	return k == KindTransport || k == KindRateLimited
}

var ErrRetryable = errors.New("retryable")

type Error struct {
	Kind Kind
	Err  error
}

var _ error = new(Error)

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	if kind.Retryable() {
		err = errors.Join(err, ErrRetryable)
	}
	return &Error{
		Kind: kind,
		Err:  err,
	}
}

func New(kind Kind, format string, args ...any) error {
	return Wrap(kind, fmt.Errorf(format, args...))
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsRetryable(err error) bool {
	return errors.Is(err, ErrRetryable)
}
