package errs

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Wrap prefixes err with msg and keeps it reachable through errors.Is/As.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted prefix.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// WithStack records the current stack on err. Call it where a failure first
// leaves a third-party boundary (transport, pdf parser, database); later
// wrapping keeps the recorded stack and a second call is a no-op.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := stackOf(err); ok {
		return err
	}
	return &StackError{err: err, stack: debug.Stack()}
}

// StackError carries the stack captured by WithStack.
type StackError struct {
	err   error
	stack []byte
}

func (e *StackError) Error() string { return e.err.Error() }
func (e *StackError) Unwrap() error { return e.err }
func (e *StackError) Stack() []byte { return e.stack }

func stackOf(err error) (*StackError, bool) {
	var se *StackError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

type loggable struct{ err error }

// Loggable renders err for slog as a group of message, unwrap chain and, when
// WithStack was called somewhere below, the captured stack:
//
//	slog.Any("err", errs.Loggable(err))
func Loggable(err error) slog.LogValuer { return loggable{err: err} }

func (l loggable) LogValue() slog.Value {
	if l.err == nil {
		return slog.GroupValue()
	}

	attrs := []slog.Attr{
		slog.String("message", l.err.Error()),
		slog.Any("chain", ErrorChainStrings(l.err)),
	}
	if se, ok := stackOf(l.err); ok {
		attrs = append(attrs, slog.String("stack", string(se.Stack())))
	}
	return slog.GroupValue(attrs...)
}

// ErrorChainStrings lists err and each single-unwrap parent, outermost first.
func ErrorChainStrings(err error) []string {
	if err == nil {
		return nil
	}

	out := make([]string, 0, 8)
	for e := err; e != nil; e = errors.Unwrap(e) {
		out = append(out, e.Error())
	}
	return out
}

// Join aggregates the non-nil errors under msg. It returns nil when every
// error is nil and the single error (wrapped) when only one remains.
func Join(msg string, errList ...error) error {
	kept := make([]error, 0, len(errList))
	for _, err := range errList {
		if err != nil {
			kept = append(kept, err)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return Wrap(kept[0], msg)
	default:
		return Wrap(errors.Join(kept...), msg)
	}
}
