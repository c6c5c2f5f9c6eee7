package engine

import "fmt"

// Kind classifies engine errors per the error-handling taxonomy. Only
// Kind values raised to the caller carry semantic weight
// outside the engine; Backend/Serialization/DataTamper are swallowed
// internally and only ever escape via LastError.
type Kind int

const (
	KindInvalidArgument Kind = iota
	KindDisposed
	KindNotSupported
	KindCancelled
	KindBackend
	KindSerialization
	KindDataTamper
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindDisposed:
		return "Disposed"
	case KindNotSupported:
		return "NotSupported"
	case KindCancelled:
		return "Cancelled"
	case KindBackend:
		return "Backend"
	case KindSerialization:
		return "Serialization"
	case KindDataTamper:
		return "DataTamper"
	default:
		return "Unknown"
	}
}

// Error is the engine's error type. Its Kind determines whether it is
// raised to the caller (InvalidArgument, Disposed, NotSupported,
// Cancelled) or swallowed and recorded in LastError (Backend,
// Serialization, DataTamper).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("engine: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, engine.ErrDisposed) without caring about Op.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Sentinel errors for use with errors.Is; Op is irrelevant for matching
// because Error.Is compares only Kind.
var (
	ErrDisposed     = &Error{Kind: KindDisposed}
	ErrNotSupported = &Error{Kind: KindNotSupported}
	ErrCancelled    = &Error{Kind: KindCancelled}
	ErrInvalidArg   = &Error{Kind: KindInvalidArgument}
)

func invalidArg(op, msg string) error {
	return newErr(KindInvalidArgument, op, fmt.Errorf("%s", msg))
}

func notSupported(op, msg string) error {
	return newErr(KindNotSupported, op, fmt.Errorf("%s", msg))
}

func cancelled(op string, err error) error {
	return newErr(KindCancelled, op, err)
}
