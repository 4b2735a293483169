package configtpl

import (
	"errors"
	"fmt"
)

// Kind classifies a build failure.
type Kind int

// Failure kinds.
const (
	KindCycle Kind = iota + 1
	KindRender
	KindParse
	KindShape
	KindDirective
)

// Sentinel errors matched with errors.Is against an *Error of the same kind.
var (
	ErrCycle     = errors.New("cycle")
	ErrRender    = errors.New("render error")
	ErrParse     = errors.New("parse error")
	ErrShape     = errors.New("shape error")
	ErrDirective = errors.New("directive error")
)

func (k Kind) String() string {
	switch k {
	case KindCycle:
		return "cycle"
	case KindRender:
		return "render"
	case KindParse:
		return "parse"
	case KindShape:
		return "shape"
	case KindDirective:
		return "directive"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindCycle:
		return ErrCycle
	case KindRender:
		return ErrRender
	case KindParse:
		return ErrParse
	case KindShape:
		return ErrShape
	case KindDirective:
		return ErrDirective
	default:
		return nil
	}
}

// Error is returned by every failed build. Locator names the source being
// processed, when there is one.
type Error struct {
	Kind    Kind
	Locator string
	Err     error
}

func (e *Error) Error() string {
	msg := "configtpl: " + e.Kind.String() + " error"
	if e.Locator != "" {
		msg += " in " + e.Locator
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func newError(kind Kind, locator string, err error) *Error {
	return &Error{Kind: kind, Locator: locator, Err: err}
}

// KindOf returns the kind of a build error, or zero when err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
