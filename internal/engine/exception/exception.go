// Released under an MIT license. See LICENSE.

// Package exception provides mu's condition values.
package exception

import (
	"errors"
	"fmt"

	"github.com/michaelmacinnis/mu/internal/type/tag"
)

// Condition classifies an exception.
type Condition uint8

// Conditions.
const (
	Arity Condition = iota
	Eof
	Error
	Except
	Exit
	Future
	Namespace
	Open
	Over
	Quasi
	Range
	Read
	SigInt
	Stream
	Syntax
	Syscall
	Type
	Unbound
	Under
	Write
	ZeroDivide
)

//nolint:gochecknoglobals
var (
	names = [...]string{
		Arity:      "arity",
		Eof:        "eof",
		Error:      "error",
		Except:     "except",
		Exit:       "exit",
		Future:     "future",
		Namespace:  "ns",
		Open:       "open",
		Over:       "over",
		Quasi:      "quasi",
		Range:      "range",
		Read:       "read",
		SigInt:     "sigint",
		Stream:     "stream",
		Syntax:     "syntax",
		Syscall:    "syscall",
		Type:       "type",
		Unbound:    "unbound",
		Under:      "under",
		Write:      "write",
		ZeroDivide: "div0",
	}

	keywords = map[tag.T]Condition{}
)

func init() {
	for c, name := range names {
		keywords[tag.MustKeyword(name)] = Condition(c)
	}
}

// FromKeyword returns the condition named by the keyword k.
func FromKeyword(k tag.T) (Condition, bool) {
	c, ok := keywords[k]

	return c, ok
}

// Keyword returns the keyword that names c.
func (c Condition) Keyword() tag.T {
	return tag.MustKeyword(names[c])
}

func (c Condition) String() string {
	return names[c]
}

// T (exception) is a raised condition. Source names the raising function.
type T struct {
	Object    tag.T
	Condition Condition
	Source    string
}

type exception = T

// New creates a new exception.
func New(object tag.T, c Condition, source string) *T {
	return &T{Object: object, Condition: c, Source: source}
}

// As returns the exception carried by err, if any.
func As(err error) (*T, bool) {
	var e *exception

	ok := errors.As(err, &e)

	return e, ok
}

func (e *exception) Error() string {
	return fmt.Sprintf("%s: :%s %#x", e.Source, e.Condition, uint64(e.Object))
}

// Is reports whether target is an exception with the same condition.
func (e *exception) Is(target error) bool {
	t, ok := target.(*exception)

	return ok && t.Condition == e.Condition
}
