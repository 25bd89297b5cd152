// Released under an MIT license. See LICENSE.

package core

import (
	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

// Symbol images are [namespace, name, value]. Keywords are direct and
// evaluate to themselves.

// MakeSymbol creates a symbol that belongs to no namespace.
func (e *Env) MakeSymbol(name string, value tag.T) (tag.T, error) {
	s, err := e.MakeString(name)
	if err != nil {
		return tag.Nil, err
	}

	return e.evict(tag.SymbolKind, []tag.T{tag.Nil, s, value}, nil)
}

// IsBound returns true if the symbol s has a value.
func (e *Env) IsBound(s tag.T) bool {
	if s.Kind() != tag.SymbolKind {
		return true
	}

	return e.word(s, 2) != tag.Unbound
}

// SymbolName returns the name of the symbol or keyword s.
func (e *Env) SymbolName(s tag.T) string {
	if s.Kind() != tag.SymbolKind {
		return string(s.Text())
	}

	return e.StringOf(e.word(s, 1))
}

// SymbolNamespace returns the namespace of s, or nil for uninterned symbols.
func (e *Env) SymbolNamespace(s tag.T) tag.T {
	if s.Kind() != tag.SymbolKind {
		return e.keywordNS
	}

	return e.word(s, 0)
}

// SymbolValue returns the value of s. Keywords are their own value.
func (e *Env) SymbolValue(s tag.T) tag.T {
	if s.Kind() != tag.SymbolKind {
		return s
	}

	return e.word(s, 2)
}

func (e *Env) bind(s, value tag.T) {
	e.rewrite(s, e.word(s, 0), e.word(s, 1), value)
}

func symbolBoundp(e *Env, fr *Frame) error {
	if err := e.check("mu:boundp", fr, types.Symbol); err != nil {
		return err
	}

	fr.Value = boolean(e.IsBound(fr.Argv[0]))

	return nil
}

func symbolMake(e *Env, fr *Frame) error {
	if err := e.check("mu:make-symbol", fr, types.String); err != nil {
		return err
	}

	s, err := e.MakeSymbol(e.StringOf(fr.Argv[0]), tag.Unbound)
	fr.Value = s

	return err
}

func symbolName(e *Env, fr *Frame) error {
	if err := e.check("mu:symbol-name", fr, types.Symbol); err != nil {
		return err
	}

	s, err := e.MakeString(e.SymbolName(fr.Argv[0]))
	fr.Value = s

	return err
}

func symbolNamespace(e *Env, fr *Frame) error {
	if err := e.check("mu:symbol-namespace", fr, types.Symbol); err != nil {
		return err
	}

	fr.Value = e.SymbolNamespace(fr.Argv[0])

	return nil
}

func symbolValue(e *Env, fr *Frame) error {
	if err := e.check("mu:symbol-value", fr, types.Symbol); err != nil {
		return err
	}

	if !e.IsBound(fr.Argv[0]) {
		return exception.New(fr.Argv[0], exception.Unbound, "mu:symbol-value")
	}

	fr.Value = e.SymbolValue(fr.Argv[0])

	return nil
}
