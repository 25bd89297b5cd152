// Released under an MIT license. See LICENSE.

package core

import (
	"sync"

	"github.com/michaelmacinnis/mu/internal/engine/exception"
	"github.com/michaelmacinnis/mu/internal/type/hash"
	"github.com/michaelmacinnis/mu/internal/type/tag"
	"github.com/michaelmacinnis/mu/internal/type/types"
)

type namespace struct {
	sync.RWMutex
	name    string
	static  bool
	symbols *hash.T
}

func (n *namespace) sealed() bool {
	n.RLock()
	defer n.RUnlock()

	return n.static
}

type namespaces struct {
	sync.RWMutex
	names map[string]int
	table []*namespace
}

func newNamespaces() *namespaces {
	return &namespaces{names: map[string]int{}}
}

func (ns *namespaces) each(fn func(*namespace)) {
	ns.RLock()
	table := append([]*namespace(nil), ns.table...)
	ns.RUnlock()

	for _, n := range table {
		fn(n)
	}
}

func (ns *namespaces) get(index int) (*namespace, bool) {
	ns.RLock()
	defer ns.RUnlock()

	if index < 0 || index >= len(ns.table) {
		return nil, false
	}

	return ns.table[index], true
}

func (ns *namespaces) seal(index int) {
	if n, ok := ns.get(index); ok {
		n.Lock()
		n.static = true
		n.Unlock()
	}
}

// MakeNamespace creates a namespace called name. Names are unique.
func (e *Env) MakeNamespace(name string) (tag.T, error) {
	e.namespaces.Lock()
	defer e.namespaces.Unlock()

	if _, ok := e.namespaces.names[name]; ok {
		s, err := e.MakeString(name)
		if err != nil {
			return tag.Nil, err
		}

		return tag.Nil, exception.New(s, exception.Type, "mu:make-namespace")
	}

	index := len(e.namespaces.table)

	e.namespaces.names[name] = index
	e.namespaces.table = append(e.namespaces.table, &namespace{
		name:    name,
		symbols: hash.New(),
	})

	e.log.Debug("namespace created", "name", name, "index", index)

	return tag.Namespace(index), nil
}

// FindNamespace returns the namespace called name.
func (e *Env) FindNamespace(name string) (tag.T, bool) {
	e.namespaces.RLock()
	defer e.namespaces.RUnlock()

	index, ok := e.namespaces.names[name]
	if !ok {
		return tag.Nil, false
	}

	return tag.Namespace(index), true
}

// FindSymbol returns the symbol called name in ns.
func (e *Env) FindSymbol(ns tag.T, name string) (tag.T, bool) {
	if ns == e.keywordNS {
		if kw, ok := tag.Keyword(name); ok {
			return kw, true
		}

		return tag.Nil, false
	}

	n, ok := e.lookup(ns)
	if !ok {
		return tag.Nil, false
	}

	return n.symbols.Get(name)
}

// Intern returns the symbol called name in ns, creating it bound to value
// if it does not exist. An existing unbound symbol is bound to value.
// Sealed namespaces reject new names.
func (e *Env) Intern(ns tag.T, name string, value tag.T) (tag.T, error) {
	if ns == e.keywordNS {
		kw, ok := tag.Keyword(name)
		if !ok {
			return tag.Nil, e.nameError(name, exception.Syntax, "mu:intern")
		}

		return kw, nil
	}

	n, ok := e.lookup(ns)
	if !ok {
		return tag.Nil, exception.New(ns, exception.Type, "mu:intern")
	}

	sym, created, err := n.symbols.SetIfAbsent(name, func() (tag.T, error) {
		if n.sealed() {
			return tag.Nil, e.nameError(name, exception.Namespace, "mu:intern")
		}

		s, err := e.MakeString(name)
		if err != nil {
			return tag.Nil, err
		}

		return e.evict(tag.SymbolKind, []tag.T{ns, s, value}, nil)
	})
	if err != nil {
		return tag.Nil, err
	}

	if !created && value != tag.Unbound && !e.IsBound(sym) {
		e.bind(sym, value)
	}

	return sym, nil
}

// NamespaceName returns the name of ns.
func (e *Env) NamespaceName(ns tag.T) string {
	n, ok := e.lookup(ns)
	if !ok {
		return ""
	}

	return n.name
}

// NamespaceSymbols returns every symbol in ns, in name order.
func (e *Env) NamespaceSymbols(ns tag.T) []tag.T {
	n, ok := e.lookup(ns)
	if !ok {
		return nil
	}

	symbols := make([]tag.T, 0, n.symbols.Size())
	n.symbols.Each(func(_ string, sym tag.T) {
		symbols = append(symbols, sym)
	})

	return symbols
}

// Unintern removes the symbol called name from ns and returns it.
// It returns nil if there is no such symbol. Sealed namespaces are unchanged.
func (e *Env) Unintern(ns tag.T, name string) (tag.T, error) {
	n, ok := e.lookup(ns)
	if !ok || ns == e.keywordNS {
		return tag.Nil, exception.New(ns, exception.Type, "mu:unintern")
	}

	if n.sealed() {
		return tag.Nil, e.nameError(name, exception.Namespace, "mu:unintern")
	}

	sym, ok := n.symbols.Get(name)
	if !ok || !n.symbols.Del(name) {
		return tag.Nil, nil
	}

	e.log.Debug("symbol uninterned", "namespace", n.name, "name", name)

	return sym, nil
}

// Resolve maps a name read from source to a symbol. An unqualified name is
// found in the null namespace, then among the builtins, and is otherwise
// interned unbound in the null namespace. A qualified name must have an
// existing namespace.
func (e *Env) Resolve(qualifier, name string) (tag.T, error) {
	if qualifier == "" {
		if sym, ok := e.FindSymbol(e.nullNS, name); ok {
			return sym, nil
		}

		if sym, ok := e.FindSymbol(e.muNS, name); ok {
			return sym, nil
		}

		return e.Intern(e.nullNS, name, tag.Unbound)
	}

	ns, ok := e.FindNamespace(qualifier)
	if !ok {
		return tag.Nil, e.nameError(qualifier, exception.Namespace, "mu:read")
	}

	return e.Intern(ns, name, tag.Unbound)
}

func (e *Env) lookup(ns tag.T) (*namespace, bool) {
	if types.Of(ns) != types.Namespace {
		return nil, false
	}

	return e.namespaces.get(ns.NamespaceIndex())
}

func (e *Env) nameError(name string, c exception.Condition, source string) error {
	s, err := e.MakeString(name)
	if err != nil {
		return err
	}

	return exception.New(s, c, source)
}

func namespaceMake(e *Env, fr *Frame) error {
	if err := e.check("mu:make-namespace", fr, types.String); err != nil {
		return err
	}

	ns, err := e.MakeNamespace(e.StringOf(fr.Argv[0]))
	fr.Value = ns

	return err
}

func namespaceFind(e *Env, fr *Frame) error {
	if err := e.check("mu:find-namespace", fr, types.String); err != nil {
		return err
	}

	ns, ok := e.FindNamespace(e.StringOf(fr.Argv[0]))
	if !ok {
		ns = tag.Nil
	}

	fr.Value = ns

	return nil
}

func namespaceName(e *Env, fr *Frame) error {
	if err := e.check("mu:namespace-name", fr, types.Namespace); err != nil {
		return err
	}

	if _, ok := e.lookup(fr.Argv[0]); !ok {
		return exception.New(fr.Argv[0], exception.Namespace, "mu:namespace-name")
	}

	s, err := e.MakeString(e.NamespaceName(fr.Argv[0]))
	fr.Value = s

	return err
}

func namespaceSymbols(e *Env, fr *Frame) error {
	if err := e.check("mu:namespace-symbols", fr, types.Namespace); err != nil {
		return err
	}

	l, err := e.List(e.NamespaceSymbols(fr.Argv[0])...)
	fr.Value = l

	return err
}

func namespaceIntern(e *Env, fr *Frame) error {
	if err := e.check("mu:intern", fr, types.Namespace, types.String, types.Any); err != nil {
		return err
	}

	sym, err := e.Intern(fr.Argv[0], e.StringOf(fr.Argv[1]), fr.Argv[2])
	fr.Value = sym

	return err
}

func namespaceUnintern(e *Env, fr *Frame) error {
	if err := e.check("mu:unintern", fr, types.Namespace, types.String); err != nil {
		return err
	}

	sym, err := e.Unintern(fr.Argv[0], e.StringOf(fr.Argv[1]))
	fr.Value = sym

	return err
}

func namespaceFindSymbol(e *Env, fr *Frame) error {
	if err := e.check("mu:find", fr, types.Namespace, types.String); err != nil {
		return err
	}

	sym, ok := e.FindSymbol(fr.Argv[0], e.StringOf(fr.Argv[1]))
	if !ok {
		sym = tag.Nil
	}

	fr.Value = sym

	return nil
}
