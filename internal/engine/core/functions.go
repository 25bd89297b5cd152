// Released under an MIT license. See LICENSE.

package core

import "github.com/michaelmacinnis/mu/internal/type/tag"

// Native is a builtin function. Fn reads its arguments from the frame
// and leaves its result in the frame's Value.
type Native struct {
	Name  string
	Arity uint16
	Fn    func(*Env, *Frame) error
}

// Natives returns the names of the builtins in table order.
func (e *Env) Natives() []string {
	names := make([]string, len(e.natives))
	for i, n := range e.natives {
		names[i] = n.Name
	}

	return names
}

// nativeOffset returns the table offset recorded in a builtin's form.
func (e *Env) nativeOffset(fn tag.T) int {
	offset, _ := e.VectorRef(e.FunctionForm(fn), 2)

	return int(offset.Int())
}

// table lists every builtin. A builtin's form records its offset here.
func table() []Native {
	return []Native{
		// types
		{"eq", 2, typesEq},
		{"type-of", 1, typesTypeOf},
		{"view", 1, typesView},

		// conses
		{"append", 1, consAppend},
		{"car", 1, consCar},
		{"cdr", 1, consCdr},
		{"cons", 2, consCons},
		{"length", 1, consLength},
		{"nth", 2, consNth},
		{"nthcdr", 2, consNthcdr},

		// compiler and evaluator
		{"compile", 1, envCompile},
		{"%if", 3, envIf},
		{"apply", 2, envApply},
		{"eval", 1, envEval},
		{"fix", 2, envFix},

		// heap
		{"gc", 0, heapGC},
		{"heap-info", 0, heapInfo},
		{"heap-stat", 0, heapStat},
		{"heap-size", 1, heapSize},

		// futures
		{"defer", 2, futureDefer},
		{"detach", 2, futureDetach},
		{"poll", 1, futurePoll},
		{"force", 1, futureForce},

		// exceptions
		{"unwind-protect", 2, exceptionUnwindProtect},
		{"raise", 2, exceptionRaise},

		// frames
		{"%frame-ref", 2, frameRef},
		{"%frame-push", 1, framePush},
		{"%frame-pop", 1, framePop},
		{"%frame-stack", 0, frameStack},

		// fixnums
		{"add", 2, fixnumBinary("mu:add", add)},
		{"sub", 2, fixnumBinary("mu:sub", sub)},
		{"mul", 2, fixnumBinary("mu:mul", mul)},
		{"div", 2, fixnumDiv},
		{"less-than", 2, fixnumLessThan},
		{"ash", 2, fixnumBinary("mu:ash", ash)},
		{"logand", 2, fixnumBinary("mu:logand", logand)},
		{"logor", 2, fixnumBinary("mu:logor", logor)},
		{"lognot", 1, fixnumLognot},

		// floats
		{"fadd", 2, floatBinary("mu:fadd", func(a, b float32) float32 { return a + b })},
		{"fsub", 2, floatBinary("mu:fsub", func(a, b float32) float32 { return a - b })},
		{"fmul", 2, floatBinary("mu:fmul", func(a, b float32) float32 { return a * b })},
		{"fdiv", 2, floatDiv},
		{"fless-than", 2, floatLessThan},

		// namespaces
		{"make-namespace", 1, namespaceMake},
		{"find-namespace", 1, namespaceFind},
		{"namespace-name", 1, namespaceName},
		{"namespace-symbols", 1, namespaceSymbols},
		{"intern", 3, namespaceIntern},
		{"unintern", 2, namespaceUnintern},
		{"find", 2, namespaceFindSymbol},

		// symbols
		{"boundp", 1, symbolBoundp},
		{"make-symbol", 1, symbolMake},
		{"symbol-name", 1, symbolName},
		{"symbol-namespace", 1, symbolNamespace},
		{"symbol-value", 1, symbolValue},

		// vectors
		{"make-vector", 2, vectorMake},
		{"svref", 2, vectorRef},
		{"vector-length", 1, vectorLength},
		{"vector-type", 1, vectorType},

		// structs
		{"make-struct", 2, structMake},
		{"struct-type", 1, structType},
		{"struct-vec", 1, structVec},

		// streams
		{"open", 4, streamOpen},
		{"close", 1, streamClose},
		{"openp", 1, streamOpenp},
		{"flush", 1, streamFlush},
		{"get-string", 1, streamGetString},
		{"read-char", 3, streamReadChar},
		{"read-byte", 3, streamReadByte},
		{"unread-char", 2, streamUnreadChar},
		{"write-char", 2, streamWriteChar},
		{"write-byte", 2, streamWriteByte},
		{"read", 3, streamRead},
		{"write", 3, streamWrite},
	}
}
