/*
Package grammar builds context-free grammars and analyzes them for predictive parsing.

A GrammarBuilder collects productions and validates them into an immutable Grammar.
Compile computes FIRST and FOLLOW, builds the LL(1) parsing table, and rejects grammars
having table conflicts.
*/
package grammar

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'll1.grammar'.
func tracer() tracing.Trace {
	return tracing.Select("ll1.grammar")
}
