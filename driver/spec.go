package driver

import (
	"strings"

	"github.com/nihei9/ll1/grammar/symbol"
	spec "github.com/nihei9/ll1/spec/grammar"
)

// Grammar is the read-only view of a predictive parsing table. Terminals and
// non-terminals are addressed by their numbers; stack entries are raw symbol values.
type Grammar interface {
	// StartSymbol returns the raw value of the start symbol.
	StartSymbol() int

	// EOF returns the terminal number of the end of input.
	EOF() int

	// TerminalCount returns the number of terminal numbers including the nil and EOF ones.
	TerminalCount() int

	// Expansion returns the number of the production to expand when the non-terminal is on the
	// top of the stack and the terminal is the lookahead. It returns 0 when the cell is empty.
	Expansion(nonTerminal int, terminal int) int

	// DefaultExpansion returns the number of the nullable alternative of the non-terminal, or
	// 0 when it has none.
	DefaultExpansion(nonTerminal int) int

	// LHS returns the raw value of the left-hand side of the production.
	LHS(prod int) int

	// Alternative returns the raw values of the right-hand side of the production.
	Alternative(prod int) []int

	// Follows reports whether the terminal belongs to FOLLOW of the non-terminal.
	Follows(nonTerminal int, terminal int) bool

	// Terminal returns the name of the terminal.
	Terminal(terminal int) string

	// NonTerminal returns the name of the non-terminal.
	NonTerminal(nonTerminal int) string
}

var _ Grammar = &grammarImpl{}

type grammarImpl struct {
	g *spec.CompiledGrammar
}

func NewGrammar(g *spec.CompiledGrammar) *grammarImpl {
	return &grammarImpl{
		g: g,
	}
}

func (g *grammarImpl) Name() string {
	return g.g.Name
}

func (g *grammarImpl) StartSymbol() int {
	return g.g.Syntactic.StartSymbol
}

func (g *grammarImpl) EOF() int {
	return symbol.Symbol(g.g.Syntactic.EOFSymbol).Num().Int()
}

func (g *grammarImpl) TerminalCount() int {
	return g.g.Syntactic.TerminalCount
}

func (g *grammarImpl) Expansion(nonTerminal int, terminal int) int {
	if !g.inTable(nonTerminal, terminal) {
		return 0
	}
	return g.g.Syntactic.Expansion[nonTerminal*g.g.Syntactic.TerminalCount+terminal]
}

func (g *grammarImpl) DefaultExpansion(nonTerminal int) int {
	if nonTerminal <= 0 || nonTerminal >= len(g.g.Syntactic.DefaultExpansion) {
		return 0
	}
	return g.g.Syntactic.DefaultExpansion[nonTerminal]
}

func (g *grammarImpl) LHS(prod int) int {
	return g.g.Syntactic.LHSSymbols[prod]
}

func (g *grammarImpl) Alternative(prod int) []int {
	return g.g.Syntactic.Alternatives[prod]
}

func (g *grammarImpl) Follows(nonTerminal int, terminal int) bool {
	if !g.inTable(nonTerminal, terminal) {
		return false
	}
	return g.g.Syntactic.Follow[nonTerminal*g.g.Syntactic.TerminalCount+terminal] != 0
}

func (g *grammarImpl) Terminal(terminal int) string {
	if terminal <= 0 || terminal >= len(g.g.Syntactic.Terminals) {
		return ""
	}
	return g.g.Syntactic.Terminals[terminal]
}

func (g *grammarImpl) NonTerminal(nonTerminal int) string {
	if nonTerminal <= 0 || nonTerminal >= len(g.g.Syntactic.NonTerminals) {
		return ""
	}
	return g.g.Syntactic.NonTerminals[nonTerminal]
}

func (g *grammarImpl) inTable(nonTerminal int, terminal int) bool {
	return nonTerminal > 0 && nonTerminal < g.g.Syntactic.NonTerminalCount &&
		terminal > 0 && terminal < g.g.Syntactic.TerminalCount
}

func symbolText(gram Grammar, sym int) string {
	s := symbol.Symbol(sym)
	switch {
	case s.IsEpsilon():
		return symbol.SymbolNameEpsilon
	case s.IsTerminal():
		return gram.Terminal(s.Num().Int())
	case s.IsNonTerminal():
		return gram.NonTerminal(s.Num().Int())
	}
	return s.String()
}

// productionText renders a production as `LHS -> X Y`.
func productionText(gram Grammar, prod int) string {
	var b strings.Builder
	b.WriteString(symbolText(gram, gram.LHS(prod)))
	b.WriteString(" ->")
	for _, sym := range gram.Alternative(prod) {
		b.WriteString(" ")
		b.WriteString(symbolText(gram, sym))
	}
	return b.String()
}
