package grammar

import mlspec "github.com/nihei9/maleeni/spec"

type CompiledGrammar struct {
	Name      string         `json:"name"`
	Lexical   *LexicalSpec   `json:"lexical"`
	Syntactic *SyntacticSpec `json:"syntactic"`
}

type Maleeni struct {
	Spec *mlspec.CompiledLexSpec `json:"spec"`

	// KindToTerminal maps a lexical kind ID to a terminal number. Kinds that don't
	// correspond to any terminal map to 0.
	KindToTerminal []int `json:"kind_to_terminal"`

	// Skip[kindID] is 1 when tokens of the kind are discarded before parsing.
	Skip []int `json:"skip"`
}

type LexicalSpec struct {
	Lexer   string   `json:"lexer"`
	Maleeni *Maleeni `json:"maleeni"`
}

// SyntacticSpec is a predictive parsing table. Symbols are stored as raw values of
// `symbol.Symbol`; terminals and non-terminals are additionally addressed by their
// numbers, which index Terminals and NonTerminals respectively.
type SyntacticSpec struct {
	Class            string   `json:"class"`
	Terminals        []string `json:"terminals"`
	TerminalCount    int      `json:"terminal_count"`
	NonTerminals     []string `json:"non_terminals"`
	NonTerminalCount int      `json:"non_terminal_count"`
	StartSymbol      int      `json:"start_symbol"`
	EOFSymbol        int      `json:"eof_symbol"`
	EpsilonSymbol    int      `json:"epsilon_symbol"`

	// Expansion[nonTerminalNum*TerminalCount+terminalNum] is a production number, or 0
	// when the cell is empty.
	Expansion []int `json:"expansion"`

	// DefaultExpansion[nonTerminalNum] is the number of the nullable alternative of the
	// non-terminal, or 0 when it has none.
	DefaultExpansion []int `json:"default_expansion"`

	// Follow[nonTerminalNum*TerminalCount+terminalNum] is 1 when the terminal belongs to
	// FOLLOW of the non-terminal.
	Follow []int `json:"follow"`

	// LHSSymbols and Alternatives are indexed by production numbers. Index 0 is unused.
	LHSSymbols   []int   `json:"lhs_symbols"`
	Alternatives [][]int `json:"alternatives"`
}
