package symbol

import (
	"fmt"
	"sort"
)

// Kind is the closed set of symbol variants. Every consumer switches over all of them.
type Kind string

const (
	KindNil         = Kind("nil")
	KindNonTerminal = Kind("non-terminal")
	KindTerminal    = Kind("terminal")
	KindEpsilon     = Kind("epsilon")
	KindEOF         = Kind("eof")
)

func (k Kind) String() string {
	return string(k)
}

type SymbolNum uint16

func (n SymbolNum) Int() int {
	return int(n)
}

type Symbol uint16

func (s Symbol) String() string {
	var prefix string
	switch s.Kind() {
	case KindNonTerminal:
		prefix = "n"
	case KindTerminal:
		prefix = "t"
	case KindEOF:
		prefix = "e"
	case KindEpsilon:
		prefix = "ε"
	default:
		prefix = "?"
	}
	return fmt.Sprintf("%v%v", prefix, s.Num())
}

const (
	maskKindPart    = uint16(0x8000) // 1000 0000 0000 0000
	maskNonTerminal = uint16(0x0000) // 0000 0000 0000 0000
	maskTerminal    = uint16(0x8000) // 1000 0000 0000 0000

	maskMarkerPart = uint16(0x4000) // 0100 0000 0000 0000
	maskMarker     = uint16(0x4000) // 0100 0000 0000 0000

	maskNumberPart = uint16(0x3fff) // 0011 1111 1111 1111

	symbolNumEOF     = uint16(0x0001) // 0000 0000 0000 0001
	symbolNumEpsilon = uint16(0x0002) // 0000 0000 0000 0010

	SymbolNil     = Symbol(0)                                           // 0000 0000 0000 0000
	SymbolEOF     = Symbol(maskTerminal | maskMarker | symbolNumEOF)     // 1100 0000 0000 0001
	SymbolEpsilon = Symbol(maskTerminal | maskMarker | symbolNumEpsilon) // 1100 0000 0000 0010

	// The marker names cannot be written as terminals in the grammar notation.
	SymbolNameEOF     = "$"
	SymbolNameEpsilon = "ε"

	nonTerminalNumMin = SymbolNum(1)
	terminalNumMin    = SymbolNum(2) // The number 1 is used by the EOF symbol.
	symbolNumMax      = SymbolNum(0xffff) >> 2
)

func newSymbol(kind Kind, num SymbolNum) (Symbol, error) {
	if num > symbolNumMax {
		return SymbolNil, fmt.Errorf("a symbol number exceeds the limit; limit: %v, passed: %v", symbolNumMax, num)
	}

	var kindMask uint16
	switch kind {
	case KindNonTerminal:
		kindMask = maskNonTerminal
	case KindTerminal:
		kindMask = maskTerminal
	default:
		return SymbolNil, fmt.Errorf("only terminal and non-terminal symbols can be created; kind: %v", kind)
	}
	return Symbol(kindMask | uint16(num)), nil
}

// Kind reports which variant s is.
func (s Symbol) Kind() Kind {
	if s == SymbolNil {
		return KindNil
	}
	if uint16(s)&maskKindPart == maskNonTerminal {
		return KindNonTerminal
	}
	if uint16(s)&maskMarkerPart == 0 {
		return KindTerminal
	}
	switch uint16(s) & maskNumberPart {
	case symbolNumEOF:
		return KindEOF
	case symbolNumEpsilon:
		return KindEpsilon
	}
	return KindNil
}

// Num returns the number of s within its kind. Terminals and the EOF symbol share one
// numbering, so the number of a terminal or EOF is usable as a table column.
func (s Symbol) Num() SymbolNum {
	return SymbolNum(uint16(s) & maskNumberPart)
}

func (s Symbol) Byte() []byte {
	return []byte{byte(uint16(s) >> 8), byte(uint16(s) & 0x00ff)}
}

func (s Symbol) IsNil() bool {
	return s.Kind() == KindNil
}

func (s Symbol) IsNonTerminal() bool {
	return s.Kind() == KindNonTerminal
}

func (s Symbol) IsTerminal() bool {
	return s.Kind() == KindTerminal
}

func (s Symbol) IsEpsilon() bool {
	return s.Kind() == KindEpsilon
}

func (s Symbol) IsEOF() bool {
	return s.Kind() == KindEOF
}

// IsInput reports whether s can appear as a lookahead, that is, s is a terminal or EOF.
func (s Symbol) IsInput() bool {
	switch s.Kind() {
	case KindTerminal, KindEOF:
		return true
	}
	return false
}

type SymbolTable struct {
	text2Sym     map[string]Symbol
	sym2Text     map[Symbol]string
	nonTermTexts []string
	termTexts    []string
	nonTermNum   SymbolNum
	termNum      SymbolNum
}

type SymbolTableWriter struct {
	*SymbolTable
}

type SymbolTableReader struct {
	*SymbolTable
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		text2Sym: map[string]Symbol{
			SymbolNameEOF:     SymbolEOF,
			SymbolNameEpsilon: SymbolEpsilon,
		},
		sym2Text: map[Symbol]string{
			SymbolEOF:     SymbolNameEOF,
			SymbolEpsilon: SymbolNameEpsilon,
		},
		termTexts: []string{
			"",            // Nil
			SymbolNameEOF, // EOF
		},
		nonTermTexts: []string{
			"", // Nil
		},
		nonTermNum: nonTerminalNumMin,
		termNum:    terminalNumMin,
	}
}

func (t *SymbolTable) Writer() *SymbolTableWriter {
	return &SymbolTableWriter{
		SymbolTable: t,
	}
}

func (t *SymbolTable) Reader() *SymbolTableReader {
	return &SymbolTableReader{
		SymbolTable: t,
	}
}

// KindConflictError reports a text that is already registered as another kind of symbol.
type KindConflictError struct {
	Text       string
	Registered Kind
	Requested  Kind
}

func (e *KindConflictError) Error() string {
	return fmt.Sprintf("%v is already registered as a %v symbol; requested kind: %v", e.Text, e.Registered, e.Requested)
}

func (w *SymbolTableWriter) RegisterNonTerminalSymbol(text string) (Symbol, error) {
	return w.register(text, KindNonTerminal)
}

func (w *SymbolTableWriter) RegisterTerminalSymbol(text string) (Symbol, error) {
	return w.register(text, KindTerminal)
}

func (w *SymbolTableWriter) register(text string, kind Kind) (Symbol, error) {
	if text == "" {
		return SymbolNil, fmt.Errorf("a symbol text must be a non-empty string")
	}
	if sym, ok := w.text2Sym[text]; ok {
		if sym.Kind() != kind {
			return SymbolNil, &KindConflictError{
				Text:       text,
				Registered: sym.Kind(),
				Requested:  kind,
			}
		}
		return sym, nil
	}

	var sym Symbol
	var err error
	switch kind {
	case KindNonTerminal:
		sym, err = newSymbol(kind, w.nonTermNum)
		if err != nil {
			return SymbolNil, err
		}
		w.nonTermNum++
		w.nonTermTexts = append(w.nonTermTexts, text)
	case KindTerminal:
		sym, err = newSymbol(kind, w.termNum)
		if err != nil {
			return SymbolNil, err
		}
		w.termNum++
		w.termTexts = append(w.termTexts, text)
	default:
		return SymbolNil, fmt.Errorf("cannot register a %v symbol", kind)
	}
	w.text2Sym[text] = sym
	w.sym2Text[sym] = text
	return sym, nil
}

func (r *SymbolTableReader) ToSymbol(text string) (Symbol, bool) {
	if sym, ok := r.text2Sym[text]; ok {
		return sym, true
	}
	return SymbolNil, false
}

func (r *SymbolTableReader) ToText(sym Symbol) (string, bool) {
	text, ok := r.sym2Text[sym]
	return text, ok
}

// TerminalSymbols returns the user-defined terminals in registration order.
func (r *SymbolTableReader) TerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, r.termNum.Int()-terminalNumMin.Int())
	for sym := range r.sym2Text {
		if !sym.IsTerminal() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

// TerminalTexts returns the texts of terminals indexed by their numbers. Index 0 is
// empty and index 1 is the EOF symbol.
func (r *SymbolTableReader) TerminalTexts() []string {
	return r.termTexts
}

// NonTerminalSymbols returns the non-terminals in registration order.
func (r *SymbolTableReader) NonTerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, r.nonTermNum.Int()-nonTerminalNumMin.Int())
	for sym := range r.sym2Text {
		if !sym.IsNonTerminal() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

// NonTerminalTexts returns the texts of non-terminals indexed by their numbers. Index 0
// is empty.
func (r *SymbolTableReader) NonTerminalTexts() []string {
	return r.nonTermTexts
}

// TerminalCount returns the number of table columns: nil, EOF, and user terminals.
func (r *SymbolTableReader) TerminalCount() int {
	return r.termNum.Int()
}

// NonTerminalCount returns the number of table rows including the nil row.
func (r *SymbolTableReader) NonTerminalCount() int {
	return r.nonTermNum.Int()
}
