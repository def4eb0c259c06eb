package symbol

import (
	"errors"
	"testing"
)

func TestSymbol(t *testing.T) {
	tab := NewSymbolTable()
	w := tab.Writer()
	_, _ = w.RegisterNonTerminalSymbol("E")
	_, _ = w.RegisterNonTerminalSymbol("T")
	_, _ = w.RegisterNonTerminalSymbol("F")
	_, _ = w.RegisterTerminalSymbol("id")
	_, _ = w.RegisterTerminalSymbol("+")
	_, _ = w.RegisterTerminalSymbol("*")

	nonTermTexts := []string{
		"", // Nil
		"E",
		"T",
		"F",
	}

	termTexts := []string{
		"",            // Nil
		SymbolNameEOF, // EOF
		"id",
		"+",
		"*",
	}

	tests := []struct {
		text string
		kind Kind
	}{
		{text: "E", kind: KindNonTerminal},
		{text: "T", kind: KindNonTerminal},
		{text: "F", kind: KindNonTerminal},
		{text: "id", kind: KindTerminal},
		{text: "+", kind: KindTerminal},
		{text: "*", kind: KindTerminal},
		{text: SymbolNameEOF, kind: KindEOF},
		{text: SymbolNameEpsilon, kind: KindEpsilon},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			r := tab.Reader()
			sym, ok := r.ToSymbol(tt.text)
			if !ok {
				t.Fatalf("symbol was not found")
			}
			if sym.Kind() != tt.kind {
				t.Fatalf("unexpected kind; want: %v, got: %v", tt.kind, sym.Kind())
			}
			if sym.IsNil() {
				t.Fatalf("a registered symbol must not be nil")
			}
			if sym.IsInput() != (tt.kind == KindTerminal || tt.kind == KindEOF) {
				t.Fatalf("IsInput mismatch; kind: %v", tt.kind)
			}
			text, ok := r.ToText(sym)
			if !ok {
				t.Fatalf("text was not found")
			}
			if text != tt.text {
				t.Fatalf("unexpected text; want: %v, got: %v", tt.text, text)
			}
		})
	}

	t.Run("texts", func(t *testing.T) {
		r := tab.Reader()
		nts := r.NonTerminalTexts()
		if len(nts) != len(nonTermTexts) {
			t.Fatalf("unexpected non-terminal count; want: %v (%#v), got: %v (%#v)", len(nonTermTexts), nonTermTexts, len(nts), nts)
		}
		for i, text := range nonTermTexts {
			if nts[i] != text {
				t.Fatalf("unexpected non-terminal; want: %v, got: %v", text, nts[i])
			}
		}

		ts := r.TerminalTexts()
		if len(ts) != len(termTexts) {
			t.Fatalf("unexpected terminal count; want: %v (%#v), got: %v (%#v)", len(termTexts), termTexts, len(ts), ts)
		}
		for i, text := range termTexts {
			if ts[i] != text {
				t.Fatalf("unexpected terminal; want: %v, got: %v", text, ts[i])
			}
		}
		if r.TerminalCount() != len(termTexts) {
			t.Fatalf("unexpected terminal count; want: %v, got: %v", len(termTexts), r.TerminalCount())
		}
		if r.NonTerminalCount() != len(nonTermTexts) {
			t.Fatalf("unexpected non-terminal count; want: %v, got: %v", len(nonTermTexts), r.NonTerminalCount())
		}
	})

	t.Run("symbols keep the registration order", func(t *testing.T) {
		r := tab.Reader()
		for i, sym := range r.NonTerminalSymbols() {
			text, _ := r.ToText(sym)
			if text != nonTermTexts[i+1] {
				t.Fatalf("unexpected order; want: %v, got: %v", nonTermTexts[i+1], text)
			}
		}
		for i, sym := range r.TerminalSymbols() {
			text, _ := r.ToText(sym)
			if text != termTexts[i+2] {
				t.Fatalf("unexpected order; want: %v, got: %v", termTexts[i+2], text)
			}
			if sym.Num().Int() != i+2 {
				t.Fatalf("a terminal number must be its column; want: %v, got: %v", i+2, sym.Num())
			}
		}
	})
}

func TestSymbolTableWriter_KindConflict(t *testing.T) {
	tests := []struct {
		caption string
		first   Kind
		second  Kind
		text    string
	}{
		{
			caption: "a terminal cannot be re-registered as a non-terminal",
			first:   KindTerminal,
			second:  KindNonTerminal,
			text:    "a",
		},
		{
			caption: "a non-terminal cannot be re-registered as a terminal",
			first:   KindNonTerminal,
			second:  KindTerminal,
			text:    "A",
		},
		{
			caption: "the EOF symbol name is reserved",
			second:  KindTerminal,
			text:    SymbolNameEOF,
		},
		{
			caption: "the epsilon symbol name is reserved",
			second:  KindNonTerminal,
			text:    SymbolNameEpsilon,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			w := NewSymbolTable().Writer()
			if tt.first != "" {
				if _, err := w.register(tt.text, tt.first); err != nil {
					t.Fatal(err)
				}
			}
			_, err := w.register(tt.text, tt.second)
			var kindErr *KindConflictError
			if !errors.As(err, &kindErr) {
				t.Fatalf("expected a kind conflict; got: %v", err)
			}
		})
	}
}

func TestSymbol_MarkerKinds(t *testing.T) {
	if SymbolEOF.Num().Int() != 1 {
		t.Fatalf("EOF must occupy the column 1; got: %v", SymbolEOF.Num())
	}
	if !SymbolEOF.IsEOF() || SymbolEOF.IsTerminal() {
		t.Fatalf("EOF must be its own kind")
	}
	if !SymbolEpsilon.IsEpsilon() || SymbolEpsilon.IsInput() {
		t.Fatalf("epsilon must be its own kind and never a lookahead")
	}
	if SymbolNil.Kind() != KindNil {
		t.Fatalf("the zero symbol must be nil")
	}
}
