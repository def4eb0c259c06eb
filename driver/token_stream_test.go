package driver

import (
	"strings"
	"testing"
)

func TestSymbolTokenStream(t *testing.T) {
	cg := compileTestGrammar(t, testSrcNullable, "")
	toks := NewSymbolTokenStream(cg, []string{"b", "q", "a"})

	expected := []struct {
		name    string
		invalid bool
		col     int
	}{
		{name: "b", col: 1},
		{name: "q", invalid: true, col: 2},
		{name: "a", col: 3},
	}
	for _, e := range expected {
		tok, err := toks.Next()
		if err != nil {
			t.Fatal(err)
		}
		if string(tok.Lexeme()) != e.name || tok.Invalid() != e.invalid || tok.EOF() {
			t.Fatalf("unexpected token; want: %v, got: %#v", e.name, tok)
		}
		if row, col := tok.Position(); row != 1 || col != e.col {
			t.Fatalf("unexpected position; want: 1:%v, got: %v:%v", e.col, row, col)
		}
		if e.invalid {
			if tok.TerminalID() != 0 {
				t.Fatalf("an invalid token must have the terminal ID 0: %v", tok.TerminalID())
			}
			continue
		}
		if cg.Syntactic.Terminals[tok.TerminalID()] != e.name {
			t.Fatalf("unexpected terminal; want: %v, got: %v", e.name, cg.Syntactic.Terminals[tok.TerminalID()])
		}
	}

	// The stream keeps returning EOF.
	for i := 0; i < 2; i++ {
		tok, err := toks.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !tok.EOF() || tok.Invalid() {
			t.Fatalf("unexpected token: %#v", tok)
		}
	}
}

func TestTokenStream(t *testing.T) {
	cg := compileTestGrammar(t, testSrcNullable, "")
	toks, err := NewTokenStream(cg, strings.NewReader("b  a\nc"))
	if err != nil {
		t.Fatal(err)
	}

	expected := []struct {
		text string
		row  int
		col  int
	}{
		{text: "b", row: 1, col: 1},
		{text: "a", row: 1, col: 4},
		{text: "c", row: 2, col: 1},
	}
	for _, e := range expected {
		tok, err := toks.Next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.EOF() || tok.Invalid() {
			t.Fatalf("unexpected token: %#v", tok)
		}
		if string(tok.Lexeme()) != e.text || cg.Syntactic.Terminals[tok.TerminalID()] != e.text {
			t.Fatalf("unexpected token; want: %v, got: %v (terminal: %v)", e.text, string(tok.Lexeme()), tok.TerminalID())
		}
		if row, col := tok.Position(); row != e.row || col != e.col {
			t.Fatalf("unexpected position; want: %v:%v, got: %v:%v", e.row, e.col, row, col)
		}
	}
	tok, err := toks.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !tok.EOF() {
		t.Fatalf("unexpected token: %#v", tok)
	}
}
