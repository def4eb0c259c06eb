package grammar

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nihei9/ll1/grammar/symbol"
	ast "github.com/nihei9/ll1/spec"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestGrammarBuilder_AddProduction(t *testing.T) {
	tests := []struct {
		caption string
		setup   func(b *GrammarBuilder)
		lhs     string
		rhs     []RHSElement
		err     *SemanticError
	}{
		{
			caption: "a production can be added",
			lhs:     "S",
			rhs:     []RHSElement{T("a"), N("S")},
		},
		{
			caption: "an ε production can be added",
			lhs:     "S",
			rhs:     []RHSElement{E},
		},
		{
			caption: "an alternative needs at least one element",
			lhs:     "S",
			err:     ErrEmptyAlternative,
		},
		{
			caption: "ε must be the only element",
			lhs:     "S",
			rhs:     []RHSElement{T("a"), E},
			err:     ErrMisplacedEpsilon,
		},
		{
			caption: "a name cannot be both a terminal and a non-terminal in one production",
			lhs:     "S",
			rhs:     []RHSElement{T("S")},
			err:     ErrNameConflict,
		},
		{
			caption: "a name cannot be both a terminal and a non-terminal across productions",
			setup: func(b *GrammarBuilder) {
				b.AddProduction("A", T("a"))
			},
			lhs: "S",
			rhs: []RHSElement{T("A")},
			err: ErrNameConflict,
		},
		{
			caption: "the EOF name is reserved",
			lhs:     "S",
			rhs:     []RHSElement{T("$")},
			err:     ErrReservedSymbol,
		},
		{
			caption: "the ε name cannot be used as a terminal",
			lhs:     "S",
			rhs:     []RHSElement{T("ε")},
			err:     ErrReservedSymbol,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			b := &GrammarBuilder{}
			if tt.setup != nil {
				tt.setup(b)
			}
			err := b.AddProduction(tt.lhs, tt.rhs...)
			if tt.err == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("unexpected error; want: %v, got: %v", tt.err, err)
			}

			// Finalize reports the error again.
			_, err = b.Finalize(tt.lhs)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Finalize must report the error; want: %v, got: %v", tt.err, err)
			}
		})
	}
}

func TestGrammarBuilder_Finalize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ll1.grammar")
	defer teardown()

	tests := []struct {
		caption string
		src     string
		start   string
		errs    []*SemanticError
	}{
		{
			caption: "an undefined non-terminal is an error",
			src:     `A -> B`,
			start:   "A",
			errs:    []*SemanticError{ErrUndefinedSymbol},
		},
		{
			caption: "an undefined non-terminal is reported once",
			src: `
A -> B C | B
C -> c
`,
			start: "A",
			errs:  []*SemanticError{ErrUndefinedSymbol},
		},
		{
			caption: "an unknown start symbol is an error",
			src:     `A -> a`,
			start:   "X",
			errs:    []*SemanticError{ErrUnknownStart},
		},
		{
			caption: "a terminal cannot be the start symbol",
			src:     `A -> a`,
			start:   "a",
			errs:    []*SemanticError{ErrUnknownStart},
		},
		{
			caption: "a duplicate production is an error",
			src: `
A -> a | b
A -> a
`,
			start: "A",
			errs:  []*SemanticError{ErrDuplicateDefinition},
		},
		{
			caption: "all errors are reported together",
			src: `
A -> B
A -> B
`,
			start: "X",
			errs:  []*SemanticError{ErrUnknownStart, ErrUndefinedSymbol, ErrDuplicateDefinition},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			root, err := ast.ParseInline(tt.src, tt.start)
			if err != nil {
				t.Fatal(err)
			}
			b := &GrammarBuilder{
				AST: root,
			}
			gram, err := b.Build()
			if gram != nil {
				t.Fatalf("a grammar must not be returned")
			}
			var gErrs GrammarErrors
			if !errors.As(err, &gErrs) {
				t.Fatalf("the error must be GrammarErrors; got: %v", err)
			}
			if len(gErrs) != len(tt.errs) {
				t.Fatalf("unexpected error count; want: %v, got: %v (%v)", len(tt.errs), len(gErrs), gErrs)
			}
			for i, cause := range tt.errs {
				if gErrs[i].Cause != cause {
					t.Fatalf("unexpected error #%v; want: %v, got: %v", i, cause, gErrs[i])
				}
				if !errors.Is(err, cause) {
					t.Fatalf("errors.Is must find %v", cause)
				}
			}
		})
	}
}

func TestGrammarBuilder_UndefinedSymbolPreventsCompilation(t *testing.T) {
	b := &GrammarBuilder{}
	if err := b.AddProduction("A", N("B")); err != nil {
		t.Fatal(err)
	}
	gram, err := b.Finalize("A")
	if !errors.Is(err, ErrUndefinedSymbol) {
		t.Fatalf("unexpected error; want: %v, got: %v", ErrUndefinedSymbol, err)
	}
	if gram != nil {
		t.Fatalf("no grammar must be produced")
	}
	if !strings.Contains(err.Error(), "A → B") {
		t.Fatalf("the error must name the referencing production; got: %v", err)
	}
}

func TestGrammarBuilder_NoProduction(t *testing.T) {
	b := &GrammarBuilder{}
	_, err := b.Finalize("S")
	if !errors.Is(err, ErrNoProduction) {
		t.Fatalf("unexpected error; want: %v, got: %v", ErrNoProduction, err)
	}
}

func TestGrammarBuilder_Finalized(t *testing.T) {
	b := &GrammarBuilder{}
	if err := b.AddProduction("S", T("a")); err != nil {
		t.Fatal(err)
	}
	gram, err := b.Finalize("S")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.AddProduction("S", T("b")); err == nil {
		t.Fatalf("a finalized grammar must not be modified")
	}
	if len(gram.Productions()) != 1 {
		t.Fatalf("the grammar must keep its productions; got: %v", len(gram.Productions()))
	}
}

func TestGrammarBuilder_Build_Start(t *testing.T) {
	tests := []struct {
		caption  string
		src      string
		inline   bool
		start    string
		override string
		expected string
	}{
		{
			caption:  "the first LHS is the default start symbol",
			src:      "A -> a B\nB -> b",
			expected: "A",
		},
		{
			caption:  "a declared start symbol is used",
			src:      "B\nA -> a B\nB -> b",
			expected: "B",
		},
		{
			caption:  "an inline start symbol is used",
			src:      "A -> a B\nB -> b",
			inline:   true,
			start:    "B",
			expected: "B",
		},
		{
			caption:  "the builder's start symbol overrides the others",
			src:      "B\nA -> a B\nB -> b",
			override: "A",
			expected: "A",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			var root *ast.RootNode
			var err error
			if tt.inline {
				root, err = ast.ParseInline(tt.src, tt.start)
			} else {
				root, err = ast.Parse(strings.NewReader(tt.src))
			}
			if err != nil {
				t.Fatal(err)
			}
			b := &GrammarBuilder{
				AST:   root,
				Start: tt.override,
			}
			gram, err := b.Build()
			if err != nil {
				t.Fatal(err)
			}
			if text := gram.Text(gram.Start()); text != tt.expected {
				t.Fatalf("unexpected start symbol; want: %v, got: %v", tt.expected, text)
			}
		})
	}
}

func TestGrammar_Accessors(t *testing.T) {
	gram := buildTestGrammar(t, testSrcNullable, "S")
	genSym := newTestSymbolGenerator(t, gram.symbolTable.Reader())

	var nonTerms []string
	for _, sym := range gram.NonTerminals() {
		nonTerms = append(nonTerms, gram.Text(sym))
	}
	if strings.Join(nonTerms, " ") != "S A B" {
		t.Fatalf("non-terminals must keep insertion order; got: %v", nonTerms)
	}
	var terms []string
	for _, sym := range gram.Terminals() {
		terms = append(terms, gram.Text(sym))
	}
	if strings.Join(terms, " ") != "a b c" {
		t.Fatalf("terminals must keep insertion order; got: %v", terms)
	}

	alts := gram.ProductionsOf(genSym("A"))
	if len(alts) != 2 {
		t.Fatalf("unexpected alternative count; want: 2, got: %v", len(alts))
	}
	if !alts[1].IsEmpty() || alts[0].IsEmpty() {
		t.Fatalf("only the second alternative of A is empty")
	}
	rhs := alts[1].RHS()
	if len(rhs) != 1 || rhs[0] != symbol.SymbolEpsilon {
		t.Fatalf("an ε production must hold only ε; got: %v", rhs)
	}
}

func TestCompile(t *testing.T) {
	gram := buildTestGrammar(t, testSrcExpr, "")
	cgram, report, err := Compile(gram, EnableReporting())
	if err != nil {
		t.Fatal(err)
	}
	if cgram == nil || report == nil {
		t.Fatalf("a compiled grammar and a report must be returned")
	}
	if !report.IsLL1() || len(report.Violations) != 0 {
		t.Fatalf("the expression grammar is LL(1); conflicts: %v, violations: %v", report.Conflicts, report.Violations)
	}

	s := cgram.Syntactic
	if len(s.Expansion) != s.TerminalCount*s.NonTerminalCount {
		t.Fatalf("unexpected table size; want: %v, got: %v", s.TerminalCount*s.NonTerminalCount, len(s.Expansion))
	}
	if s.Terminals[1] != "$" {
		t.Fatalf("the terminal #1 must be the EOF symbol; got: %v", s.Terminals[1])
	}
	if len(s.LHSSymbols) != len(gram.Productions())+1 || len(s.Alternatives) != len(gram.Productions())+1 {
		t.Fatalf("production tables must be indexed by production numbers")
	}
	if s.StartSymbol != int(gram.Start()) {
		t.Fatalf("unexpected start symbol; want: %v, got: %v", int(gram.Start()), s.StartSymbol)
	}

	m := cgram.Lexical.Maleeni
	if len(m.KindToTerminal) != len(m.Spec.KindNames) || len(m.Skip) != len(m.Spec.KindNames) {
		t.Fatalf("lexical tables must be indexed by kind IDs")
	}
	mapped := map[int]struct{}{}
	for _, term := range m.KindToTerminal {
		if term != 0 {
			mapped[term] = struct{}{}
		}
	}
	if len(mapped) != len(gram.Terminals()) {
		t.Fatalf("every terminal must have a lexical kind; want: %v, got: %v", len(gram.Terminals()), len(mapped))
	}
}

func TestCompile_LexSpecName(t *testing.T) {
	tests := []struct {
		caption  string
		gramName string
		specName string
	}{
		{
			caption:  "an identifier is kept",
			gramName: "expr",
			specName: "expr",
		},
		{
			caption:  "an unnamed grammar gets the default name",
			gramName: "",
			specName: "ll1_grammar",
		},
		{
			caption:  "upper-case letters and separators are normalized",
			gramName: "My-Grammar.v2",
			specName: "my_grammar_v2",
		},
		{
			caption:  "a name must start with a letter",
			gramName: "2nd",
			specName: "ll1_2nd",
		},
		{
			caption:  "a name without letters or digits gets the default name",
			gramName: "--",
			specName: "ll1_grammar",
		},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("#%v %v", i, tt.caption), func(t *testing.T) {
			root, err := ast.ParseInline(testSrcNullable, "")
			if err != nil {
				t.Fatal(err)
			}
			b := GrammarBuilder{
				AST:  root,
				Name: tt.gramName,
			}
			gram, err := b.Build()
			if err != nil {
				t.Fatal(err)
			}
			cgram, _, err := Compile(gram)
			if err != nil {
				t.Fatal(err)
			}
			if cgram.Lexical.Maleeni.Spec.Name != tt.specName {
				t.Fatalf("unexpected lexical specification name; want: %v, got: %v", tt.specName, cgram.Lexical.Maleeni.Spec.Name)
			}
			if cgram.Name != tt.gramName {
				t.Fatalf("a grammar name must be kept as is; want: %v, got: %v", tt.gramName, cgram.Name)
			}
		})
	}
}

func TestCompile_NotLL1(t *testing.T) {
	gram := buildTestGrammar(t, "S -> A a\nA -> a | ε", "")

	cgram, report, err := Compile(gram, EnableReporting())
	if !errors.Is(err, ErrNotLL1) {
		t.Fatalf("unexpected error; want: %v, got: %v", ErrNotLL1, err)
	}
	if cgram != nil {
		t.Fatalf("no table must be produced")
	}
	if report == nil {
		t.Fatalf("a report must be returned")
	}
	if report.IsLL1() || len(report.Conflicts) != 1 || len(report.Violations) != 1 {
		t.Fatalf("unexpected report; conflicts: %v, violations: %v", report.Conflicts, report.Violations)
	}

	_, report, err = Compile(gram)
	if !errors.Is(err, ErrNotLL1) {
		t.Fatalf("unexpected error; want: %v, got: %v", ErrNotLL1, err)
	}
	if report != nil {
		t.Fatalf("a report must be generated only when reporting is enabled")
	}
}
