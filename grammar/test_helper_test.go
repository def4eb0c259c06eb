package grammar

import (
	"testing"

	"github.com/nihei9/ll1/grammar/symbol"
	ast "github.com/nihei9/ll1/spec"
)

type testSymbolGenerator func(text string) symbol.Symbol

func newTestSymbolGenerator(t *testing.T, symTab *symbol.SymbolTableReader) testSymbolGenerator {
	return func(text string) symbol.Symbol {
		t.Helper()

		sym, ok := symTab.ToSymbol(text)
		if !ok {
			t.Fatalf("symbol was not found: %v", text)
		}
		return sym
	}
}

func buildTestGrammar(t *testing.T, src string, start string) *Grammar {
	t.Helper()

	root, err := ast.ParseInline(src, start)
	if err != nil {
		t.Fatal(err)
	}
	b := GrammarBuilder{
		AST:  root,
		Name: "test",
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return gram
}

func genTestSets(t *testing.T, gram *Grammar) (*FirstSet, *FollowSet) {
	t.Helper()

	fst, err := genFirstSet(gram.productionSet)
	if err != nil {
		t.Fatal(err)
	}
	flw, err := genFollowSet(gram.productionSet, fst, gram.start, gram.NonTerminals())
	if err != nil {
		t.Fatal(err)
	}
	return fst, flw
}

const (
	testSrcExpr = `
E  -> T E'
E' -> + T E' | ε
T  -> F T'
T' -> * F T' | ε
F  -> ( E ) | id
`

	testSrcNullable = `
S -> A a B
A -> b A | ε
B -> c B | ε
`
)
