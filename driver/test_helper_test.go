package driver

import (
	"testing"

	"github.com/nihei9/ll1/grammar"
	ast "github.com/nihei9/ll1/spec"
	spec "github.com/nihei9/ll1/spec/grammar"
)

const testSrcNullable = `
S -> A a B
A -> b A | ε
B -> c B | ε
`

func compileTestGrammar(t *testing.T, src string, start string) *spec.CompiledGrammar {
	t.Helper()

	root, err := ast.ParseInline(src, start)
	if err != nil {
		t.Fatal(err)
	}
	b := grammar.GrammarBuilder{
		AST:  root,
		Name: "test",
	}
	gram, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	cg, _, err := grammar.Compile(gram)
	if err != nil {
		t.Fatal(err)
	}
	return cg
}

func parseSymbols(t *testing.T, cg *spec.CompiledGrammar, names []string, opts ...ParserOption) *Parser {
	t.Helper()

	p, err := NewParser(NewSymbolTokenStream(cg, names), NewGrammar(cg), opts...)
	if err != nil {
		t.Fatal(err)
	}
	err = p.Parse()
	if err != nil {
		t.Fatal(err)
	}
	return p
}
