package driver

import (
	"fmt"
	"testing"
)

func TestProductionText(t *testing.T) {
	cg := compileTestGrammar(t, testSrcNullable, "")
	gram := NewGrammar(cg)

	tests := []struct {
		prod int
		text string
	}{
		{prod: 1, text: "S -> A a B"},
		{prod: 2, text: "A -> b A"},
		{prod: 3, text: "A -> ε"},
		{prod: 4, text: "B -> c B"},
		{prod: 5, text: "B -> ε"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("production %v", tt.prod), func(t *testing.T) {
			text := productionText(gram, tt.prod)
			if text != tt.text {
				t.Fatalf("unexpected text; want: %v, got: %v", tt.text, text)
			}
		})
	}
}

func TestGrammar_LHS(t *testing.T) {
	cg := compileTestGrammar(t, testSrcNullable, "")
	gram := NewGrammar(cg)

	if gram.LHS(1) != gram.StartSymbol() {
		t.Fatalf("the first production must belong to the start symbol; got: %v", gram.LHS(1))
	}
	if gram.LHS(2) != gram.LHS(3) || gram.LHS(4) != gram.LHS(5) || gram.LHS(2) == gram.LHS(4) {
		t.Fatal("alternatives must share their left-hand side")
	}
}
