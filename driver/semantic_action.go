package driver

import (
	"fmt"
	"io"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/nihei9/ll1/grammar/symbol"
)

type SemanticActionSet interface {
	// Begin runs when the driver starts a parse. The parse stack holds only the EOF symbol and
	// the start symbol.
	Begin()

	// Expand runs when the driver replaces a non-terminal on the top of the stack with an
	// alternative. `prodNum` is a number of the production. When the table has no entry for
	// the lookahead and the driver applies the nullable alternative instead, `defaulted` is true.
	Expand(prodNum int, defaulted bool)

	// Match runs when the top of the stack is a terminal and `tok` matches it.
	Match(tok VToken)

	// Discard runs when the driver pops `sym` without matching any input to recover from
	// a syntax error. `sym` is a raw symbol value of a terminal or a non-terminal.
	Discard(sym int, cause VToken)

	// Skip runs when the driver discards `tok` while looking for a synchronizing token.
	Skip(tok VToken)

	// Accept runs when the driver accepts an input.
	Accept()

	// Reject runs when the driver gives up the parse. `cause` is the lookahead at that point.
	Reject(cause VToken)
}

var _ SemanticActionSet = &SyntaxTreeActionSet{}

type Node struct {
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node
	Error    bool
}

func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	switch {
	case node.Error:
		fmt.Fprintf(w, "%v!%v\n", ruledLine, node.KindName)
	case node.Text != "":
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Text)
	default:
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

// SyntaxTreeActionSet builds a concrete syntax tree top-down. It keeps a stack of nodes that
// mirrors the parse stack; every node is created when its parent is expanded and is filled in
// when the driver expands, matches, or discards the corresponding symbol.
type SyntaxTreeActionSet struct {
	gram     Grammar
	cst      *Node
	semStack *arraystack.Stack
}

func NewSyntaxTreeActionSet(gram Grammar) *SyntaxTreeActionSet {
	return &SyntaxTreeActionSet{
		gram:     gram,
		semStack: arraystack.New(),
	}
}

func (a *SyntaxTreeActionSet) Begin() {
	a.semStack.Clear()
	a.cst = a.newNode(a.gram.StartSymbol())
	a.semStack.Push(a.cst)
}

func (a *SyntaxTreeActionSet) Expand(prodNum int, defaulted bool) {
	node := a.pop()
	if node == nil {
		return
	}

	var children []*Node
	for _, sym := range a.gram.Alternative(prodNum) {
		if symbol.Symbol(sym).IsEpsilon() {
			continue
		}
		children = append(children, a.newNode(sym))
	}
	node.Children = children

	for i := len(children) - 1; i >= 0; i-- {
		a.semStack.Push(children[i])
	}
}

func (a *SyntaxTreeActionSet) Match(tok VToken) {
	node := a.pop()
	if node == nil {
		return
	}
	node.Text = string(tok.Lexeme())
	node.Row, node.Col = tok.Position()
}

func (a *SyntaxTreeActionSet) Discard(sym int, cause VToken) {
	node := a.pop()
	if node == nil {
		return
	}
	node.Error = true
	node.Row, node.Col = cause.Position()
}

func (a *SyntaxTreeActionSet) Skip(tok VToken) {
}

func (a *SyntaxTreeActionSet) Accept() {
}

func (a *SyntaxTreeActionSet) Reject(cause VToken) {
	for {
		node := a.pop()
		if node == nil {
			break
		}
		node.Error = true
	}
}

func (a *SyntaxTreeActionSet) CST() *Node {
	return a.cst
}

func (a *SyntaxTreeActionSet) newNode(sym int) *Node {
	s := symbol.Symbol(sym)
	if s.IsTerminal() {
		return &Node{
			KindName: a.gram.Terminal(s.Num().Int()),
		}
	}
	return &Node{
		KindName: a.gram.NonTerminal(s.Num().Int()),
	}
}

func (a *SyntaxTreeActionSet) pop() *Node {
	v, ok := a.semStack.Pop()
	if !ok {
		return nil
	}
	return v.(*Node)
}
