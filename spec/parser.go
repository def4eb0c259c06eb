package spec

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	verr "github.com/nihei9/ll1/error"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'll1.spec'.
func tracer() tracing.Trace {
	return tracing.Select("ll1.spec")
}

type RootNode struct {
	// Start is the start symbol declared on the leading line, or the one passed to
	// ParseInline. It is empty when neither exists.
	Start       string
	StartPos    Position
	Productions []*ProductionNode
}

type ProductionNode struct {
	LHS string
	RHS []*AlternativeNode
	Pos Position
}

type AlternativeNode struct {
	Elements []*ElementNode
	Pos      Position
}

type ElementKind string

const (
	ElementKindNonTerminal = ElementKind("non-terminal")
	ElementKindTerminal    = ElementKind("terminal")
	ElementKindEpsilon     = ElementKind("epsilon")
)

type ElementNode struct {
	ID   string
	Kind ElementKind
	Pos  Position
}

// IsNonTerminalName reports whether a name written in the grammar notation denotes a
// non-terminal, that is, whether it starts with an upper-case letter.
func IsNonTerminalName(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && unicode.IsUpper(r)
}

func raiseSyntaxError(row, col int, synErr *SyntaxError) {
	panic(&verr.SpecError{
		Cause: synErr,
		Row:   row,
		Col:   col,
	})
}

func raiseSyntaxErrorWithDetail(row, col int, synErr *SyntaxError, detail string) {
	panic(&verr.SpecError{
		Cause:  synErr,
		Detail: detail,
		Row:    row,
		Col:    col,
	})
}

// Parse reads a grammar document. The first line may hold only a non-terminal, which then
// names the start symbol.
func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	root, err := p.parse(true)
	if err != nil {
		return nil, err
	}
	return root, nil
}

// ParseInline reads the rules given in src and uses start as the start symbol. src must
// not contain a start symbol declaration. An empty start leaves the choice to the grammar
// builder.
func ParseInline(src string, start string) (*RootNode, error) {
	p, err := newParser(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	root, err := p.parse(false)
	if err != nil {
		return nil, err
	}
	root.Start = start
	return root, nil
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
}

func newParser(src io.Reader) (*parser, error) {
	lex, err := newLexer(src)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse(allowStartDecl bool) (root *RootNode, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			specErr, ok := err.(*verr.SpecError)
			if !ok {
				panic(err)
			}
			retErr = specErr
			return
		}
	}()
	return p.parseRoot(allowStartDecl), nil
}

func (p *parser) parseRoot(allowStartDecl bool) *RootNode {
	root := &RootNode{}

	p.consume(tokenKindNewline)

	first := true
	for {
		if p.consume(tokenKindEOF) {
			break
		}
		if !p.consume(tokenKindSymbol) {
			tok := p.peek()
			raiseSyntaxError(tok.pos.Row, tok.pos.Col, synErrNoProductionName)
		}
		lhsTok := p.lastTok
		if strings.Contains(lhsTok.text, "->") || strings.Contains(lhsTok.text, "→") {
			raiseSyntaxErrorWithDetail(lhsTok.pos.Row, lhsTok.pos.Col, synErrUnseparatedArrow, lhsTok.text)
		}

		if p.consume(tokenKindNewline) || p.peek().kind == tokenKindEOF {
			if !first || !allowStartDecl {
				raiseSyntaxErrorWithDetail(lhsTok.pos.Row, lhsTok.pos.Col, synErrMisplacedStart, lhsTok.text)
			}
			if !IsNonTerminalName(lhsTok.text) {
				raiseSyntaxErrorWithDetail(lhsTok.pos.Row, lhsTok.pos.Col, synErrStartNotNonTerminal, lhsTok.text)
			}
			root.Start = lhsTok.text
			root.StartPos = lhsTok.pos
			first = false
			continue
		}
		first = false

		root.Productions = append(root.Productions, p.parseProduction(lhsTok))
	}

	if len(root.Productions) == 0 {
		raiseSyntaxError(0, 0, synErrNoProduction)
	}

	tracer().Debugf("parsed %v rules; start: %v", len(root.Productions), root.Start)

	return root
}

// parseProduction parses the rest of a rule whose left-hand side is lhs. A line starting
// with `|` continues the alternatives of the previous line.
func (p *parser) parseProduction(lhs *token) *ProductionNode {
	if !IsNonTerminalName(lhs.text) {
		raiseSyntaxErrorWithDetail(lhs.pos.Row, lhs.pos.Col, synErrLHSNotNonTerminal, lhs.text)
	}
	if !p.consume(tokenKindArrow) {
		tok := p.peek()
		raiseSyntaxError(tok.pos.Row, tok.pos.Col, synErrNoArrow)
	}
	rhs := []*AlternativeNode{p.parseAlternative()}
	for {
		if p.consume(tokenKindOr) {
			rhs = append(rhs, p.parseAlternative())
			continue
		}
		if p.consume(tokenKindNewline) {
			if p.consume(tokenKindOr) {
				rhs = append(rhs, p.parseAlternative())
				continue
			}
			break
		}
		if p.peek().kind == tokenKindEOF {
			break
		}
		tok := p.peek()
		raiseSyntaxErrorWithDetail(tok.pos.Row, tok.pos.Col, synErrUnexpectedToken, string(tok.kind))
	}
	return &ProductionNode{
		LHS: lhs.text,
		RHS: rhs,
		Pos: lhs.pos,
	}
}

func (p *parser) parseAlternative() *AlternativeNode {
	pos := p.peek().pos
	elems := []*ElementNode{}
	for {
		elem := p.parseElement()
		if elem == nil {
			break
		}
		elems = append(elems, elem)
	}
	if len(elems) == 0 {
		raiseSyntaxError(pos.Row, pos.Col, synErrEmptyAlternative)
	}
	return &AlternativeNode{
		Elements: elems,
		Pos:      pos,
	}
}

func (p *parser) parseElement() *ElementNode {
	switch {
	case p.consume(tokenKindSymbol):
		kind := ElementKindTerminal
		if IsNonTerminalName(p.lastTok.text) {
			kind = ElementKindNonTerminal
		}
		return &ElementNode{
			ID:   p.lastTok.text,
			Kind: kind,
			Pos:  p.lastTok.pos,
		}
	case p.consume(tokenKindEpsilon):
		return &ElementNode{
			Kind: ElementKindEpsilon,
			Pos:  p.lastTok.pos,
		}
	}
	return nil
}

func (p *parser) peek() *token {
	if p.peekedTok == nil {
		tok, err := p.lex.next()
		if err != nil {
			panic(toSpecError(err))
		}
		p.peekedTok = tok
	}
	if p.peekedTok.kind == tokenKindInvalid {
		raiseSyntaxErrorWithDetail(p.peekedTok.pos.Row, p.peekedTok.pos.Col, synErrInvalidToken, p.peekedTok.text)
	}
	return p.peekedTok
}

func (p *parser) consume(expected tokenKind) bool {
	tok := p.peek()
	if tok.kind == expected {
		p.peekedTok = nil
		p.lastTok = tok
		return true
	}
	return false
}

func toSpecError(err error) *verr.SpecError {
	if specErr, ok := err.(*verr.SpecError); ok {
		return specErr
	}
	return &verr.SpecError{
		Cause: err,
	}
}
