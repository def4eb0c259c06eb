package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/nihei9/ll1/grammar/symbol"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'll1.driver'.
func tracer() tracing.Trace {
	return tracing.Select("ll1.driver")
}

type SyntaxErrorKind string

const (
	// SyntaxErrorKindUnexpectedToken means a terminal on the top of the stack didn't match the
	// lookahead, or input remained after the derivation completed.
	SyntaxErrorKindUnexpectedToken = SyntaxErrorKind("unexpected-token")

	// SyntaxErrorKindNoRule means a non-terminal had no production for the lookahead.
	SyntaxErrorKindNoRule = SyntaxErrorKind("no-rule")

	// SyntaxErrorKindRecoveryFailed means the input ended before a token following the
	// non-terminal in error was found.
	SyntaxErrorKindRecoveryFailed = SyntaxErrorKind("recovery-failed")
)

type RecoveryAction string

const (
	RecoveryDiscardExpectation = RecoveryAction("discarded the expected symbol")
	RecoverySkipInput          = RecoveryAction("skipped input until a following token")
	RecoveryReject             = RecoveryAction("rejected the input")
)

type SyntaxError struct {
	Kind    SyntaxErrorKind
	Row     int
	Col     int
	Message string

	// Token is the lookahead when the error occurred.
	Token VToken

	// Expected is the terminal expected by an UnexpectedToken error.
	Expected string

	// NonTerminal is the non-terminal in error of a NoRule or RecoveryFailed error.
	NonTerminal string

	// ExpectedTerminals lists the terminals the parser could have continued with.
	ExpectedTerminals []string

	Recovery RecoveryAction

	// Skipped is the number of tokens discarded by the recovery.
	Skipped int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v:%v: %v", e.Row, e.Col, e.Message)
}

type Verdict string

const (
	VerdictNone   = Verdict("")
	VerdictAccept = Verdict("accept")
	VerdictReject = Verdict("reject")
)

type parserState int

const (
	stateReady parserState = iota
	stateDriving

	// stateRecovering skips tokens until one of FOLLOW of the non-terminal in error shows up.
	stateRecovering

	stateAccepted
	stateRejected
)

func (s parserState) String() string {
	switch s {
	case stateReady:
		return "ready"
	case stateDriving:
		return "driving"
	case stateRecovering:
		return "recovering"
	case stateAccepted:
		return "accepted"
	case stateRejected:
		return "rejected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type ParserOption func(p *Parser) error

// MakeCST enables the construction of a concrete syntax tree.
func MakeCST() ParserOption {
	return func(p *Parser) error {
		p.cstActs = NewSyntaxTreeActionSet(p.gram)
		p.semActs = append(p.semActs, p.cstActs)
		return nil
	}
}

// SemanticAction registers an action set notified of every transition of the parser.
func SemanticAction(semAct SemanticActionSet) ParserOption {
	return func(p *Parser) error {
		if semAct == nil {
			return errors.New("semantic action set must be non-nil")
		}
		p.semActs = append(p.semActs, semAct)
		return nil
	}
}

// Parser is a predictive parser over one token stream. The grammar is only read, so any
// number of parsers can share it.
type Parser struct {
	toks      TokenStream
	gram      Grammar
	stack     *arraystack.Stack
	state     parserState
	lookahead VToken

	// recovering and recoveryErr are the non-terminal in error and its NoRule error while the
	// parser is in stateRecovering.
	recovering  int
	recoveryErr *SyntaxError

	synErrs []*SyntaxError
	verdict Verdict
	semActs []SemanticActionSet
	cstActs *SyntaxTreeActionSet
}

func NewParser(toks TokenStream, gram Grammar, opts ...ParserOption) (*Parser, error) {
	if toks == nil {
		return nil, errors.New("token stream must be non-nil")
	}
	if gram == nil {
		return nil, errors.New("grammar must be non-nil")
	}

	p := &Parser{
		toks:  toks,
		gram:  gram,
		stack: arraystack.New(),
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Parse drives the parser until it accepts or rejects the input. Syntax errors don't stop the
// parser; they are collected and available via SyntaxErrors. Parse returns an error only when
// the token stream fails.
func (p *Parser) Parse() error {
	if p.state != stateReady {
		return errors.New("a parser can parse its input only once")
	}

	p.stack.Push(int(symbol.SymbolEOF))
	p.stack.Push(p.gram.StartSymbol())
	p.setState(stateDriving)
	for _, a := range p.semActs {
		a.Begin()
	}

	err := p.advance()
	if err != nil {
		return err
	}

	for {
		switch p.state {
		case stateDriving:
			err = p.drive()
		case stateRecovering:
			err = p.recover()
		case stateAccepted, stateRejected:
			return nil
		default:
			return fmt.Errorf("invalid parser state: %v", p.state)
		}
		if err != nil {
			return err
		}
	}
}

func (p *Parser) drive() error {
	top := p.top()
	sym := symbol.Symbol(top)
	la := p.lookaheadTerminal()

	switch {
	case sym.IsEOF():
		if p.lookahead.EOF() {
			p.accept()
			return nil
		}

		p.addError(&SyntaxError{
			Kind:              SyntaxErrorKindUnexpectedToken,
			Message:           fmt.Sprintf("unexpected token %v after the end of input; expected %v", p.lookaheadText(), p.gram.Terminal(p.gram.EOF())),
			Expected:          p.gram.Terminal(p.gram.EOF()),
			ExpectedTerminals: []string{p.gram.Terminal(p.gram.EOF())},
			Recovery:          RecoveryReject,
		})
		p.reject()
		return nil
	case sym.IsTerminal():
		if sym.Num().Int() == la {
			tracer().Debugf("match: %v", p.gram.Terminal(la))
			p.stack.Pop()
			for _, a := range p.semActs {
				a.Match(p.lookahead)
			}
			return p.advance()
		}

		expected := p.gram.Terminal(sym.Num().Int())
		p.addError(&SyntaxError{
			Kind:              SyntaxErrorKindUnexpectedToken,
			Message:           fmt.Sprintf("unexpected token %v; expected %v", p.lookaheadText(), expected),
			Expected:          expected,
			ExpectedTerminals: []string{expected},
			Recovery:          RecoveryDiscardExpectation,
		})
		p.discard()
		return nil
	case sym.IsNonTerminal():
		nonTerm := sym.Num().Int()
		if prod := p.gram.Expansion(nonTerm, la); prod != 0 {
			p.expand(prod, false)
			return nil
		}
		if prod := p.gram.DefaultExpansion(nonTerm); prod != 0 {
			p.expand(prod, true)
			return nil
		}

		name := p.gram.NonTerminal(nonTerm)
		synErr := &SyntaxError{
			Kind:              SyntaxErrorKindNoRule,
			Message:           fmt.Sprintf("no rule for %v on %v; expected one of: %v", name, p.lookaheadText(), strings.Join(p.firstTerminals(nonTerm), ", ")),
			NonTerminal:       name,
			ExpectedTerminals: p.firstTerminals(nonTerm),
			Recovery:          RecoverySkipInput,
		}
		p.addError(synErr)
		p.recovering = top
		p.recoveryErr = synErr
		p.setState(stateRecovering)
		return nil
	}

	return fmt.Errorf("invalid symbol on the parse stack: %v", sym)
}

// recover runs one step of panic-mode recovery. The parser returns to stateDriving once the
// lookahead belongs to FOLLOW of the non-terminal in error.
func (p *Parser) recover() error {
	nonTerm := symbol.Symbol(p.recovering).Num().Int()
	la := p.lookaheadTerminal()

	if p.gram.Follows(nonTerm, la) {
		tracer().Debugf("synchronized on %v after skipping %v tokens", p.lookaheadText(), p.recoveryErr.Skipped)
		p.discard()
		p.recovering = 0
		p.recoveryErr = nil
		p.setState(stateDriving)
		return nil
	}

	if p.lookahead.EOF() {
		name := p.gram.NonTerminal(nonTerm)
		p.addError(&SyntaxError{
			Kind:              SyntaxErrorKindRecoveryFailed,
			Message:           fmt.Sprintf("failed to recover from the error in %v; the input ended without any of: %v", name, strings.Join(p.followTerminals(nonTerm), ", ")),
			NonTerminal:       name,
			ExpectedTerminals: p.followTerminals(nonTerm),
			Recovery:          RecoveryReject,
			Skipped:           p.recoveryErr.Skipped,
		})
		p.reject()
		return nil
	}

	tracer().Debugf("skip: %v", p.lookaheadText())
	p.recoveryErr.Skipped++
	for _, a := range p.semActs {
		a.Skip(p.lookahead)
	}
	return p.advance()
}

func (p *Parser) expand(prod int, defaulted bool) {
	p.stack.Pop()
	alt := p.gram.Alternative(prod)
	for i := len(alt) - 1; i >= 0; i-- {
		if symbol.Symbol(alt[i]).IsEpsilon() {
			continue
		}
		p.stack.Push(alt[i])
	}
	if defaulted {
		tracer().Debugf("expand by default: %v (lookahead: %v)", productionText(p.gram, prod), p.lookaheadText())
	} else {
		tracer().Debugf("expand: %v (lookahead: %v)", productionText(p.gram, prod), p.lookaheadText())
	}
	for _, a := range p.semActs {
		a.Expand(prod, defaulted)
	}
}

// discard pops the top of the stack without matching any input.
func (p *Parser) discard() {
	v, _ := p.stack.Pop()
	for _, a := range p.semActs {
		a.Discard(v.(int), p.lookahead)
	}
}

func (p *Parser) accept() {
	p.verdict = VerdictAccept
	p.setState(stateAccepted)
	for _, a := range p.semActs {
		a.Accept()
	}
}

func (p *Parser) reject() {
	p.verdict = VerdictReject
	p.setState(stateRejected)
	for _, a := range p.semActs {
		a.Reject(p.lookahead)
	}
}

func (p *Parser) setState(s parserState) {
	tracer().Debugf("state: %v -> %v", p.state, s)
	p.state = s
}

func (p *Parser) addError(synErr *SyntaxError) {
	synErr.Token = p.lookahead
	synErr.Row, synErr.Col = p.lookahead.Position()
	tracer().Debugf("syntax error: %v", synErr)
	p.synErrs = append(p.synErrs, synErr)
}

func (p *Parser) advance() error {
	tok, err := p.toks.Next()
	if err != nil {
		return err
	}
	p.lookahead = tok
	return nil
}

func (p *Parser) top() int {
	v, ok := p.stack.Peek()
	if !ok {
		return int(symbol.SymbolNil)
	}
	return v.(int)
}

// lookaheadTerminal returns the terminal number of the lookahead. An invalid token returns 0,
// which matches no terminal and selects no production.
func (p *Parser) lookaheadTerminal() int {
	if p.lookahead.EOF() {
		return p.gram.EOF()
	}
	if p.lookahead.Invalid() {
		return 0
	}
	return p.lookahead.TerminalID()
}

func (p *Parser) lookaheadText() string {
	la := p.lookaheadTerminal()
	if la == 0 {
		return fmt.Sprintf("%q", p.lookahead.Lexeme())
	}
	return p.gram.Terminal(la)
}

func (p *Parser) firstTerminals(nonTerm int) []string {
	var terms []string
	for term := 1; term < p.gram.TerminalCount(); term++ {
		if p.gram.Expansion(nonTerm, term) != 0 {
			terms = append(terms, p.gram.Terminal(term))
		}
	}
	return terms
}

func (p *Parser) followTerminals(nonTerm int) []string {
	var terms []string
	for term := 1; term < p.gram.TerminalCount(); term++ {
		if p.gram.Follows(nonTerm, term) {
			terms = append(terms, p.gram.Terminal(term))
		}
	}
	return terms
}

func (p *Parser) SyntaxErrors() []*SyntaxError {
	return p.synErrs
}

func (p *Parser) Verdict() Verdict {
	return p.verdict
}

// Accepted reports whether the parser reached the accepting state. An accepted input may still
// have recovered syntax errors.
func (p *Parser) Accepted() bool {
	return p.verdict == VerdictAccept
}

// Valid reports whether the input is a sentence of the grammar, that is, the parser accepted
// it without any syntax error.
func (p *Parser) Valid() bool {
	return p.Accepted() && len(p.synErrs) == 0
}

// CST returns the concrete syntax tree. It returns nil unless MakeCST is enabled.
func (p *Parser) CST() *Node {
	if p.cstActs == nil {
		return nil
	}
	return p.cstActs.CST()
}
