package driver

import (
	"io"

	spec "github.com/nihei9/ll1/spec/grammar"
	mldriver "github.com/nihei9/maleeni/driver"
)

type VToken interface {
	// TerminalID returns a terminal number. An invalid token returns 0.
	TerminalID() int

	// Lexeme returns a lexeme.
	Lexeme() []byte

	// EOF returns true when a token represents EOF.
	EOF() bool

	// Invalid returns true when a token matches no terminal.
	Invalid() bool

	// Position returns (row, column) pair. Both are 1-based.
	Position() (int, int)
}

type TokenStream interface {
	Next() (VToken, error)
}

type vToken struct {
	terminalID int
	tok        *mldriver.Token
}

func (t *vToken) TerminalID() int {
	return t.terminalID
}

func (t *vToken) Lexeme() []byte {
	return t.tok.Lexeme
}

func (t *vToken) EOF() bool {
	return t.tok.EOF
}

func (t *vToken) Invalid() bool {
	return t.tok.Invalid || (t.terminalID == 0 && !t.tok.EOF)
}

func (t *vToken) Position() (int, int) {
	return t.tok.Row + 1, t.tok.Col + 1
}

type tokenStream struct {
	lex            *mldriver.Lexer
	kindToTerminal []int
	skip           []int
}

// NewTokenStream returns a stream lexing src into the terminals of g. Tokens of the kinds
// marked as skipped, such as white spaces, never reach a parser.
func NewTokenStream(g *spec.CompiledGrammar, src io.Reader) (TokenStream, error) {
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(g.Lexical.Maleeni.Spec), src)
	if err != nil {
		return nil, err
	}

	return &tokenStream{
		lex:            lex,
		kindToTerminal: g.Lexical.Maleeni.KindToTerminal,
		skip:           g.Lexical.Maleeni.Skip,
	}, nil
}

func (l *tokenStream) Next() (VToken, error) {
	for {
		tok, err := l.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF || tok.Invalid {
			return &vToken{
				tok: tok,
			}, nil
		}
		if l.skip[tok.KindID] != 0 {
			continue
		}
		return &vToken{
			terminalID: l.kindToTerminal[tok.KindID],
			tok:        tok,
		}, nil
	}
}

type symbolToken struct {
	terminalID int
	name       string
	col        int
	eof        bool
}

func (t *symbolToken) TerminalID() int {
	return t.terminalID
}

func (t *symbolToken) Lexeme() []byte {
	return []byte(t.name)
}

func (t *symbolToken) EOF() bool {
	return t.eof
}

func (t *symbolToken) Invalid() bool {
	return t.terminalID == 0 && !t.eof
}

func (t *symbolToken) Position() (int, int) {
	return 1, t.col
}

type symbolTokenStream struct {
	toks []*symbolToken
	pos  int
}

// NewSymbolTokenStream returns a stream over already tokenized terminal names. The column of
// a token is its 1-based index in names. A name that is not a terminal of g becomes an
// invalid token.
func NewSymbolTokenStream(g *spec.CompiledGrammar, names []string) TokenStream {
	name2Term := map[string]int{}
	for num, name := range g.Syntactic.Terminals {
		if num <= 1 || name == "" {
			continue
		}
		name2Term[name] = num
	}

	toks := make([]*symbolToken, 0, len(names)+1)
	for i, name := range names {
		toks = append(toks, &symbolToken{
			terminalID: name2Term[name],
			name:       name,
			col:        i + 1,
		})
	}
	toks = append(toks, &symbolToken{
		col: len(names) + 1,
		eof: true,
	})

	return &symbolTokenStream{
		toks: toks,
	}
}

func (s *symbolTokenStream) Next() (VToken, error) {
	tok := s.toks[s.pos]
	if s.pos < len(s.toks)-1 {
		s.pos++
	}
	return tok, nil
}
