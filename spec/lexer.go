package spec

import (
	"fmt"
	"io"
	"strings"
	"sync"

	verr "github.com/nihei9/ll1/error"
	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

type tokenKind string

const (
	tokenKindSymbol  = tokenKind("symbol")
	tokenKindArrow   = tokenKind("->")
	tokenKindOr      = tokenKind("|")
	tokenKindEpsilon = tokenKind("ε")
	tokenKindNewline = tokenKind("newline")
	tokenKindEOF     = tokenKind("eof")
	tokenKindInvalid = tokenKind("invalid")
)

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newSymbolToken(kind tokenKind, pos Position) *token {
	return &token{
		kind: kind,
		pos:  pos,
	}
}

func newIDToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindSymbol,
		text: text,
		pos:  pos,
	}
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

func newInvalidToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindInvalid,
		text: text,
		pos:  pos,
	}
}

// lexEntries is the lexical specification of the grammar notation. When two kinds match
// the same lexeme, the kind listed first wins, so `->` and `ε` must precede `symbol`.
var lexEntries = []*mlspec.LexEntry{
	{
		Kind:    mlspec.LexKindName("white_space"),
		Pattern: mlspec.LexPattern(`[\u{0009}\u{0020}]+`),
	},
	{
		Kind:    mlspec.LexKindName("newline"),
		Pattern: mlspec.LexPattern(`\u{000A}|\u{000D}\u{000A}|\u{000D}`),
	},
	{
		Kind:    mlspec.LexKindName("line_comment"),
		Pattern: mlspec.LexPattern(`\u{0023}[^\u{000A}\u{000D}]*`),
	},
	{
		Kind:    mlspec.LexKindName("arrow"),
		Pattern: mlspec.LexPattern(`\u{002D}\u{003E}|\u{2192}`),
	},
	{
		Kind:    mlspec.LexKindName("or"),
		Pattern: mlspec.LexPattern(`\u{007C}`),
	},
	{
		Kind:    mlspec.LexKindName("epsilon"),
		Pattern: mlspec.LexPattern(`\u{03B5}`),
	},
	{
		Kind:    mlspec.LexKindName("symbol"),
		Pattern: mlspec.LexPattern(`[^\u{0009}\u{000A}\u{000D}\u{0020}\u{0023}\u{007C}]+`),
	},
}

var (
	lexSpecOnce sync.Once
	lexSpec     *mlspec.CompiledLexSpec
	lexSpecErr  error
)

func compiledLexSpec() (*mlspec.CompiledLexSpec, error) {
	lexSpecOnce.Do(func() {
		s, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
			Name:    "ll1_notation",
			Entries: lexEntries,
		}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if err != nil {
			if len(cErrs) > 0 {
				var b strings.Builder
				fmt.Fprintf(&b, "%v: %v", cErrs[0].Kind, cErrs[0].Cause)
				for _, cErr := range cErrs[1:] {
					fmt.Fprintf(&b, "\n%v: %v", cErr.Kind, cErr.Cause)
				}
				lexSpecErr = fmt.Errorf("failed to compile the lexical specification of the grammar notation: %v", b.String())
				return
			}
			lexSpecErr = err
			return
		}
		tracer().Debugf("compiled the lexical specification of the grammar notation; kinds: %v", len(s.KindNames))
		lexSpec = s
	})
	return lexSpec, lexSpecErr
}

type lexer struct {
	s   *mlspec.CompiledLexSpec
	d   *mldriver.Lexer
	buf *token
}

func newLexer(src io.Reader) (*lexer, error) {
	s, err := compiledLexSpec()
	if err != nil {
		return nil, err
	}
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		s: s,
		d: d,
	}, nil
}

// next returns the next token. Consecutive newlines are folded into one token.
func (l *lexer) next() (*token, error) {
	if l.buf != nil {
		tok := l.buf
		l.buf = nil
		return tok, nil
	}

	var newline *token
	for {
		tok, err := l.lexAndSkipWSs()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokenKindNewline {
			if newline == nil {
				newline = tok
			}
			continue
		}

		if newline != nil {
			l.buf = tok
			return newline, nil
		}
		return tok, nil
	}
}

func (l *lexer) lexAndSkipWSs() (*token, error) {
	var tok *mldriver.Token
	var kind mlspec.LexKindName
	for {
		var err error
		tok, err = l.d.Next()
		if err != nil {
			return nil, err
		}
		pos := newPosition(tok.Row+1, tok.Col+1)
		if tok.Invalid {
			return newInvalidToken(string(tok.Lexeme), pos), nil
		}
		if tok.EOF {
			return newEOFToken(pos), nil
		}
		kind = l.s.KindNames[tok.KindID]
		switch kind {
		case "white_space":
			continue
		case "line_comment":
			continue
		}

		break
	}

	pos := newPosition(tok.Row+1, tok.Col+1)
	switch kind {
	case "newline":
		return newSymbolToken(tokenKindNewline, pos), nil
	case "arrow":
		return newSymbolToken(tokenKindArrow, pos), nil
	case "or":
		return newSymbolToken(tokenKindOr, pos), nil
	case "epsilon":
		return newSymbolToken(tokenKindEpsilon, pos), nil
	case "symbol":
		return newIDToken(string(tok.Lexeme), pos), nil
	default:
		return nil, &verr.SpecError{
			Cause:  synErrInvalidToken,
			Detail: string(tok.Lexeme),
			Row:    pos.Row,
			Col:    pos.Col,
		}
	}
}
