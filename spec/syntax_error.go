package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// lexical errors
	synErrInvalidToken = newSyntaxError("invalid token")

	// syntax errors
	synErrNoProduction        = newSyntaxError("a grammar must have at least one production")
	synErrNoProductionName    = newSyntaxError("a production name is missing")
	synErrLHSNotNonTerminal   = newSyntaxError("the left-hand side of a production must be a non-terminal; a non-terminal starts with an upper-case letter")
	synErrNoArrow             = newSyntaxError("an arrow (-> or →) must follow the left-hand side")
	synErrUnseparatedArrow    = newSyntaxError("an arrow must be separated from the left-hand side by white spaces")
	synErrEmptyAlternative    = newSyntaxError("an alternative needs at least one symbol; write ε for an empty alternative")
	synErrMisplacedStart      = newSyntaxError("a start symbol declaration must be the first line of a grammar")
	synErrStartNotNonTerminal = newSyntaxError("a start symbol must be a non-terminal")
	synErrUnexpectedToken     = newSyntaxError("unexpected token")
)
