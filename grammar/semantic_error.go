package grammar

import (
	"fmt"
	"strings"
)

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	ErrNoProduction        = newSemanticError("a grammar needs at least one production")
	ErrUndefinedSymbol     = newSemanticError("undefined symbol")
	ErrUnknownStart        = newSemanticError("unknown start symbol")
	ErrDuplicateDefinition = newSemanticError("duplicate production")
	ErrNotLL1              = newSemanticError("grammar is not LL(1)")
	ErrNameConflict        = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
	ErrReservedSymbol      = newSemanticError("reserved symbol name")
	ErrEmptyAlternative    = newSemanticError("an alternative needs at least one symbol; write ε for an empty alternative")
	ErrMisplacedEpsilon    = newSemanticError("ε must be the only symbol of an alternative")
)

// GrammarError is a fatal error found while building or analyzing a grammar. Cause is one
// of the Err* sentinels.
type GrammarError struct {
	Cause *SemanticError

	// NonTerminal is the non-terminal the error is about. For ErrNotLL1 it is the row of
	// the conflicting table cell.
	NonTerminal string

	// Symbol is the offending symbol. For ErrNotLL1 it is the lookahead of the conflicting
	// table cell.
	Symbol string

	// Productions lists the productions involved, formatted as `A → α`.
	Productions []string
}

func (e *GrammarError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v", e.Cause)
	switch e.Cause {
	case ErrNotLL1:
		fmt.Fprintf(&b, ": conflict at [%v, %v]", e.NonTerminal, e.Symbol)
	default:
		if e.Symbol != "" {
			fmt.Fprintf(&b, ": %v", e.Symbol)
		}
	}
	if len(e.Productions) > 0 {
		fmt.Fprintf(&b, "; production: %v", strings.Join(e.Productions, " | "))
	}
	return b.String()
}

func (e *GrammarError) Unwrap() error {
	return e.Cause
}

// GrammarErrors is a non-empty collection of grammar errors in detection order.
type GrammarErrors []*GrammarError

func (e GrammarErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v", e[0])
	for _, err := range e[1:] {
		fmt.Fprintf(&b, "\n%v", err)
	}
	return b.String()
}

// Is reports whether any of the errors has target as its cause.
func (e GrammarErrors) Is(target error) bool {
	for _, err := range e {
		if err.Cause == target {
			return true
		}
	}
	return false
}

// Filter returns the errors caused by cause.
func (e GrammarErrors) Filter(cause *SemanticError) GrammarErrors {
	var errs GrammarErrors
	for _, err := range e {
		if err.Cause == cause {
			errs = append(errs, err)
		}
	}
	return errs
}
