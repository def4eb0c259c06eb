package grammar

import (
	"fmt"
	"strings"

	"github.com/nihei9/ll1/grammar/symbol"
)

type violationKind string

const (
	violationKindFirstFirst  = violationKind("FIRST/FIRST")
	violationKindFirstFollow = violationKind("FIRST/FOLLOW")
)

// violation is a pair of alternatives of one non-terminal that a predictive parser cannot
// tell apart on the lookaheads.
type violation struct {
	kind        violationKind
	nonTerminal symbol.Symbol
	prods       [2]*Production
	lookaheads  []symbol.Symbol
}

func (v *violation) format(gram *Grammar) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v conflict in %v between `%v` and `%v` on", v.kind, gram.Text(v.nonTerminal), gram.ProductionText(v.prods[0]), gram.ProductionText(v.prods[1]))
	for _, la := range v.lookaheads {
		fmt.Fprintf(&b, " %v", gram.Text(la))
	}
	return b.String()
}

// predictSet returns the lookaheads selecting prod: FIRST of its RHS without ε, plus
// FOLLOW of its LHS when the RHS is nullable. The result includes the EOF symbol when the
// end of input selects prod.
func predictSet(prod *Production, first *FirstSet, follow *FollowSet) (map[symbol.Symbol]struct{}, bool, error) {
	fst, err := first.Find(prod, 0)
	if err != nil {
		return nil, false, err
	}
	set := map[symbol.Symbol]struct{}{}
	for _, sym := range fst.Symbols() {
		set[sym] = struct{}{}
	}
	if !fst.Empty() {
		return set, false, nil
	}
	flw, err := follow.Find(prod.lhs)
	if err != nil {
		return nil, false, err
	}
	for _, sym := range flw.Symbols() {
		set[sym] = struct{}{}
	}
	if flw.EOF() {
		set[symbol.SymbolEOF] = struct{}{}
	}
	return set, true, nil
}

// validateLL1 checks the LL(1) condition pairwise over the alternatives of each
// non-terminal using FIRST and FOLLOW alone. It finds a violation exactly when the table
// construction finds a conflict on the same pair.
func validateLL1(gram *Grammar, first *FirstSet, follow *FollowSet) ([]*violation, error) {
	var violations []*violation
	for _, nonTerm := range gram.NonTerminals() {
		alts := gram.ProductionsOf(nonTerm)
		sets := make([]map[symbol.Symbol]struct{}, len(alts))
		nullable := make([]bool, len(alts))
		for i, alt := range alts {
			set, empty, err := predictSet(alt, first, follow)
			if err != nil {
				return nil, err
			}
			sets[i] = set
			nullable[i] = empty
		}

		for i := 0; i < len(alts); i++ {
			for j := i + 1; j < len(alts); j++ {
				var shared []symbol.Symbol
				for _, sym := range sortedSymbols(sets[i]) {
					if _, ok := sets[j][sym]; ok {
						shared = append(shared, sym)
					}
				}
				if len(shared) == 0 {
					continue
				}

				kind := violationKindFirstFirst
				if nullable[i] || nullable[j] {
					kind = violationKindFirstFollow
				}
				violations = append(violations, &violation{
					kind:        kind,
					nonTerminal: nonTerm,
					prods:       [2]*Production{alts[i], alts[j]},
					lookaheads:  shared,
				})
			}
		}
	}
	return violations, nil
}
