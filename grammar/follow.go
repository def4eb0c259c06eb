package grammar

import (
	"fmt"

	"github.com/nihei9/ll1/grammar/symbol"
)

// FollowEntry is a FOLLOW set. Terminals are held in symbols, and eof is true when the
// end of input belongs to the set.
type FollowEntry struct {
	symbols map[symbol.Symbol]struct{}
	eof     bool
}

func newFollowEntry() *FollowEntry {
	return &FollowEntry{
		symbols: map[symbol.Symbol]struct{}{},
		eof:     false,
	}
}

func (e *FollowEntry) add(sym symbol.Symbol) bool {
	if _, ok := e.symbols[sym]; ok {
		return false
	}
	e.symbols[sym] = struct{}{}
	return true
}

func (e *FollowEntry) addEOF() bool {
	if !e.eof {
		e.eof = true
		return true
	}
	return false
}

func (e *FollowEntry) merge(fst *FirstEntry, flw *FollowEntry) bool {
	changed := false

	if fst != nil {
		for sym := range fst.symbols {
			added := e.add(sym)
			if added {
				changed = true
			}
		}
	}

	if flw != nil {
		for sym := range flw.symbols {
			added := e.add(sym)
			if added {
				changed = true
			}
		}
		if flw.eof {
			added := e.addEOF()
			if added {
				changed = true
			}
		}
	}

	return changed
}

// Symbols returns the terminals of the set in registration order. The end of input is
// reported by EOF instead.
func (e *FollowEntry) Symbols() []symbol.Symbol {
	return sortedSymbols(e.symbols)
}

func (e *FollowEntry) EOF() bool {
	return e.eof
}

// Contains reports whether sym belongs to the set. sym may be a terminal or the EOF
// symbol.
func (e *FollowEntry) Contains(sym symbol.Symbol) bool {
	if sym.IsEOF() {
		return e.eof
	}
	_, ok := e.symbols[sym]
	return ok
}

// IsEmpty reports whether nothing can follow the non-terminal, which happens only when
// the non-terminal is unreachable from the start symbol.
func (e *FollowEntry) IsEmpty() bool {
	return !e.eof && len(e.symbols) == 0
}

// FollowSet holds FOLLOW of every non-terminal having productions.
type FollowSet struct {
	set map[symbol.Symbol]*FollowEntry
}

func newFollow(prods *productionSet) *FollowSet {
	flw := &FollowSet{
		set: map[symbol.Symbol]*FollowEntry{},
	}
	for _, prod := range prods.getAllProductions() {
		if _, ok := flw.set[prod.lhs]; ok {
			continue
		}
		flw.set[prod.lhs] = newFollowEntry()
	}
	return flw
}

func (flw *FollowSet) Find(sym symbol.Symbol) (*FollowEntry, error) {
	e, ok := flw.set[sym]
	if !ok {
		return nil, fmt.Errorf("an entry of FOLLOW was not found; symbol: %s", sym)
	}
	return e, nil
}

type followComContext struct {
	prods  *productionSet
	first  *FirstSet
	follow *FollowSet
	start  symbol.Symbol
}

func newFollowComContext(prods *productionSet, first *FirstSet, start symbol.Symbol) *followComContext {
	return &followComContext{
		prods:  prods,
		first:  first,
		follow: newFollow(prods),
		start:  start,
	}
}

// genFollowSet computes FOLLOW as a fixed point. nonTerms fixes the order in which each
// pass visits the non-terminals.
func genFollowSet(prods *productionSet, first *FirstSet, start symbol.Symbol, nonTerms []symbol.Symbol) (*FollowSet, error) {
	cc := newFollowComContext(prods, first, start)
	pass := 0
	for {
		pass++
		more := false
		for _, ntsym := range nonTerms {
			e, err := cc.follow.Find(ntsym)
			if err != nil {
				return nil, err
			}
			changed, err := genFollowEntry(cc, e, ntsym)
			if err != nil {
				return nil, err
			}
			if changed {
				more = true
			}
		}
		if !more {
			break
		}
	}
	tracer().Debugf("FOLLOW reached a fixed point after %v passes", pass)

	return cc.follow, nil
}

func genFollowEntry(cc *followComContext, acc *FollowEntry, ntsym symbol.Symbol) (bool, error) {
	changed := false

	if ntsym == cc.start {
		added := acc.addEOF()
		if added {
			changed = true
		}
	}
	for _, prod := range cc.prods.getAllProductions() {
		for i, sym := range prod.rhs {
			if sym != ntsym {
				continue
			}
			fst, err := cc.first.Find(prod, i+1)
			if err != nil {
				return false, err
			}
			added := acc.merge(fst, nil)
			if added {
				changed = true
			}
			if fst.empty {
				flw, err := cc.follow.Find(prod.lhs)
				if err != nil {
					return false, err
				}
				added := acc.merge(nil, flw)
				if added {
					changed = true
				}
			}
		}
	}

	return changed, nil
}
