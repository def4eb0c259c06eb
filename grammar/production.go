package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/nihei9/ll1/grammar/symbol"
)

type productionID [32]byte

func (id productionID) String() string {
	return hex.EncodeToString(id[:])
}

func genProductionID(lhs symbol.Symbol, rhs []symbol.Symbol) productionID {
	seq := lhs.Byte()
	for _, sym := range rhs {
		seq = append(seq, sym.Byte()...)
	}
	return productionID(sha256.Sum256(seq))
}

type productionNum uint16

const (
	productionNumNil = productionNum(0)
	productionNumMin = productionNum(1)
)

func (n productionNum) Int() int {
	return int(n)
}

// Production is an immutable pair of a non-terminal and the sequence it derives. An empty
// derivation is represented as the single epsilon symbol, never as a zero-length RHS.
type Production struct {
	id  productionID
	num productionNum
	lhs symbol.Symbol
	rhs []symbol.Symbol
}

func newProduction(lhs symbol.Symbol, rhs []symbol.Symbol) (*Production, error) {
	if !lhs.IsNonTerminal() {
		return nil, fmt.Errorf("LHS must be a non-terminal symbol; LHS: %v, RHS: %v", lhs, rhs)
	}
	if len(rhs) == 0 {
		return nil, fmt.Errorf("RHS must contain at least one symbol; LHS: %v", lhs)
	}
	for _, sym := range rhs {
		switch sym.Kind() {
		case symbol.KindNonTerminal, symbol.KindTerminal:
		case symbol.KindEpsilon:
			if len(rhs) > 1 {
				return nil, fmt.Errorf("epsilon must be the only symbol of RHS; LHS: %v, RHS: %v", lhs, rhs)
			}
		case symbol.KindEOF, symbol.KindNil:
			return nil, fmt.Errorf("RHS cannot contain a %v symbol; LHS: %v, RHS: %v", sym.Kind(), lhs, rhs)
		}
	}

	return &Production{
		id:  genProductionID(lhs, rhs),
		lhs: lhs,
		rhs: rhs,
	}, nil
}

func (p *Production) equals(q *Production) bool {
	return q.id == p.id
}

func (p *Production) Num() int {
	return p.num.Int()
}

func (p *Production) LHS() symbol.Symbol {
	return p.lhs
}

// RHS returns a copy of the right-hand side.
func (p *Production) RHS() []symbol.Symbol {
	rhs := make([]symbol.Symbol, len(p.rhs))
	copy(rhs, p.rhs)
	return rhs
}

// IsEmpty reports whether p is an epsilon production.
func (p *Production) IsEmpty() bool {
	return len(p.rhs) == 1 && p.rhs[0].IsEpsilon()
}

type productionSet struct {
	lhs2Prods map[symbol.Symbol][]*Production
	id2Prod   map[productionID]*Production
	prods     []*Production
	num       productionNum
}

func newProductionSet() *productionSet {
	return &productionSet{
		lhs2Prods: map[symbol.Symbol][]*Production{},
		id2Prod:   map[productionID]*Production{},
		num:       productionNumMin,
	}
}

// append returns false when the same production is already in the set.
func (ps *productionSet) append(prod *Production) bool {
	if _, ok := ps.id2Prod[prod.id]; ok {
		return false
	}

	prod.num = ps.num
	ps.num++

	ps.lhs2Prods[prod.lhs] = append(ps.lhs2Prods[prod.lhs], prod)
	ps.id2Prod[prod.id] = prod
	ps.prods = append(ps.prods, prod)

	return true
}

func (ps *productionSet) findByID(id productionID) (*Production, bool) {
	prod, ok := ps.id2Prod[id]
	return prod, ok
}

func (ps *productionSet) findByLHS(lhs symbol.Symbol) ([]*Production, bool) {
	if lhs.IsNil() {
		return nil, false
	}

	prods, ok := ps.lhs2Prods[lhs]
	return prods, ok
}

func (ps *productionSet) findByNum(num int) (*Production, bool) {
	if num < productionNumMin.Int() || num > len(ps.prods) {
		return nil, false
	}
	return ps.prods[num-productionNumMin.Int()], true
}

// getAllProductions returns the productions in the order they were added.
func (ps *productionSet) getAllProductions() []*Production {
	return ps.prods
}
