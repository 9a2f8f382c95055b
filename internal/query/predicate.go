// Package query is a small, storage-neutral predicate language for pushing
// record filters down into SQL. Predicates are opaque values built with the
// constructors below and rendered by a Compiler for a specific Dialect.
//
// Supported shapes are deliberately narrow: conjunctions of terms, where a
// term may itself be a disjunction. Arbitrary nesting compiles, but nothing
// in this module produces it.
package query

import "github.com/BradenHooton/roster/pkg/normalize"

// Field names a scalar attribute of a record. A Schema maps it to a column.
type Field string

// Collection names a multi-valued attribute of a record, stored in a
// child table.
type Collection string

// Expr is a string-valued expression over a record.
type Expr interface {
	isExpr()
}

// Predicate is a boolean condition over a record, evaluated by the store.
type Predicate interface {
	isPredicate()
}

func (Field) isExpr() {}

type lowerExpr struct {
	x Expr
}

type replaceExpr struct {
	x        Expr
	old, new string
}

func (lowerExpr) isExpr()   {}
func (replaceExpr) isExpr() {}

// Lower lower-cases x.
func Lower(x Expr) Expr {
	return lowerExpr{x: x}
}

// Replace replaces every occurrence of old in x with new.
func Replace(x Expr, old, new string) Expr {
	return replaceExpr{x: x, old: old, new: new}
}

// Strip removes every character of ignore from x, one replace per
// character in set order. It mirrors normalize.Normalize on the store side.
func Strip(x Expr, ignore normalize.IgnoreSet) Expr {
	for _, r := range ignore {
		x = Replace(x, string(r), "")
	}
	return x
}

type constPredicate bool

type junctionOp int

const (
	opAnd junctionOp = iota
	opOr
)

type junction struct {
	op    junctionOp
	terms []Predicate
}

type matchKind int

const (
	matchPrefix matchKind = iota
	matchContains
)

type likePredicate struct {
	x     Expr
	value string
	kind  matchKind
}

type hasPredicate struct {
	collection Collection
	value      string
}

func (constPredicate) isPredicate() {}
func (junction) isPredicate()       {}
func (likePredicate) isPredicate()  {}
func (hasPredicate) isPredicate()   {}

// All matches every record. It is the identity of And.
func All() Predicate {
	return constPredicate(true)
}

// None matches no record. It is the identity of Or.
func None() Predicate {
	return constPredicate(false)
}

// IsAll reports whether p is the match-all predicate.
func IsAll(p Predicate) bool {
	c, ok := p.(constPredicate)
	return ok && bool(c)
}

// And combines terms with logical AND. Match-all terms are dropped; with no
// remaining terms the result is All.
func And(terms ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(terms))
	for _, t := range terms {
		if t == nil || IsAll(t) {
			continue
		}
		kept = append(kept, t)
	}

	switch len(kept) {
	case 0:
		return All()
	case 1:
		return kept[0]
	}
	return junction{op: opAnd, terms: kept}
}

// Or combines terms with logical OR. With no terms the result is None; any
// match-all term makes the whole disjunction All.
func Or(terms ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(terms))
	for _, t := range terms {
		if t == nil {
			continue
		}
		if IsAll(t) {
			return All()
		}
		kept = append(kept, t)
	}

	switch len(kept) {
	case 0:
		return None()
	case 1:
		return kept[0]
	}
	return junction{op: opOr, terms: kept}
}

// HasPrefix matches when x starts with value.
func HasPrefix(x Expr, value string) Predicate {
	return likePredicate{x: x, value: value, kind: matchPrefix}
}

// Contains matches when value occurs anywhere in x.
func Contains(x Expr, value string) Predicate {
	return likePredicate{x: x, value: value, kind: matchContains}
}

// Has matches when the record's collection holds value.
func Has(c Collection, value string) Predicate {
	return hasPredicate{collection: c, value: value}
}
