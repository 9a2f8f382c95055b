package query

import (
	"fmt"
	"strconv"
)

// Function is a scalar SQL function an expression may need.
type Function string

const (
	FuncLower   Function = "lower"
	FuncReplace Function = "replace"
)

// Dialect describes how a store spells placeholders and which expression
// functions it can evaluate.
type Dialect struct {
	Name        string
	Placeholder func(n int) string
	Functions   []Function
}

var (
	// Postgres uses numbered placeholders ($1, $2, ...).
	Postgres = Dialect{
		Name:        "postgres",
		Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		Functions:   []Function{FuncLower, FuncReplace},
	}

	// SQLite uses positional placeholders.
	SQLite = Dialect{
		Name:        "sqlite3",
		Placeholder: func(int) string { return "?" },
		Functions:   []Function{FuncLower, FuncReplace},
	}
)

// Supports reports whether the dialect can evaluate fn.
func (d Dialect) Supports(fn Function) bool {
	for _, f := range d.Functions {
		if f == fn {
			return true
		}
	}
	return false
}

// Require returns ErrUnsupportedFunction for the first function in fns the
// dialect cannot evaluate.
func (d Dialect) Require(fns ...Function) error {
	for _, fn := range fns {
		if !d.Supports(fn) {
			return fmt.Errorf("%w: %s has no %s()", ErrUnsupportedFunction, d.Name, fn)
		}
	}
	return nil
}
