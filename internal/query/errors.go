package query

import "errors"

var (
	// ErrUnsupportedFunction means the dialect cannot express an expression
	// function. It is a configuration error.
	ErrUnsupportedFunction = errors.New("query: function not supported by dialect")

	ErrUnknownField         = errors.New("query: unknown field")
	ErrUnknownCollection    = errors.New("query: unknown collection")
	ErrUnknownSortProperty  = errors.New("query: unknown sort property")
	ErrUnsupportedPredicate = errors.New("query: unsupported predicate")
)
