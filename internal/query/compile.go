package query

import (
	"fmt"
	"strings"
)

// CollectionTable locates a collection's child table. OwnerColumn references
// the root record key; ValueColumn holds one element per row.
type CollectionTable struct {
	Table       string
	OwnerColumn string
	ValueColumn string
}

// Schema maps logical fields, collections and sort properties onto the
// tables of one store.
type Schema struct {
	// Alias is the alias of the root table in the FROM clause.
	Alias string
	// KeyColumn is the root record's primary key, used for collection joins
	// and as the final sort tiebreak.
	KeyColumn   string
	Fields      map[Field]string
	Collections map[Collection]CollectionTable
	Sortable    map[string]string
	// DefaultOrder applies when a page request carries no sort keys.
	DefaultOrder []Order
}

// Order is one sort key.
type Order struct {
	Property   string
	Descending bool
}

// Compiler renders predicates as SQL for one dialect and schema.
// It holds no mutable state and is safe for concurrent use.
type Compiler struct {
	dialect Dialect
	schema  Schema
}

// NewCompiler creates a Compiler.
func NewCompiler(d Dialect, s Schema) *Compiler {
	return &Compiler{dialect: d, schema: s}
}

// Dialect returns the dialect the compiler renders for.
func (c *Compiler) Dialect() Dialect {
	return c.dialect
}

// Clause is a rendered SQL fragment with its bind arguments.
type Clause struct {
	SQL  string
	Args []any
}

// PageQuery holds the pieces of a paginated select.
type PageQuery struct {
	Where   string
	OrderBy string
	Limit   string
	// Args binds Where only, for the count query.
	Args []any
	// PageArgs binds Where followed by the limit and offset.
	PageArgs []any
}

// Where renders p as a boolean SQL expression. Placeholders are numbered
// from argOffset+1.
func (c *Compiler) Where(p Predicate, argOffset int) (Clause, error) {
	w := &writer{c: c, argOffset: argOffset}
	if err := w.predicate(p); err != nil {
		return Clause{}, err
	}
	return Clause{SQL: w.sb.String(), Args: w.args}, nil
}

// OrderBy renders sort keys as an ORDER BY list (without the keywords). The
// record key is always appended so paging is stable.
func (c *Compiler) OrderBy(orders []Order) (string, error) {
	if len(orders) == 0 {
		orders = c.schema.DefaultOrder
	}

	keyColumn := c.qualify(c.schema.KeyColumn)
	parts := make([]string, 0, len(orders)+1)
	seen := make(map[string]bool, len(orders))
	hasKey := false

	for _, o := range orders {
		column, ok := c.schema.Sortable[o.Property]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownSortProperty, o.Property)
		}
		if seen[column] {
			continue
		}
		seen[column] = true

		qualified := c.qualify(column)
		if qualified == keyColumn {
			hasKey = true
		}

		dir := "ASC"
		if o.Descending {
			dir = "DESC"
		}
		parts = append(parts, qualified+" "+dir)
	}

	if !hasKey {
		parts = append(parts, keyColumn+" ASC")
	}

	return strings.Join(parts, ", "), nil
}

// Page renders everything a paginated select needs.
func (c *Compiler) Page(p Predicate, orders []Order, limit, offset int) (*PageQuery, error) {
	where, err := c.Where(p, 0)
	if err != nil {
		return nil, err
	}

	orderBy, err := c.OrderBy(orders)
	if err != nil {
		return nil, err
	}

	n := len(where.Args)
	pageArgs := make([]any, 0, n+2)
	pageArgs = append(pageArgs, where.Args...)
	pageArgs = append(pageArgs, limit, offset)

	return &PageQuery{
		Where:    where.SQL,
		OrderBy:  orderBy,
		Limit:    fmt.Sprintf("LIMIT %s OFFSET %s", c.dialect.Placeholder(n+1), c.dialect.Placeholder(n+2)),
		Args:     where.Args,
		PageArgs: pageArgs,
	}, nil
}

func (c *Compiler) qualify(column string) string {
	if c.schema.Alias == "" {
		return column
	}
	return c.schema.Alias + "." + column
}

type writer struct {
	c         *Compiler
	sb        strings.Builder
	args      []any
	argOffset int
	subquery  int
}

func (w *writer) bind(v any) string {
	w.args = append(w.args, v)
	return w.c.dialect.Placeholder(w.argOffset + len(w.args))
}

func (w *writer) predicate(p Predicate) error {
	switch p := p.(type) {
	case constPredicate:
		if p {
			w.sb.WriteString("1 = 1")
		} else {
			w.sb.WriteString("1 = 0")
		}
		return nil

	case junction:
		sep := " AND "
		if p.op == opOr {
			sep = " OR "
		}
		w.sb.WriteByte('(')
		for i, t := range p.terms {
			if i > 0 {
				w.sb.WriteString(sep)
			}
			if err := w.predicate(t); err != nil {
				return err
			}
		}
		w.sb.WriteByte(')')
		return nil

	case likePredicate:
		if err := w.expr(p.x); err != nil {
			return err
		}
		pattern := escapeLike(p.value) + "%"
		if p.kind == matchContains {
			pattern = "%" + pattern
		}
		w.sb.WriteString(" LIKE ")
		w.sb.WriteString(w.bind(pattern))
		w.sb.WriteString(` ESCAPE '\'`)
		return nil

	case hasPredicate:
		ct, ok := w.c.schema.Collections[p.collection]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCollection, p.collection)
		}
		w.subquery++
		alias := fmt.Sprintf("c%d", w.subquery)
		fmt.Fprintf(&w.sb, "EXISTS (SELECT 1 FROM %s %s WHERE %s.%s = %s AND %s.%s = %s)",
			ct.Table, alias,
			alias, ct.OwnerColumn, w.c.qualify(w.c.schema.KeyColumn),
			alias, ct.ValueColumn, w.bind(p.value),
		)
		return nil
	}

	return fmt.Errorf("%w: %T", ErrUnsupportedPredicate, p)
}

func (w *writer) expr(x Expr) error {
	switch x := x.(type) {
	case Field:
		column, ok := w.c.schema.Fields[x]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, string(x))
		}
		w.sb.WriteString(w.c.qualify(column))
		return nil

	case lowerExpr:
		if err := w.c.dialect.Require(FuncLower); err != nil {
			return err
		}
		w.sb.WriteString("lower(")
		if err := w.expr(x.x); err != nil {
			return err
		}
		w.sb.WriteByte(')')
		return nil

	case replaceExpr:
		if err := w.c.dialect.Require(FuncReplace); err != nil {
			return err
		}
		// Replace operands are inlined as literals so the rendered
		// expression is identical across requests and can match an
		// expression index.
		w.sb.WriteString("replace(")
		if err := w.expr(x.x); err != nil {
			return err
		}
		fmt.Fprintf(&w.sb, ", %s, %s)", quoteLiteral(x.old), quoteLiteral(x.new))
		return nil
	}

	return fmt.Errorf("%w: expression %T", ErrUnsupportedPredicate, x)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user text match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
