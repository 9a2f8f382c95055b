// Package filter turns the criteria an operator enters on the account list
// into a query.Predicate the store evaluates.
package filter

import (
	"fmt"
	"strings"

	"github.com/BradenHooton/roster/internal/models"
	"github.com/BradenHooton/roster/internal/query"
	"github.com/BradenHooton/roster/pkg/normalize"
)

// Logical account attributes. Repositories map these onto their columns.
const (
	FieldName  query.Field      = "name"
	FieldLogin query.Field      = "login"
	Roles      query.Collection = "roles"
)

// SortProperties lists the account properties a page may be sorted by.
var SortProperties = []string{"login", "name", "email", "active", "created_at"}

// Builder builds account predicates. It is stateless and safe for
// concurrent use.
type Builder struct {
	ignore normalize.IgnoreSet
}

// NewBuilder checks that the dialect can strip characters from a column
// and returns a Builder. Without replace() the login filter cannot apply
// the same normalization to the stored value, so construction fails rather
// than degrading to case-only matching.
func NewBuilder(d query.Dialect) (*Builder, error) {
	if err := d.Require(query.FuncLower, query.FuncReplace); err != nil {
		return nil, fmt.Errorf("login normalization unavailable: %w", err)
	}
	return &Builder{ignore: normalize.DefaultIgnoreSet}, nil
}

// Build returns the conjunction of one term per present criterion, or the
// match-all predicate when no criterion is present.
func (b *Builder) Build(criteria models.FilterCriteria) query.Predicate {
	terms := make([]query.Predicate, 0, 3)

	if name := strings.TrimSpace(criteria.NameContains); name != "" {
		// One strategy today; further name matchers join this disjunction.
		terms = append(terms, query.Or(
			query.HasPrefix(query.Lower(FieldName), strings.ToLower(name)),
		))
	}

	if login := b.normalizeLogin(criteria.LoginContains); login != "" {
		column := query.Strip(query.Lower(FieldLogin), b.ignore)
		terms = append(terms, query.Contains(column, login))
	}

	if roles := models.SortRoles(criteria.Roles); len(roles) > 0 {
		anyRole := make([]query.Predicate, 0, len(roles))
		for _, r := range roles {
			anyRole = append(anyRole, query.Has(Roles, string(r)))
		}
		terms = append(terms, query.Or(anyRole...))
	}

	return query.And(terms...)
}

// Terms names the criteria that contribute a term, for logging.
func (b *Builder) Terms(criteria models.FilterCriteria) []string {
	var names []string
	if strings.TrimSpace(criteria.NameContains) != "" {
		names = append(names, "name")
	}
	if b.normalizeLogin(criteria.LoginContains) != "" {
		names = append(names, "login")
	}
	if len(models.SortRoles(criteria.Roles)) > 0 {
		names = append(names, "roles")
	}
	return names
}

func (b *Builder) normalizeLogin(raw string) string {
	return normalize.Normalize(b.ignore, strings.ToLower(strings.TrimSpace(raw)))
}
