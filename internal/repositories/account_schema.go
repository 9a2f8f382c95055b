package repositories

import (
	"strings"
	"time"

	"github.com/BradenHooton/roster/internal/filter"
	"github.com/BradenHooton/roster/internal/models"
	"github.com/BradenHooton/roster/internal/query"
)

// accountSchema maps the filter's logical account attributes onto the
// accounts/account_roles tables. Both backends share it.
var accountSchema = query.Schema{
	Alias:     "a",
	KeyColumn: "id",
	Fields: map[query.Field]string{
		filter.FieldName:  "name",
		filter.FieldLogin: "login",
	},
	Collections: map[query.Collection]query.CollectionTable{
		filter.Roles: {Table: "account_roles", OwnerColumn: "account_id", ValueColumn: "role"},
	},
	Sortable: map[string]string{
		"login":      "login",
		"name":       "name",
		"email":      "email",
		"active":     "active",
		"created_at": "created_at",
	},
	DefaultOrder: []query.Order{{Property: "login"}},
}

// rowScanner interface for scanning account rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAccount reads the column list shared by both backends. Roles arrive
// as one comma-separated aggregate.
func scanAccount(scanner rowScanner) (*models.Account, error) {
	var account models.Account
	var passwordHash *string
	var roles string

	err := scanner.Scan(
		&account.ID, &account.Login, &account.Name, &passwordHash, &account.Email,
		&account.Active, &account.CreatedAt, &account.UpdatedAt, &roles,
	)
	if err != nil {
		return nil, err
	}

	if passwordHash != nil {
		account.PasswordHash = *passwordHash
	}
	account.Roles = parseRoles(roles)

	return &account, nil
}

func parseRoles(s string) []models.Role {
	if s == "" {
		return []models.Role{}
	}
	parts := strings.Split(s, ",")
	roles := make([]models.Role, 0, len(parts))
	for _, p := range parts {
		roles = append(roles, models.Role(strings.TrimSpace(p)))
	}
	return models.SortRoles(roles)
}

func roleNames(roles []models.Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range models.SortRoles(roles) {
		names = append(names, string(r))
	}
	return names
}

func toOrders(keys []models.SortKey) []query.Order {
	orders := make([]query.Order, 0, len(keys))
	for _, k := range keys {
		orders = append(orders, query.Order{Property: k.Property, Descending: k.Descending})
	}
	return orders
}

func prepareForInsert(account *models.Account, id string) {
	now := time.Now().UTC()
	account.ID = id
	account.CreatedAt = now
	account.UpdatedAt = now
	account.Roles = models.SortRoles(account.Roles)
}
