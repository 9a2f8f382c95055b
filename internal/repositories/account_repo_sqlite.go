package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BradenHooton/roster/internal/database"
	"github.com/BradenHooton/roster/internal/models"
	"github.com/BradenHooton/roster/internal/query"
	"github.com/google/uuid"
)

const sqliteSelectAccounts = `
	SELECT a.id, a.login, a.name, a.password_hash, a.email, a.active, a.created_at, a.updated_at,
		COALESCE((SELECT group_concat(r.role, ',') FROM account_roles r WHERE r.account_id = a.id), '')
	FROM accounts a`

// SQLiteAccountRepository is the embedded-store counterpart of
// AccountRepository. It compiles the same predicates for the SQLite dialect.
type SQLiteAccountRepository struct {
	store    *database.SQLiteDB
	compiler *query.Compiler
}

func NewSQLiteAccountRepository(store *database.SQLiteDB) *SQLiteAccountRepository {
	return &SQLiteAccountRepository{
		store:    store,
		compiler: query.NewCompiler(query.SQLite, accountSchema),
	}
}

func (r *SQLiteAccountRepository) Dialect() query.Dialect {
	return r.compiler.Dialect()
}

func (r *SQLiteAccountRepository) FindAll(ctx context.Context, p query.Predicate, req models.PageRequest) (*models.Page[*models.Account], error) {
	if !req.InRange() {
		return nil, fmt.Errorf("%w: page %d of size %d is out of range", models.ErrBadRequest, req.Page, req.Size)
	}

	q, err := r.compiler.Page(p, toOrders(req.Sort), req.Size, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to compile account query: %w", err)
	}

	page := &models.Page[*models.Account]{
		Items: make([]*models.Account, 0),
		Page:  req.Page,
		Size:  req.Size,
	}

	countQuery := `SELECT COUNT(*) FROM accounts a WHERE ` + q.Where
	if err := r.store.DB.QueryRowContext(ctx, countQuery, q.Args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	if page.Total <= int64(req.Offset()) {
		return page, nil
	}

	listQuery := sqliteSelectAccounts + ` WHERE ` + q.Where + ` ORDER BY ` + q.OrderBy + ` ` + q.Limit
	rows, err := r.store.DB.QueryContext(ctx, listQuery, q.PageArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		page.Items = append(page.Items, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return page, nil
}

func (r *SQLiteAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	account, err := scanAccount(r.store.DB.QueryRowContext(ctx, sqliteSelectAccounts+` WHERE a.id = ?`, id))
	if err != nil {
		return nil, database.MapSQLiteError(err)
	}
	return account, nil
}

func (r *SQLiteAccountRepository) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	account, err := scanAccount(r.store.DB.QueryRowContext(ctx, sqliteSelectAccounts+` WHERE a.login = ?`, login))
	if err != nil {
		return nil, database.MapSQLiteError(err)
	}
	return account, nil
}

func (r *SQLiteAccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	prepareForInsert(account, uuid.New().String())

	var passwordHash *string
	if account.PasswordHash != "" {
		passwordHash = &account.PasswordHash
	}

	err := r.store.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (id, login, name, password_hash, email, active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			account.ID, account.Login, account.Name, passwordHash, account.Email,
			account.Active, account.CreatedAt, account.UpdatedAt,
		)
		if err != nil {
			return err
		}

		for _, role := range roleNames(account.Roles) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO account_roles (account_id, role) VALUES (?, ?)`, account.ID, role,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, database.MapSQLiteError(err)
	}

	return account, nil
}
