package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/roster/internal/database"
	"github.com/BradenHooton/roster/internal/models"
	"github.com/BradenHooton/roster/internal/query"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const pgSelectAccounts = `
	SELECT a.id, a.login, a.name, a.password_hash, a.email, a.active, a.created_at, a.updated_at,
		COALESCE((SELECT string_agg(r.role, ',') FROM account_roles r WHERE r.account_id = a.id), '')
	FROM accounts a`

// AccountRepository reads and writes accounts in PostgreSQL. List queries
// are compiled from query.Predicate values and run entirely in the database.
type AccountRepository struct {
	db       *database.DB
	pool     *pgxpool.Pool
	compiler *query.Compiler
}

func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{
		db:       db,
		pool:     db.Pool,
		compiler: query.NewCompiler(query.Postgres, accountSchema),
	}
}

// Dialect is the expression dialect predicates are compiled for.
func (r *AccountRepository) Dialect() query.Dialect {
	return r.compiler.Dialect()
}

// FindAll returns one page of the accounts matching p, with the total
// match count.
func (r *AccountRepository) FindAll(ctx context.Context, p query.Predicate, req models.PageRequest) (*models.Page[*models.Account], error) {
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
	if err := r.pool.QueryRow(ctx, countQuery, q.Args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	if page.Total <= int64(req.Offset()) {
		return page, nil
	}

	listQuery := pgSelectAccounts + ` WHERE ` + q.Where + ` ORDER BY ` + q.OrderBy + ` ` + q.Limit
	rows, err := r.pool.Query(ctx, listQuery, q.PageArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}

	page.Items, err = scanAccountRows(rows)
	if err != nil {
		return nil, err
	}

	return page, nil
}

// scanAccountRows iterates through rows and scans each into Account models
func scanAccountRows(rows pgx.Rows) ([]*models.Account, error) {
	defer rows.Close()

	accounts := make([]*models.Account, 0)

	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	account, err := scanAccount(r.pool.QueryRow(ctx, pgSelectAccounts+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return account, nil
}

func (r *AccountRepository) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	account, err := scanAccount(r.pool.QueryRow(ctx, pgSelectAccounts+` WHERE a.login = $1`, login))
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return account, nil
}

// Create inserts the account and its roles in one transaction.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	prepareForInsert(account, uuid.New().String())

	var passwordHash *string
	if account.PasswordHash != "" {
		passwordHash = &account.PasswordHash
	}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO accounts (id, login, name, password_hash, email, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			account.ID, account.Login, account.Name, passwordHash, account.Email,
			account.Active, account.CreatedAt, account.UpdatedAt,
		)
		if err != nil {
			return err
		}

		if len(account.Roles) == 0 {
			return nil
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO account_roles (account_id, role) SELECT $1, unnest($2::text[])`,
			account.ID, pq.Array(roleNames(account.Roles)),
		)
		return err
	})
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return account, nil
}
