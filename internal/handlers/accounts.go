package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/BradenHooton/roster/internal/models"
	pkghttp "github.com/BradenHooton/roster/pkg/http"
	"github.com/go-chi/chi/v5"
)

// AccountService defines the interface for the account listing logic
type AccountService interface {
	ListPage(ctx context.Context, pageIndex, pageSize int, sort []models.SortKey, criteria models.FilterCriteria) (*models.Page[*models.Account], error)
	Roles() []models.Role
	DefaultPageSize() int
}

// AccountHandler handles account listing HTTP requests
type AccountHandler struct {
	service AccountService
	logger  *slog.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger,
	}
}

// ListAccountsQuery carries the query parameters of GET /accounts.
type ListAccountsQuery struct {
	Page  int      `validate:"gte=0"`
	Size  int      `validate:"gte=1"`
	Name  string   `validate:"max=100"`
	Login string   `validate:"max=100"`
	Roles []string `validate:"max=8,dive,role"`
	Sort  []string `validate:"max=5,dive,sortkey"`
}

// AccountResponse represents an account in the HTTP response
type AccountResponse struct {
	ID        string   `json:"id"`
	Login     string   `json:"login"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Active    bool     `json:"active"`
	Roles     []string `json:"roles"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// ListAccountsResponse is one page of accounts
type ListAccountsResponse struct {
	Accounts   []*AccountResponse `json:"accounts"`
	Page       int                `json:"page"`
	Size       int                `json:"size"`
	Total      int64              `json:"total"`
	TotalPages int                `json:"total_pages"`
	HasNext    bool               `json:"has_next"`
}

// RolesResponse lists the selectable roles
type RolesResponse struct {
	Roles []string `json:"roles"`
}

func accountModelToResponse(a *models.Account) *AccountResponse {
	roles := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		roles = append(roles, r.String())
	}
	return &AccountResponse{
		ID:        a.ID,
		Login:     a.Login,
		Name:      a.Name,
		Email:     a.Email,
		Active:    a.Active,
		Roles:     roles,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// RegisterRoutes registers the account routes with the chi router
func (h *AccountHandler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.ListAccounts)   // GET /accounts
	router.Get("/roles", h.ListRoles) // GET /accounts/roles
}

// ListAccounts returns one filtered page of accounts
//
// @Summary List accounts
// @Param page query int false "Zero-based page index" default(0)
// @Param size query int false "Page size"
// @Param sort query []string false "property[,asc|desc], repeatable"
// @Param name query string false "Name prefix, case-insensitive"
// @Param login query string false "Login substring, ignoring - ( ) and spaces"
// @Param role query []string false "Any of ADMIN, USER"
// @Produce json
// @Success 200 {object} ListAccountsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseListQuery(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := ValidateRequest(q); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	criteria := models.FilterCriteria{
		NameContains:  q.Name,
		LoginContains: q.Login,
	}
	for _, raw := range q.Roles {
		role, _ := models.ParseRole(raw) // validated above
		criteria.Roles = append(criteria.Roles, role)
	}

	sort := make([]models.SortKey, 0, len(q.Sort))
	for _, raw := range q.Sort {
		key, _ := models.ParseSortKey(raw) // validated above
		sort = append(sort, key)
	}

	page, err := h.service.ListPage(r.Context(), q.Page, q.Size, sort, criteria)
	if err != nil {
		h.writeListError(w, r, err)
		return
	}

	resp := &ListAccountsResponse{
		Accounts:   make([]*AccountResponse, 0, len(page.Items)),
		Page:       page.Page,
		Size:       page.Size,
		Total:      page.Total,
		TotalPages: page.TotalPages(),
		HasNext:    page.HasNext(),
	}
	for _, a := range page.Items {
		resp.Accounts = append(resp.Accounts, accountModelToResponse(a))
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

func (h *AccountHandler) parseListQuery(r *http.Request) (*ListAccountsQuery, error) {
	values := r.URL.Query()

	page, err := pkghttp.QueryInt(r, "page", 0)
	if err != nil {
		return nil, err
	}
	size, err := pkghttp.QueryInt(r, "size", h.service.DefaultPageSize())
	if err != nil {
		return nil, err
	}

	return &ListAccountsQuery{
		Page:  page,
		Size:  size,
		Name:  values.Get("name"),
		Login: values.Get("login"),
		Roles: values["role"],
		Sort:  values["sort"],
	}, nil
}

func (h *AccountHandler) writeListError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, err.Error())
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write
		h.logger.Info("account listing canceled", slog.String("request_path", r.URL.Path))
	case errors.Is(err, context.DeadlineExceeded):
		pkghttp.WriteServiceUnavailable(w, "account listing timed out")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// ListRoles returns the roles offered by the role filter, in display order
//
// @Summary List selectable roles
// @Produce json
// @Success 200 {object} RolesResponse
// @Router /accounts/roles [get]
func (h *AccountHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles := h.service.Roles()
	resp := RolesResponse{Roles: make([]string, 0, len(roles))}
	for _, role := range roles {
		resp.Roles = append(resp.Roles, role.String())
	}
	pkghttp.WriteJSON(w, http.StatusOK, resp)
}
