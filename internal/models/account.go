package models

import (
	"time"
)

type Account struct {
	ID           string
	Login        string
	Name         string
	PasswordHash string // never leaves the service layer
	Email        string
	Active       bool
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAccount returns an active account holding roles.
func NewAccount(login, name, email string, roles ...Role) *Account {
	return &Account{
		Login:  login,
		Name:   name,
		Email:  email,
		Active: true,
		Roles:  SortRoles(roles),
	}
}

// HasRole reports whether the account holds role.
func (a *Account) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}
