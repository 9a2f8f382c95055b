package models

// FilterCriteria is what an operator asked for on the account list. Every
// field is optional; the zero value filters nothing.
type FilterCriteria struct {
	// NameContains is matched case-insensitively against the start of the
	// display name.
	NameContains string
	// LoginContains is matched case-insensitively anywhere in the login,
	// after formatting characters are stripped from both sides.
	LoginContains string
	// Roles matches accounts holding any of the listed roles.
	Roles []Role
}
