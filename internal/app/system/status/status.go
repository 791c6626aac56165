// Package status holds the account status values stored on users.
//
// A disabled administrator cannot sign in, and an open session stops
// resolving on the next request because the user fetcher rejects it.
package status

const (
	Active   = "active"
	Disabled = "disabled"
)

// IsValid reports whether s is a stored status value. Values are compared
// as stored; normalize.Status folds user input first.
func IsValid(s string) bool {
	return s == Active || s == Disabled
}

// Default is the status given to new accounts, including the first admin
// created through register or seeding.
func Default() string {
	return Active
}

// CanSignIn reports whether an account with status s may authenticate.
// Accounts created before statuses existed carry an empty value.
func CanSignIn(s string) bool {
	return s != Disabled
}
