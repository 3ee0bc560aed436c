// Package domain contains the core entities of the recipe catalogue.
package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxUserNameLength bounds the display name of a user.
const MaxUserNameLength = 20

// User represents an account that owns recipes, tags and ingredients.
type User struct {
	Timestamps
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"is_active"`
	IsStaff      bool   `json:"is_staff"`
	IsSuperuser  bool   `json:"is_superuser"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}

// lowerDomain folds the domain part of an address; the local part is kept as typed.
var lowerDomain = cases.Lower(language.Und)

// NormalizeEmail trims the address and lower-cases its domain part.
// "Alice@Example.COM" -> "Alice@example.com".
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + lowerDomain.String(email[at+1:])
}
