package types

import "time"

// User represents an account in the system.
// It contains identity, credentials, and profile metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Email is the unique login identity of the user.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Profile attributes. All optional; a nil value maps to SQL NULL.
	FirstName  *string `json:"first_name" db:"first_name"`
	LastName   *string `json:"last_name" db:"last_name"`
	Phone      *string `json:"phone" db:"phone"`
	Role       *string `json:"role" db:"role"`
	Department *string `json:"department" db:"department"`
	Bio        *string `json:"bio" db:"bio"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Profile is the mutable, non-credential subset of a user row.
type Profile struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Phone      *string `json:"phone"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Bio        *string `json:"bio"`
}

// DisplayName joins the user's name parts, falling back to the given
// identity string when both parts are empty.
func DisplayName(first, last *string, fallback string) string {
	name := ""
	if first != nil {
		name = *first
	}
	if last != nil && *last != "" {
		if name != "" {
			name += " "
		}
		name += *last
	}
	if name == "" {
		return fallback
	}
	return name
}
