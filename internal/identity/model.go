package identity

import "time"

// Roles a user can hold. New registrations always start as RoleUser.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

// User represents a registered wallet owner.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash []byte
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Registration carries the data required to provision a user and wallet.
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// ProfileUpdate names every field a user may change about themselves. The
// credential and role are deliberately absent; requests carrying them are
// rejected at the boundary rather than silently ignored.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
}
