package domain

import "time"

// Role is the role a user holds within their organization.
type Role string

const (
	// RoleAdmin manages an organization.
	RoleAdmin Role = "admin"

	// RoleMember is the default role.
	RoleMember Role = "member"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User is a person registered in the directory. Email is unique.
type User struct {
	ID             string
	Email          string
	FirstName      string
	LastName       string
	Role           Role
	OrganizationID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// UserFilter selects a single user by id or by email.
type UserFilter struct {
	ID    string
	Email string
}

// IsZero reports whether the filter selects nothing.
func (f UserFilter) IsZero() bool {
	return f.ID == "" && f.Email == ""
}

// UserInput carries the fields of a new user.
type UserInput struct {
	Email          string
	FirstName      string
	LastName       string
	Role           Role
	OrganizationID string
}
