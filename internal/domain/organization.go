package domain

import "time"

// Organization is an NGO listed in the directory.
// Name is unique across all organizations.
type Organization struct {
	ID          string
	Name        string
	Description string
	Website     string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Admins is only filled when the organization is loaded with populate.
	Admins []*User
}

// OrganizationFilter selects a single organization by id or by name.
// Empty fields are ignored; at least one must be set.
type OrganizationFilter struct {
	ID   string
	Name string
}

// IsZero reports whether the filter selects nothing.
func (f OrganizationFilter) IsZero() bool {
	return f.ID == "" && f.Name == ""
}

// OrganizationInput carries the fields of a new organization.
type OrganizationInput struct {
	Name        string
	Description string
	Website     string
}

// OrganizationPatch is a partial update. Nil fields are left unchanged.
type OrganizationPatch struct {
	Name        *string
	Description *string
	Website     *string
}

// IsEmpty reports whether the patch changes nothing.
func (p OrganizationPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Website == nil
}

// Apply copies the set fields of the patch onto org.
func (p OrganizationPatch) Apply(org *Organization) {
	if p.Name != nil {
		org.Name = *p.Name
	}

	if p.Description != nil {
		org.Description = *p.Description
	}

	if p.Website != nil {
		org.Website = *p.Website
	}
}
