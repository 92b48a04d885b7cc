package dto

import (
	"time"

	"github.com/globedrop/ngo-directory/internal/domain"
)

// Success messages.
const (
	MessageOK                  = "Ok"
	MessageOrganizationCreated = "Organization Inserted"
	MessageOrganizationUpdated = "Organization Updated"
	MessageDeleted             = "delete successful"
	MessageUserCreated         = "User Inserted"
)

// Response is the success envelope. Both fields are always serialized.
type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// NewResponse creates a success envelope.
func NewResponse(message string, data any) Response {
	return Response{Message: message, Data: data}
}

// FieldError is a single failed check, shaped like express-validator output.
type FieldError struct {
	Value    any    `json:"value"`
	Msg      string `json:"msg"`
	Param    string `json:"param"`
	Location string `json:"location"`
}

// CreateOrganizationRequest is the body of POST /organizations.
type CreateOrganizationRequest struct {
	Name        string `json:"org_name" example:"Acme Relief"`
	Description string `json:"description" example:"Disaster relief in East Africa"`
	Website     string `json:"website" example:"https://acme.example.org"`
}

// ToInput converts the request to a domain input.
func (r CreateOrganizationRequest) ToInput() domain.OrganizationInput {
	return domain.OrganizationInput{
		Name:        r.Name,
		Description: r.Description,
		Website:     r.Website,
	}
}

// UpdateOrganizationRequest is the body of PUT /organizations/:id.
// Absent fields are left unchanged.
type UpdateOrganizationRequest struct {
	Name        *string `json:"org_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Website     *string `json:"website,omitempty"`
}

// ToPatch converts the request to a domain patch.
func (r UpdateOrganizationRequest) ToPatch() domain.OrganizationPatch {
	return domain.OrganizationPatch{
		Name:        r.Name,
		Description: r.Description,
		Website:     r.Website,
	}
}

// OrganizationResponse is the JSON form of an organization.
type OrganizationResponse struct {
	ID          string         `json:"id" example:"7f1f6a4e-2b0e-4c55-9d8a-0b6d2d6c3a11"`
	Name        string         `json:"org_name" example:"Acme Relief"`
	Description string         `json:"description"`
	Website     string         `json:"website,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Admins      []UserResponse `json:"admins,omitempty"`
}

// NewOrganizationResponse converts a domain organization.
func NewOrganizationResponse(org *domain.Organization) OrganizationResponse {
	resp := OrganizationResponse{
		ID:          org.ID,
		Name:        org.Name,
		Description: org.Description,
		Website:     org.Website,
		CreatedAt:   org.CreatedAt,
		UpdatedAt:   org.UpdatedAt,
	}

	if org.Admins != nil {
		resp.Admins = NewUserResponses(org.Admins)
	}

	return resp
}

// NewOrganizationResponses converts a list. The result is never nil.
func NewOrganizationResponses(orgs []*domain.Organization) []OrganizationResponse {
	out := make([]OrganizationResponse, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, NewOrganizationResponse(org))
	}

	return out
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Email          string `json:"email" example:"ada@example.org"`
	FirstName      string `json:"first_name" example:"Ada"`
	LastName       string `json:"last_name" example:"Lovelace"`
	Role           string `json:"role" example:"admin"`
	OrganizationID string `json:"organization_id" example:"7f1f6a4e-2b0e-4c55-9d8a-0b6d2d6c3a11"`
}

// ToInput converts the request to a domain input.
func (r CreateUserRequest) ToInput() domain.UserInput {
	return domain.UserInput{
		Email:          r.Email,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Role:           domain.Role(r.Role),
		OrganizationID: r.OrganizationID,
	}
}

// UserResponse is the JSON form of a user.
type UserResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Role           string    `json:"role"`
	OrganizationID string    `json:"organization_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUserResponse converts a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           string(u.Role),
		OrganizationID: u.OrganizationID,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// NewUserResponses converts a list. The result is never nil.
func NewUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}

	return out
}
