package validation

import (
	"fmt"

	"github.com/globedrop/ngo-directory/internal/adapters/http/dto"
	"github.com/globedrop/ngo-directory/internal/domain"
)

// Operation names a rule set.
type Operation string

const (
	CreateOrganization  Operation = "createOrganization"
	UpdateOrganization  Operation = "updateOrganization"
	GetOrganizationByID Operation = "getOrganizationById"
	DeleteOrganization  Operation = "deleteOrganization"
	CreateUser          Operation = "createUser"
	GetUserByID         Operation = "getUserById"
)

// For returns the ordered rule set for op. Unknown operations have no rules.
func For(op Operation) []Rule {
	switch op {
	case CreateOrganization:
		return []Rule{
			body("org_name", "org_name is required.", required("required,notempty")),
			body("website", "website must be a valid URL.", optional("omitempty,url")),
		}
	case UpdateOrganization:
		return []Rule{
			identifier("Organization ID is required", "Invalid Organization ID"),
			body("org_name", "org_name must not be empty.", optional("notempty")),
			body("website", "website must be a valid URL.", optional("omitempty,url")),
		}
	case GetOrganizationByID:
		return []Rule{identifier("Organization ID is required", "Invalid organization ID")}
	case DeleteOrganization:
		return []Rule{identifier("Organization ID is required", "Invalid Organization ID")}
	case CreateUser:
		return []Rule{
			body("email", "A valid email is required.", required("required,email")),
			body("first_name", "first_name is required.", required("required,notempty")),
			body("role", "role must be admin or member.", optional("omitempty,role")),
			body("organization_id", "organization_id must be a valid ID.", optional("uuid")),
		}
	case GetUserByID:
		return []Rule{identifier("User ID is required", "Invalid user ID")}
	default:
		return nil
	}
}

func body(field, message string, check Check) Rule {
	return Rule{Field: field, Location: LocationBody, Message: message, Check: check}
}

// identifier checks the :id path parameter. Missing or empty fails with
// required; a malformed value raises "<invalid>: <id>". A valid id is
// rewritten to its canonical lowercase hyphenated form.
func identifier(required, invalid string) Rule {
	return Rule{
		Field:    "id",
		Location: LocationParams,
		Message:  required,
		Check: func(value any, present bool) error {
			id, ok := value.(string)
			if !present || !ok || id == "" {
				return ErrCheckFailed
			}

			if err := dto.Validator().Var(id, "uuid"); err != nil {
				return fmt.Errorf("%s: %s", invalid, id)
			}

			return nil
		},
		Sanitize: domain.CanonicalID,
	}
}

// required fails unless the value is a string satisfying tag.
func required(tag string) Check {
	return func(value any, present bool) error {
		s, ok := value.(string)
		if !present || !ok {
			return ErrCheckFailed
		}

		if err := dto.Validator().Var(s, tag); err != nil {
			return ErrCheckFailed
		}

		return nil
	}
}

// optional passes when the value is absent and otherwise behaves like required.
func optional(tag string) Check {
	strict := required(tag)

	return func(value any, present bool) error {
		if !present {
			return nil
		}

		return strict(value, present)
	}
}
