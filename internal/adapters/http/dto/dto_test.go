package dto

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globedrop/ngo-directory/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewUserInputError(t *testing.T) {
	fieldErrs := []FieldError{{Value: "", Msg: "org_name is required.", Param: "org_name", Location: "body"}}

	err := NewUserInputError(http.StatusUnprocessableEntity, fieldErrs)

	assert.Equal(t, CodeBadUserInput, err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.JSONEq(t,
		`[{"value":"","msg":"org_name is required.","param":"org_name","location":"body"}]`,
		string(err.Payload))
}

func TestNewBadInputError(t *testing.T) {
	err := NewBadInputError(0, map[string]string{"message": "malformed JSON body"})

	assert.Equal(t, CodeBadInput, err.Code)
	assert.Zero(t, err.Status)
	assert.JSONEq(t, `{"message":"malformed JSON body"}`, string(err.Payload))
}

func TestNewPayloadError_Unserializable(t *testing.T) {
	err := NewBadInputError(0, make(chan int))

	var body map[string]string
	require.NoError(t, json.Unmarshal(err.Payload, &body))
	assert.Contains(t, body["message"], "unserializable payload")
}

func TestNewCustomError(t *testing.T) {
	err := NewCustomError(CodeAlreadyExist, http.StatusBadRequest, "Organization already exist.")

	assert.Equal(t, "Organization already exist.", err.Error())
	assert.Equal(t, CodeAlreadyExist, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Nil(t, err.Payload)
}

func TestNewForbiddenError(t *testing.T) {
	err := NewForbiddenError("admin role required")

	assert.Equal(t, CodeForbidden, err.Code)
	assert.Equal(t, http.StatusForbidden, err.Status)
}

func TestAPIError_ErrorFallsBackToCode(t *testing.T) {
	err := &APIError{Code: CodeInternal}
	assert.Equal(t, CodeInternal, err.Error())
}

func TestAsAPIError(t *testing.T) {
	t.Run("typed error is returned as-is", func(t *testing.T) {
		typed := NewCustomError(CodeOrganizationNotFound, http.StatusNotFound, "Organization Not Found")
		wrapped := fmt.Errorf("handler: %w", typed)

		assert.Same(t, typed, AsAPIError(wrapped))
	})

	t.Run("untyped error is wrapped and keeps its cause", func(t *testing.T) {
		cause := domain.NewNotFoundError("organization", "1")

		got := AsAPIError(cause)

		assert.Empty(t, got.Code)
		assert.Zero(t, got.Status)
		assert.Equal(t, cause.Error(), got.Message)
		assert.True(t, domain.IsNotFound(got))
	})
}

func TestNewErrorResponse(t *testing.T) {
	body, err := json.Marshal(NewErrorResponse("", "boom"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":{"message":"boom"}}`, string(body))

	body, err = json.Marshal(NewErrorResponse(CodeAlreadyExist, "Organization already exist."))
	require.NoError(t, err)
	assert.JSONEq(t, `{"errors":{"message":"Organization already exist.","code":"ALREADY_EXIST"}}`, string(body))
}

func TestResponse_AlwaysCarriesBothFields(t *testing.T) {
	body, err := json.Marshal(NewResponse(MessageDeleted, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"delete successful","data":null}`, string(body))
}

func TestNewOrganizationResponse(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	org := &domain.Organization{
		ID:        "7f1f6a4e-2b0e-4c55-9d8a-0b6d2d6c3a11",
		Name:      "Acme",
		CreatedAt: now,
		UpdatedAt: now,
		Admins:    []*domain.User{{ID: "u1", Email: "a@b.org", Role: domain.RoleAdmin}},
	}

	got := NewOrganizationResponse(org)

	assert.Equal(t, org.ID, got.ID)
	assert.Equal(t, "Acme", got.Name)
	require.Len(t, got.Admins, 1)
	assert.Equal(t, "admin", got.Admins[0].Role)

	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"org_name":"Acme"`)
}

func TestNewOrganizationResponses_NeverNil(t *testing.T) {
	got := NewOrganizationResponses(nil)
	require.NotNil(t, got)

	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
}

func TestRequestConversions(t *testing.T) {
	name := "Renamed"
	patch := UpdateOrganizationRequest{Name: &name}.ToPatch()
	assert.Equal(t, &name, patch.Name)
	assert.Nil(t, patch.Description)

	input := CreateUserRequest{Email: "a@b.org", Role: "admin"}.ToInput()
	assert.Equal(t, domain.RoleAdmin, input.Role)
}

func TestBindBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName string
		wantErr  bool
	}{
		{name: "valid body", body: `{"org_name":"Acme"}`, wantName: "Acme"},
		{name: "empty body", body: ""},
		{name: "malformed body", body: `{"org_name":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var req CreateOrganizationRequest
			err := BindBody(c, &req)

			if tt.wantErr {
				require.ErrorIs(t, err, ErrBinding)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, req.Name)

			// The body is cached and can be bound a second time.
			var again CreateOrganizationRequest
			require.NoError(t, BindBody(c, &again))
			assert.Equal(t, req, again)
		})
	}
}

func TestValidator(t *testing.T) {
	v1 := Validator()
	v2 := Validator()

	assert.NotNil(t, v1)
	assert.Same(t, v1, v2)
}

func TestValidateUUID(t *testing.T) {
	tests := []struct {
		name    string
		uuid    string
		wantErr bool
	}{
		{name: "valid UUID", uuid: "123e4567-e89b-12d3-a456-426614174000"},
		{name: "invalid UUID", uuid: "not-a-uuid", wantErr: true},
		{name: "empty UUID is valid", uuid: ""},
		{name: "UUID without hyphens is valid", uuid: "123e4567e89b12d3a456426614174000"},
		{name: "urn spelling is valid", uuid: "urn:uuid:123e4567-e89b-12d3-a456-426614174000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validator().Var(tt.uuid, "uuid")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateNotEmpty(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "non-empty string", value: "hello"},
		{name: "empty string", value: "", wantErr: true},
		{name: "whitespace only", value: "   ", wantErr: true},
		{name: "tabs and spaces", value: "\t  \n", wantErr: true},
		{name: "string with spaces but also content", value: "  hello  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validator().Var(tt.value, "notempty")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRole(t *testing.T) {
	for _, role := range []string{"admin", "member"} {
		assert.NoError(t, Validator().Var(role, "role"), role)
	}

	for _, role := range []string{"owner", "Admin", ""} {
		assert.Error(t, Validator().Var(role, "role"), role)
	}

	assert.NoError(t, Validator().Var("", "omitempty,role"))
}
