package dto

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/globedrop/ngo-directory/internal/domain"
)

// ErrBinding indicates the JSON body could not be decoded.
var ErrBinding = errors.New("binding failed")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the validator shared by the request rule sets. Besides
// the built-in tags it knows:
//
//	uuid      any spelling google/uuid parses; empty passes
//	notempty  not blank after trimming
//	role      a directory role (admin, member)
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()

		_ = validate.RegisterValidation("uuid", func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			return value == "" || domain.IsID(value)
		})
		_ = validate.RegisterValidation("notempty", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return domain.Role(fl.Field().String()).IsValid()
		})
	})

	return validate
}

// BindBody decodes the JSON body into v. The body is cached on the context
// so it can be read again after the validation middleware. An empty body
// leaves v untouched.
func BindBody(c *gin.Context, v any) error {
	err := c.ShouldBindBodyWith(v, binding.JSON)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrBinding, err)
}
