// Package validation runs per-operation rule sets against incoming requests
// before the handler executes.
//
// A rule either fails, recording its default message, or raises, recording
// the raised message and skipping every rule after it. Handlers read the
// accumulated Result from the gin context.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/globedrop/ngo-directory/internal/adapters/http/dto"
)

// Location names where a checked value comes from.
type Location string

const (
	LocationParams Location = "params"
	LocationBody   Location = "body"
	LocationQuery  Location = "query"
)

// resultKey is the gin context key holding the *Result.
const resultKey = "validation.result"

// ErrCheckFailed is returned by a Check to record a plain failure with the
// rule's default message.
var ErrCheckFailed = errors.New("check failed")

// Check inspects a value. present reports whether the field was supplied.
// Returning ErrCheckFailed fails the rule; any other error raises.
type Check func(value any, present bool) error

// Sanitize rewrites a value that passed its check.
type Sanitize func(value string) string

// Rule is one field-level check. Sanitize, when set, only applies to path
// parameters.
type Rule struct {
	Field    string
	Location Location
	Message  string
	Check    Check
	Sanitize Sanitize
}

// Result accumulates the failures of a rule set.
type Result struct {
	errors []dto.FieldError
}

// IsEmpty reports whether every rule passed.
func (r *Result) IsEmpty() bool {
	return len(r.errors) == 0
}

// Errors returns the failures in rule order. The result is never nil.
func (r *Result) Errors() []dto.FieldError {
	if r.errors == nil {
		return []dto.FieldError{}
	}

	return r.errors
}

// FieldError returns the first failure recorded for param.
func (r *Result) FieldError(param string) (dto.FieldError, bool) {
	for _, fe := range r.errors {
		if fe.Param == param {
			return fe, true
		}
	}

	return dto.FieldError{}, false
}

// Run evaluates rules against the request in order.
func Run(c *gin.Context, rules []Rule) (*Result, error) {
	var body map[string]any

	result := &Result{}

	for _, rule := range rules {
		var (
			value   any
			present bool
		)

		switch rule.Location {
		case LocationParams:
			value, present = c.Params.Get(rule.Field)
		case LocationQuery:
			value, present = c.GetQuery(rule.Field)
		case LocationBody:
			if body == nil {
				var err error

				body, err = parseBody(c)
				if err != nil {
					return nil, err
				}
			}

			value, present = body[rule.Field]
		default:
			return nil, fmt.Errorf("unknown validation location %q", rule.Location)
		}

		err := rule.Check(value, present)
		if err == nil {
			if rule.Sanitize != nil && rule.Location == LocationParams {
				sanitizeParam(c, rule.Field, rule.Sanitize)
			}

			continue
		}

		fe := dto.FieldError{
			Value:    value,
			Msg:      rule.Message,
			Param:    rule.Field,
			Location: string(rule.Location),
		}

		if !errors.Is(err, ErrCheckFailed) {
			fe.Msg = err.Error()
			result.errors = append(result.errors, fe)

			break
		}

		result.errors = append(result.errors, fe)
	}

	return result, nil
}

// Middleware runs the rule set of op and stores the Result for the handler.
// A body that is not a JSON object is forwarded as a BAD_INPUT error, with
// status 413 when it was cut off by the server's size limit.
func Middleware(op Operation) gin.HandlerFunc {
	rules := For(op)

	return func(c *gin.Context) {
		result, err := Run(c, rules)
		if err != nil {
			status := http.StatusUnprocessableEntity

			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
			}

			_ = c.Error(dto.NewBadInputError(status, map[string]string{
				"message": err.Error(),
			}))
			c.Abort()

			return
		}

		c.Set(resultKey, result)
		c.Next()
	}
}

// FromContext returns the Result stored by Middleware, or an empty one.
func FromContext(c *gin.Context) *Result {
	if v, ok := c.Get(resultKey); ok {
		if result, ok := v.(*Result); ok {
			return result
		}
	}

	return &Result{}
}

func sanitizeParam(c *gin.Context, key string, fn Sanitize) {
	for i := range c.Params {
		if c.Params[i].Key == key {
			c.Params[i].Value = fn(c.Params[i].Value)
		}
	}
}

// parseBody decodes the JSON body as an object and caches the raw bytes so
// the handler can bind it again.
func parseBody(c *gin.Context) (map[string]any, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	c.Set(gin.BodyBytesKey, raw)

	body := map[string]any{}
	if len(raw) == 0 {
		return body, nil
	}

	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errors.New("request body must be a JSON object")
	}

	if body == nil {
		body = map[string]any{}
	}

	return body, nil
}
