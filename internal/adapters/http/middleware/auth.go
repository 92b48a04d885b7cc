package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/globedrop/ngo-directory/internal/adapters/http/dto"
	"github.com/globedrop/ngo-directory/internal/platform/config"
	"github.com/globedrop/ngo-directory/internal/platform/logging"
)

const (
	callerKey = "directory.caller"

	defaultSubjectHeader = "X-User-ID"
	defaultRolesHeader   = "X-User-Roles"
)

// Caller is the identity the gateway forwards once it has checked the
// token. The directory trusts these headers and does no token work itself.
type Caller struct {
	ID    string
	Roles []string
}

// Is reports whether the caller holds role, ignoring case.
func (c *Caller) Is(role string) bool {
	return slices.ContainsFunc(c.Roles, func(r string) bool { return strings.EqualFold(r, role) })
}

func callerFromHeaders(c *gin.Context, cfg *config.AuthConfig) *Caller {
	subjectHeader, rolesHeader := defaultSubjectHeader, defaultRolesHeader

	if cfg != nil && cfg.SubjectHeader != "" {
		subjectHeader = cfg.SubjectHeader
	}

	if cfg != nil && cfg.RolesHeader != "" {
		rolesHeader = cfg.RolesHeader
	}

	return &Caller{
		ID:    c.GetHeader(subjectHeader),
		Roles: splitRoles(c.GetHeader(rolesHeader)),
	}
}

// CallerFrom returns the caller resolved earlier in the chain, or nil.
func CallerFrom(c *gin.Context) *Caller {
	caller, _ := c.Value(callerKey).(*Caller)
	return caller
}

// RequireRole guards directory mutations. Callers without role get the
// FORBIDDEN typed error; the others continue with their id on the request
// logger as actor.
func RequireRole(cfg *config.AuthConfig, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFrom(c)
		if caller == nil {
			caller = callerFromHeaders(c, cfg)
			c.Set(callerKey, caller)
		}

		if !caller.Is(role) {
			_ = c.Error(dto.NewForbiddenError("role " + role + " is required to change the directory"))
			c.Abort()

			return
		}

		c.Request = c.Request.WithContext(logging.With(c.Request.Context(), logging.KeyActor, caller.ID))
		c.Next()
	}
}

func splitRoles(header string) []string {
	roles := make([]string, 0, strings.Count(header, ",")+1)

	for role := range strings.SplitSeq(header, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}

	return roles
}
