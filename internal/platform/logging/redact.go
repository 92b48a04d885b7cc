package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// Attribute keys whose values never reach the log.
var (
	// secretKeys covers credentials: the gateway's headers, the postgres URL
	// and the redis password from configs/*.yaml.
	secretKeys = []string{
		"password", "redis_password",
		"token", "access_token", "refresh_token",
		"authorization", "cookie", "session",
		"api_key", "apiKey",
		"dsn", "database_url",
	}

	// piiKeys covers contact details of directory users.
	piiKeys = []string{"email", "phone"}
)

var (
	// A postgres URL with a password, whatever the attribute is called.
	credentialURL = regexp.MustCompile(`(?i)^postgres(ql)?://[^:/@]+:[^@]+@`)

	jwtValue    = regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`)
	authzHeader = regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`)
)

// RedactOptions returns the masq rules applied to every handler built by
// NewWithWriter.
func RedactOptions() []masq.Option {
	opts := make([]masq.Option, 0, len(secretKeys)+len(piiKeys)+5)

	for _, key := range secretKeys {
		opts = append(opts, masq.WithFieldName(key))
	}

	for _, key := range piiKeys {
		opts = append(opts, masq.WithFieldName(key))
	}

	return append(opts,
		masq.WithFieldPrefix("secret"),
		masq.WithFieldPrefix("private"),
		masq.WithRegex(credentialURL),
		masq.WithRegex(jwtValue),
		masq.WithRegex(authzHeader),
	)
}

// NewReplaceAttr returns a slog ReplaceAttr that applies RedactOptions and
// any extra rules.
func NewReplaceAttr(extra ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(RedactOptions(), extra...)...)
}
