package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/globedrop/ngo-directory/internal/adapters/http/dto"
	"github.com/globedrop/ngo-directory/internal/domain"
	"github.com/globedrop/ngo-directory/internal/platform/config"
	"github.com/globedrop/ngo-directory/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// renderErrors stands in for the error handler: it writes the status and
// code of the last forwarded error.
func renderErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if last := c.Errors.Last(); last != nil && !c.Writer.Written() {
			apiErr := dto.AsAPIError(last.Err)
			c.JSON(apiErr.Status, dto.NewErrorResponse(apiErr.Code, apiErr.Message))
		}
	}
}

// TestRequestIDMiddleware tests the RequestID middleware.
func TestRequestIDMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		existingHeaderID string
		expectGenerated  bool
	}{
		{
			name:            "generates UUID when no header present",
			expectGenerated: true,
		},
		{
			name:             "passes through existing header",
			existingHeaderID: "existing-req-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var capturedID string

			router := gin.New()
			router.Use(RequestID())
			router.GET("/test", func(c *gin.Context) {
				capturedID = GetRequestID(c)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.existingHeaderID != "" {
				req.Header.Set(HeaderRequestID, tt.existingHeaderID)
			}

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, w.Header().Get(HeaderRequestID), capturedID)

			if tt.expectGenerated {
				_, err := uuid.Parse(capturedID)
				require.NoError(t, err)
			} else {
				assert.Equal(t, tt.existingHeaderID, capturedID)
			}
		})
	}
}

// TestCorrelationIDMiddleware tests the CorrelationID middleware.
func TestCorrelationIDMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("propagates upstream id", func(t *testing.T) {
		t.Parallel()

		var capturedID string

		router := gin.New()
		router.Use(CorrelationID())
		router.GET("/test", func(c *gin.Context) {
			capturedID = GetCorrelationID(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderCorrelationID, "existing-corr-456")

		router.ServeHTTP(w, req)

		assert.Equal(t, "existing-corr-456", capturedID)
		assert.Equal(t, "existing-corr-456", w.Header().Get(HeaderCorrelationID))
	})

	t.Run("request and correlation ids differ when generated", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(RequestID(), CorrelationID())
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.NotEmpty(t, w.Header().Get(HeaderCorrelationID))
		assert.NotEqual(t, w.Header().Get(HeaderRequestID), w.Header().Get(HeaderCorrelationID))
	})
}

func TestGetRequestID_NotSet(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetRequestID(c))
	assert.Empty(t, GetCorrelationID(c))
}

func TestCaller_Is(t *testing.T) {
	t.Parallel()

	caller := &Caller{Roles: []string{"Admin", "member"}}

	assert.True(t, caller.Is("admin"))
	assert.True(t, caller.Is("MEMBER"))
	assert.False(t, caller.Is("guest"))
	assert.False(t, (&Caller{}).Is("admin"))
}

func TestCallerFromHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *config.AuthConfig
		headers map[string]string
		want    *Caller
	}{
		{
			name: "default gateway headers",
			headers: map[string]string{
				defaultSubjectHeader: "user-123",
				defaultRolesHeader:   "admin, member",
			},
			want: &Caller{ID: "user-123", Roles: []string{"admin", "member"}},
		},
		{
			name:   "configured headers",
			config: &config.AuthConfig{SubjectHeader: "X-Auth-Sub", RolesHeader: "X-Auth-Roles"},
			headers: map[string]string{
				"X-Auth-Sub":   "user-456",
				"X-Auth-Roles": "admin",
			},
			want: &Caller{ID: "user-456", Roles: []string{"admin"}},
		},
		{
			name:    "anonymous",
			headers: map[string]string{},
			want:    &Caller{Roles: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/organizations", nil)

			for key, value := range tt.headers {
				c.Request.Header.Set(key, value)
			}

			assert.Equal(t, tt.want, callerFromHeaders(c, tt.config))
		})
	}
}

func TestCallerFrom(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, CallerFrom(c))

	c.Set(callerKey, &Caller{ID: "user-123"})

	caller := CallerFrom(c)
	require.NotNil(t, caller)
	assert.Equal(t, "user-123", caller.ID)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		rolesHeader    string
		expectedStatus int
		handlerCalled  bool
	}{
		{
			name:           "passes with matching role",
			rolesHeader:    "admin,member",
			expectedStatus: http.StatusOK,
			handlerCalled:  true,
		},
		{
			name:           "forwards forbidden without matching role",
			rolesHeader:    "member",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "forwards forbidden without roles header",
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false

			router := gin.New()
			router.Use(renderErrors(), RequireRole(nil, "admin"))
			router.DELETE("/organizations/:id", func(c *gin.Context) {
				called = true
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/organizations/"+uuid.NewString(), nil)
			if tt.rolesHeader != "" {
				req.Header.Set(defaultRolesHeader, tt.rolesHeader)
			}

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.handlerCalled, called)

			if tt.expectedStatus == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), dto.CodeForbidden)
				assert.Contains(t, w.Body.String(), "role admin is required")
			}
		})
	}
}

func TestRequireRole_ReusesResolvedCaller(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(renderErrors(), func(c *gin.Context) {
		c.Set(callerKey, &Caller{ID: "svc", Roles: []string{"admin"}})
		c.Next()
	}, RequireRole(nil, "admin"))
	router.POST("/organizations", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/organizations", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequireRole_TagsActor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	router := gin.New()
	router.Use(func(c *gin.Context) {
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
		c.Next()
	}, RequireRole(nil, "admin"))
	router.POST("/organizations", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("organization created")
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/organizations", nil)
	req.Header.Set(defaultSubjectHeader, "ops-42")
	req.Header.Set(defaultRolesHeader, "admin")

	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"actor":"ops-42"`)
}

// withLogger installs a JSON logger writing to buf on the request context.
func withLogger(buf *bytes.Buffer) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := slog.New(slog.NewJSONHandler(buf, nil))
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
		c.Next()
	}
}

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
		wantRoute string
	}{
		{"matched route", "/api/organizations/" + uuid.Nil.String(), http.StatusOK, "INFO", "/api/organizations/:id"},
		{"query string kept in path", "/api/organizations?limit=10&skip=5", http.StatusOK, "INFO", "/api/organizations"},
		{"422 at warn level", "/api/organizations?fail=422", http.StatusUnprocessableEntity, "WARN", "/api/organizations"},
		{"500 at error level", "/api/organizations?fail=500", http.StatusInternalServerError, "ERROR", "/api/organizations"},
		{"unmatched route", "/api/nowhere", http.StatusNotFound, "WARN", "unmatched"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			router := gin.New()
			router.Use(withLogger(&buf), Logging())
			handler := func(c *gin.Context) { c.Status(tt.status) }
			router.GET("/api/organizations", handler)
			router.GET("/api/organizations/:id", handler)

			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, "request completed", entry["msg"])
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.wantRoute, entry["route"])
			assert.Equal(t, tt.path, entry["path"])
			assert.InDelta(t, float64(tt.status), entry["status"], 0)
		})
	}
}

func TestLogging_SkipsOperationalPaths(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	router := gin.New()
	router.Use(withLogger(&buf), Logging())
	router.GET("/-/live", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/-/live", nil))

	assert.Empty(t, buf.String())
}

func TestLogging_CarriesHandlerScopeAndError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	router := gin.New()
	router.Use(withLogger(&buf), Logging(), renderErrors())
	router.GET("/api/organizations/:id", func(c *gin.Context) {
		c.Request = c.Request.WithContext(logging.WithOrganizationID(c.Request.Context(), c.Param("id")))
		_ = c.Error(errors.New("finding organization: connection refused"))
	})

	router.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/api/organizations/"+uuid.Nil.String(), nil))

	assert.Contains(t, buf.String(), `"organization_id":"`+uuid.Nil.String()+`"`)
	assert.Contains(t, buf.String(), `"error":"finding organization: connection refused"`)
}

// TestRecovery tests the Recovery middleware.
func TestRecovery(t *testing.T) {
	t.Parallel()

	t.Run("normal request passes through", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(renderErrors(), Recovery())
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("panic is forwarded as internal error", func(t *testing.T) {
		t.Parallel()

		var forwarded error

		router := gin.New()
		router.Use(func(c *gin.Context) {
			c.Next()
			if last := c.Errors.Last(); last != nil {
				forwarded = last.Err
			}
		}, renderErrors(), Recovery())
		router.GET("/test", func(_ *gin.Context) {
			panic("something went wrong")
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "an internal error occurred")

		var apiErr *dto.APIError
		require.True(t, errors.As(forwarded, &apiErr))
		assert.Equal(t, dto.CodeInternal, apiErr.Code)
	})
}

func TestStoreDeadline(t *testing.T) {
	t.Parallel()

	var deadline time.Time
	var hasDeadline bool

	router := gin.New()
	router.Use(StoreDeadline(5 * time.Second))
	router.GET("/organizations", func(c *gin.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/organizations", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, hasDeadline, "context should have deadline")
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
}

func TestStoreDeadline_ExpiredForwardsUnavailable(t *testing.T) {
	t.Parallel()

	var forwarded error

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Next()
		if last := c.Errors.Last(); last != nil {
			forwarded = last.Err
		}
	})
	router.Use(StoreDeadline(time.Millisecond))
	router.GET("/organizations", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/organizations", nil))

	require.Error(t, forwarded)
	assert.True(t, domain.IsUnavailable(forwarded), "unexpected error: %v", forwarded)
}

func TestStoreDeadline_KeepsHandlerError(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("listing organizations: context deadline exceeded")

	var forwarded []error

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Next()
		for _, e := range c.Errors {
			forwarded = append(forwarded, e.Err)
		}
	})
	router.Use(StoreDeadline(time.Millisecond))
	router.GET("/organizations", func(c *gin.Context) {
		<-c.Request.Context().Done()
		_ = c.Error(storeErr)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/organizations", nil))

	assert.Equal(t, []error{storeErr}, forwarded)
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		production bool
	}{
		{"non production omits HSTS", false},
		{"production sets HSTS", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := gin.New()
			router.Use(SecurityHeaders(tt.production))
			router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
			assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))

			if tt.production {
				assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
			} else {
				assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
			}
		})
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	newRouter := func(origins []string) *gin.Engine {
		router := gin.New()
		router.Use(CORS(origins))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		return router
	}

	t.Run("wildcard allows any origin", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://anywhere.example")

		newRouter([]string{"*"}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("listed origin is echoed", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://ngo.example")

		newRouter([]string{"https://ngo.example"}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://ngo.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin is rejected", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://evil.example")

		newRouter([]string{"https://ngo.example"}).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight is answered", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "https://ngo.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)

		newRouter(nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
	})
}

func TestSplitRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single value", "admin", []string{"admin"}},
		{"multiple values", "admin,member", []string{"admin", "member"}},
		{"trims whitespace", " admin , member ", []string{"admin", "member"}},
		{"skips empty entries", "admin,,member,", []string{"admin", "member"}},
		{"only separators", ",,", []string{}},
		{"empty header", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, splitRoles(tt.input))
		})
	}
}
