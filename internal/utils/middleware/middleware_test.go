package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/uniedit/orgauth/internal/domain/auth"
	"github.com/uniedit/orgauth/internal/domain/authz"
	"github.com/uniedit/orgauth/internal/shared/logger"
	"github.com/uniedit/orgauth/internal/utils/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAuthorizer struct {
	mock.Mock
}

func (m *mockAuthorizer) Authorize(ctx context.Context, token string, guards ...authz.Guard) (*auth.Identity, error) {
	args := m.Called(ctx, token, guards)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, key string, n int) (bool, error) {
	args := m.Called(ctx, key, n)
	return args.Bool(0), args.Error(1)
}

func (m *mockLimiter) Remaining(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func renderStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, authz.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func orgGuard(c *gin.Context) ([]authz.Guard, error) {
	orgID, err := uuid.Parse(c.Param("org_id"))
	if err != nil {
		return nil, err
	}
	return []authz.Guard{authz.OrgMember(orgID)}, nil
}

func TestRequireGuards(t *testing.T) {
	id := &auth.Identity{UserID: uuid.New(), Email: "alice@example.com"}
	orgID := uuid.New()

	setup := func(a *mockAuthorizer) *gin.Engine {
		router := gin.New()
		router.GET("/orgs/:org_id", RequireGuards(a, renderStatus, orgGuard), func(c *gin.Context) {
			assert.Equal(t, id, GetIdentity(c))
			c.String(http.StatusOK, GetUserID(c).String()+" "+GetEmail(c))
		})
		return router
	}

	t.Run("allowed request sees identity", func(t *testing.T) {
		a := &mockAuthorizer{}
		a.On("Authorize", mock.Anything, "tok", []authz.Guard{authz.OrgMember(orgID)}).Return(id, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/orgs/"+orgID.String(), nil)
		req.Header.Set(AuthorizationHeader, "Bearer tok")
		setup(a).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id.UserID.String()+" alice@example.com", w.Body.String())
	})

	t.Run("bearer prefix is case insensitive", func(t *testing.T) {
		a := &mockAuthorizer{}
		a.On("Authorize", mock.Anything, "tok", mock.Anything).Return(id, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/orgs/"+orgID.String(), nil)
		req.Header.Set(AuthorizationHeader, "bearer tok")
		setup(a).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("forbidden aborts", func(t *testing.T) {
		a := &mockAuthorizer{}
		a.On("Authorize", mock.Anything, "tok", mock.Anything).Return(nil, authz.ErrForbidden)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/orgs/"+orgID.String(), nil)
		req.Header.Set(AuthorizationHeader, "Bearer tok")
		setup(a).ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("bad path id is 401 for anonymous callers", func(t *testing.T) {
		a := &mockAuthorizer{}
		a.On("Authorize", mock.Anything, "", []authz.Guard(nil)).Return(nil, authz.ErrUnauthenticated)

		w := httptest.NewRecorder()
		setup(a).ServeHTTP(w, httptest.NewRequest("GET", "/orgs/not-a-uuid", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad path id is 400 for authenticated callers", func(t *testing.T) {
		a := &mockAuthorizer{}
		a.On("Authorize", mock.Anything, "tok", []authz.Guard(nil)).Return(id, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/orgs/not-a-uuid", nil)
		req.Header.Set(AuthorizationHeader, "Bearer tok")
		setup(a).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	a := &mockAuthorizer{}
	a.On("Authorize", mock.Anything, "", []authz.Guard(nil)).Return(nil, authz.ErrUnauthenticated)

	router := gin.New()
	router.GET("/me", RequireAuth(a, renderStatus), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set(AuthorizationHeader, "Basic abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	a.AssertExpectations(t)
}

func TestRequestID(t *testing.T) {
	setup := func() *gin.Engine {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, GetRequestID(c))
		})
		return router
	}

	t.Run("generates new request ID when not provided", func(t *testing.T) {
		w := httptest.NewRecorder()
		setup().ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		headerID := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, headerID)
		assert.Equal(t, headerID, w.Body.String())
	})

	t.Run("uses existing request ID from header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "existing-request-id-123")
		w := httptest.NewRecorder()
		setup().ServeHTTP(w, req)

		assert.Equal(t, "existing-request-id-123", w.Body.String())
	})

	t.Run("replaces oversized request ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, string(bytes.Repeat([]byte("a"), 200)))
		w := httptest.NewRecorder()
		setup().ServeHTTP(w, req)

		_, err := uuid.Parse(w.Body.String())
		assert.NoError(t, err)
	})
}

func TestLogging(t *testing.T) {
	setup := func(level string, status int) (*gin.Engine, *bytes.Buffer) {
		buf := &bytes.Buffer{}
		log := logger.New(&logger.Config{Level: level, Format: "json", Output: buf})

		router := gin.New()
		router.Use(RequestID())
		router.Use(Logging(log))
		router.GET("/test", func(c *gin.Context) {
			c.String(status, "body")
		})
		return router, buf
	}

	t.Run("logs successful requests", func(t *testing.T) {
		router, buf := setup("info", http.StatusOK)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

		out := buf.String()
		assert.Contains(t, out, "HTTP Request")
		assert.Contains(t, out, "/test")
		assert.Contains(t, out, "request_id")
	})

	t.Run("logs 4xx requests as warnings", func(t *testing.T) {
		router, buf := setup("warn", http.StatusGone)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

		assert.Contains(t, buf.String(), "WARN")
		assert.Contains(t, buf.String(), "410")
	})

	t.Run("logs 5xx requests as errors", func(t *testing.T) {
		router, buf := setup("error", http.StatusInternalServerError)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

		assert.Contains(t, buf.String(), "ERROR")
	})

	t.Run("redacts token query parameters", func(t *testing.T) {
		router, buf := setup("info", http.StatusOK)
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test?token=s3cret&page_size=5", nil))

		out := buf.String()
		assert.NotContains(t, out, "s3cret")
		assert.Contains(t, out, "REDACTED")
		assert.Contains(t, out, "page_size=5")
	})
}

func TestRecovery(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(&logger.Config{Level: "error", Format: "json", Output: buf})

		router := gin.New()
		router.Use(Recovery(log))
		router.GET("/panic", func(c *gin.Context) {
			panic("test panic")
		})

		w := httptest.NewRecorder()
		require.NotPanics(t, func() {
			router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
		assert.Contains(t, buf.String(), "test panic")
	})

	t.Run("uses default logger when nil", func(t *testing.T) {
		router := gin.New()
		router.Use(Recovery(nil))
		router.GET("/panic", func(c *gin.Context) {
			panic("test panic")
		})

		w := httptest.NewRecorder()
		require.NotPanics(t, func() {
			router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	setup := func(l Limiter) *gin.Engine {
		router := gin.New()
		router.POST("/accept", RateLimit(l, RateLimitConfig{Limit: 10, Window: time.Minute}), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	t.Run("allows under the limit", func(t *testing.T) {
		l := &mockLimiter{}
		l.On("Allow", mock.Anything, mock.AnythingOfType("string"), 1).Return(true, nil)
		l.On("Remaining", mock.Anything, mock.AnythingOfType("string")).Return(9, nil)

		w := httptest.NewRecorder()
		setup(l).ServeHTTP(w, httptest.NewRequest("POST", "/accept", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "9", w.Header().Get(RateLimitRemaining))
	})

	t.Run("rejects over the limit", func(t *testing.T) {
		l := &mockLimiter{}
		l.On("Allow", mock.Anything, mock.Anything, 1).Return(false, nil)
		l.On("Remaining", mock.Anything, mock.Anything).Return(0, nil)

		w := httptest.NewRecorder()
		setup(l).ServeHTTP(w, httptest.NewRequest("POST", "/accept", nil))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get(RetryAfter))
	})

	t.Run("limiter errors fail open", func(t *testing.T) {
		l := &mockLimiter{}
		l.On("Allow", mock.Anything, mock.Anything, 1).Return(false, errors.New("redis down"))

		w := httptest.NewRecorder()
		setup(l).ServeHTTP(w, httptest.NewRequest("POST", "/accept", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("nil limiter is a no-op", func(t *testing.T) {
		w := httptest.NewRecorder()
		setup(nil).ServeHTTP(w, httptest.NewRequest("POST", "/accept", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestMetrics(t *testing.T) {
	m := metrics.New("test", nil)
	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/orgs/:org_id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/orgs/"+uuid.NewString(), nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/nowhere", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/orgs/:org_id", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "4xx")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.HTTPRequestsInFlight))
}

func TestCORS(t *testing.T) {
	t.Run("any origin", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(nil))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "http://example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("listed origin", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS([]string{"http://allowed.com"}))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Origin", "http://allowed.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "http://allowed.com", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
