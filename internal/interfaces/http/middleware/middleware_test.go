package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/followup-compliance/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/followup-compliance/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, logging.RequestIDFromContext(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := serve(r, req)
	assert.Equal(t, "req-123", rec.Body.String())
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	minted := rec.Header().Get(RequestIDHeader)
	assert.Len(t, minted, 36)
	assert.Equal(t, minted, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", 200))
	rec = serve(r, req)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestRequireIdentity(t *testing.T) {
	r := gin.New()
	r.GET("/patient", RequireIdentity(RolePatient, logging.NewNopLogger()), func(c *gin.Context) {
		c.String(http.StatusOK, PatientID(c))
	})
	r.GET("/doctor", RequireIdentity(RoleDoctor, logging.NewNopLogger()), func(c *gin.Context) {
		c.String(http.StatusOK, DoctorID(c)+"|"+PatientID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/patient", nil)
	req.Header.Set(PatientHeader, " pat-1 ")
	rec := serve(r, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pat-1", rec.Body.String())

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/patient", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"code":"`+string(errors.ErrCodeUnauthorized)+`","message":"patient identity is required: X-Patient-ID"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/patient", nil)
	req.Header.Set(PatientHeader, "pat 1; drop")
	rec = serve(r, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// a patient header does not satisfy a doctor route
	req = httptest.NewRequest(http.MethodGet, "/doctor", nil)
	req.Header.Set(PatientHeader, "pat-1")
	rec = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/doctor", nil)
	req.Header.Set(DoctorHeader, "doc-1")
	rec = serve(r, req)
	assert.Equal(t, "doc-1|", rec.Body.String())
}

func TestAbortWithError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   errors.ErrorCode
		msg    string
	}{
		{"domain not found", errors.New(errors.ErrCodePlanNotFound, "plan not found").WithDetail("p1"), http.StatusNotFound, errors.ErrCodePlanNotFound, "plan not found: p1"},
		{"duplicate", errors.New(errors.ErrCodeSubmissionDuplicate, "already filled"), http.StatusConflict, errors.ErrCodeSubmissionDuplicate, "already filled"},
		{"discarded", errors.New(errors.ErrCodePlanDiscarded, "discarded"), http.StatusBadRequest, errors.ErrCodePlanDiscarded, "discarded"},
		{"database error is masked", errors.New(errors.ErrCodeDatabaseError, "pq: relation missing"), http.StatusInternalServerError, errors.ErrCodeDatabaseError, errors.DefaultMessageForCode(errors.ErrCodeDatabaseError)},
		{"plain error", io.ErrUnexpectedEOF, http.StatusInternalServerError, errors.ErrCodeInternal, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", func(c *gin.Context) { AbortWithError(c, tc.err) })
			rec := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tc.status, rec.Code)
			assert.JSONEq(t, `{"code":"`+string(tc.code)+`","message":"`+tc.msg+`"}`, rec.Body.String())
		})
	}
}

func TestRequestLogging_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.NewLoggerFromCore(core)

	r := gin.New()
	r.Use(RequestID(), RequestLogging(logger, DefaultLoggingConfig()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { AbortWithError(c, errors.NotFound("nothing here")) })
	r.GET("/boom", func(c *gin.Context) { AbortWithError(c, errors.Internal("boom")) })

	for _, p := range []string{"/ok?x=1", "/healthz", "/missing", "/boom"} {
		serve(r, httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3, "probe paths are skipped")
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok?x=1", entries[0].ContextMap()["path"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Contains(t, entries[2].ContextMap()["error"], "boom")
}

func TestMetrics(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "test", Subsystem: "http"}, logging.NewNopLogger())
	require.NoError(t, err)
	m := prometheus.NewFollowupMetrics(collector)

	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/plans/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/plans/p1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/plans/p2", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `test_http_http_requests_total{method="GET",path="/plans/:id",status_code="200"} 2`)
	assert.Contains(t, body, `path="unmatched",status_code="404"} 1`)
	assert.Contains(t, body, `test_http_http_active_requests 0`)
}

func TestCORS(t *testing.T) {
	h, err := CORS(CORSConfig{AllowedOrigins: []string{"https://app.example.com"}})
	require.NoError(t, err)

	r := gin.New()
	r.Use(h)
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", PatientHeader)
	rec := serve(r, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = serve(r, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	_, err = CORS(CORSConfig{AllowedOrigins: []string{"app.example.com"}})
	assert.Error(t, err)

	all, err := CORS(CORSConfig{})
	require.NoError(t, err)
	assert.NotNil(t, all)
}
