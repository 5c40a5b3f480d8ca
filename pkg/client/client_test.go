package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/followup-compliance/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 2*time.Millisecond)}, opts...)
	c, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://api.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com/api/v1", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "followup-go-sdk/")

	for _, bad := range []string{"", "ftp://invalid", "invalid-url"} {
		_, err := NewClient(bad)
		assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest), bad)
	}
}

func TestOptions(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c, err := NewClient("https://x", WithHTTPClient(hc), WithRetryMax(0), WithRetryWait(time.Second, time.Millisecond), WithUserAgent("ua"))
	require.NoError(t, err)
	assert.Same(t, hc, c.httpClient)
	assert.Equal(t, 0, c.retryMax)
	assert.Equal(t, time.Second, c.retryWaitMin)
	assert.Equal(t, 5*time.Second, c.retryWaitMax, "max below min is ignored")
	assert.Equal(t, "ua", c.userAgent)

	c, _ = NewClient("https://x", WithRetryMax(-1), WithUserAgent(""), WithHTTPClient(nil))
	assert.Equal(t, 3, c.retryMax)
	assert.NotEmpty(t, c.userAgent)
	assert.NotNil(t, c.httpClient)
}

type recordingLogger struct{ debug, errs []string }

func (l *recordingLogger) Debugf(format string, args ...interface{}) {
	l.debug = append(l.debug, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.errs = append(l.errs, fmt.Sprintf(format, args...))
}

func TestWithLogger(t *testing.T) {
	logger := &recordingLogger{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{}})
	}, WithLogger(logger))

	_, err := c.Patient("pat-1").Compliance(context.Background())
	require.NoError(t, err)
	require.Len(t, logger.debug, 1)
	assert.Contains(t, logger.debug[0], "GET /patient/commitments 200")
	assert.Empty(t, logger.errs)

	c, _ = NewClient("https://x", WithLogger(nil))
	assert.NotNil(t, c.logger)
}

func TestPatientClient_SendsIdentityAndDecodesEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/patient/commitments", r.URL.Path)
		assert.Equal(t, "pat-1", r.Header.Get(PatientHeader))
		assert.Empty(t, r.Header.Get(DoctorHeader))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": []map[string]interface{}{{"checkpointId": "dailySelfAssessment", "state": "pending", "dueDate": nil}},
		})
	})

	items, err := c.Patient("pat-1").Compliance(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, StatePending, items[0].State)
	assert.Nil(t, items[0].DueDate)
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"code": "SUBMISSION_DUPLICATE", "message": "already filled"})
	})

	_, err := c.Patient("pat-1").Submit(context.Background(), SubmitRequest{PlanID: "p1", TimeType: "oneMonth"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsConflict())
	assert.Equal(t, "SUBMISSION_DUPLICATE", apiErr.Code)
	assert.Equal(t, "already filled", apiErr.Message)
	assert.NotEmpty(t, apiErr.RequestID)
	assert.Contains(t, apiErr.Error(), "HTTP 409")
}

func TestClient_RetriesIdempotentRequests(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusBadGateway, map[string]string{"code": "X", "message": "upstream"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{}})
	})

	plans, err := c.Doctor("doc-1").ListPlans(context.Background())
	require.NoError(t, err)
	assert.Empty(t, plans)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryPost(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"code": "COMMON_001", "message": "internal"})
	})

	_, err := c.Doctor("doc-1").CreatePlan(context.Background(), CreatePlanRequest{Title: "x", TimeTypes: []string{"oneMonth"}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_NoRetryOn4xx(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not json"))
	})

	_, err := c.Doctor("doc-1").GetPlan(context.Background(), "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "not json", apiErr.Message)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_ContextCancelledDuringBackoff(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithRetryWait(time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Patient("pat-1").History(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoff(t *testing.T) {
	c, _ := NewClient("http://x", WithRetryWait(100*time.Millisecond, 300*time.Millisecond))
	for attempt, max := range map[int]time.Duration{1: 125 * time.Millisecond, 2: 250 * time.Millisecond, 5: 375 * time.Millisecond} {
		d := c.backoff(attempt)
		assert.LessOrEqual(t, d, max)
		assert.GreaterOrEqual(t, d, max*4/5)
	}
}
