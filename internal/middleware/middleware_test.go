package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Ayash-Bera/vbm-explorer/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func guardedRouter(guard *session.Guard) *gin.Engine {
	r := gin.New()
	r.Use(SessionID())
	r.POST("/ask", SessionGuard(guard, quietLogger()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"session": GetSessionID(c)})
	})
	r.POST("/bad", SessionGuard(guard, quietLogger()), func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{})
	})
	r.POST("/upstream", SessionGuard(guard, quietLogger()), func(c *gin.Context) {
		c.JSON(http.StatusBadGateway, gin.H{})
	})
	return r
}

func post(r http.Handler, path, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionGuard_BlocksAfterLimit(t *testing.T) {
	store := session.NewMemoryStore()
	guard := session.NewGuard(store, 2, time.Hour)
	r := guardedRouter(guard)

	assert.Equal(t, http.StatusOK, post(r, "/ask", "session-one").Code)
	assert.Equal(t, http.StatusOK, post(r, "/ask", "session-one").Code)

	w := post(r, "/ask", "session-one")
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var body RateLimitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "rate_limited", body.Error)
	assert.Equal(t, 2, body.Limit)
	assert.InDelta(t, 3600, body.RetryAfterSeconds, 5)
	assert.Contains(t, body.Message, "limit of 2 questions per 1 hour")

	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Equal(t, body.RetryAfterSeconds, retry)

	// other sessions are unaffected
	assert.Equal(t, http.StatusOK, post(r, "/ask", "session-two").Code)
}

func TestSessionGuard_SkipsClientErrors(t *testing.T) {
	store := session.NewMemoryStore()
	guard := session.NewGuard(store, 1, time.Hour)
	r := guardedRouter(guard)

	assert.Equal(t, http.StatusBadRequest, post(r, "/bad", "session-one").Code)
	assert.Equal(t, http.StatusOK, post(r, "/ask", "session-one").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(r, "/ask", "session-one").Code)
}

func TestSessionGuard_CountsUpstreamFailures(t *testing.T) {
	store := session.NewMemoryStore()
	guard := session.NewGuard(store, 1, time.Hour)
	r := guardedRouter(guard)

	assert.Equal(t, http.StatusBadGateway, post(r, "/upstream", "session-one").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(r, "/ask", "session-one").Code)
}

func TestSessionID(t *testing.T) {
	r := guardedRouter(session.NewGuard(session.NewMemoryStore(), 10, time.Hour))

	w := post(r, "/ask", "client-chosen-id")
	assert.Equal(t, "client-chosen-id", w.Header().Get(SessionHeader))

	fingerprinted := post(r, "/ask", "").Header().Get(SessionHeader)
	assert.Len(t, fingerprinted, 16)
	assert.Equal(t, fingerprinted, post(r, "/ask", "").Header().Get(SessionHeader))

	// invalid ids fall back to the fingerprint
	assert.Equal(t, fingerprinted, post(r, "/ask", "no").Header().Get(SessionHeader))
}

func TestQuotaMessage(t *testing.T) {
	tests := []struct {
		window, retry time.Duration
		want          string
	}{
		{time.Hour, 42*time.Minute + 10*time.Second, "You have reached the limit of 20 questions per 1 hour. Try again in 43 minutes."},
		{time.Hour, 30 * time.Second, "You have reached the limit of 20 questions per 1 hour. Try again in 30 seconds."},
		{2 * time.Hour, time.Minute, "You have reached the limit of 20 questions per 2 hours. Try again in 1 minute."},
		{90 * time.Minute, 0, "You have reached the limit of 20 questions per 90 minutes. Try again in 0 seconds."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, QuotaMessage(20, tt.window, tt.retry))
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://explorer.example.org"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://explorer.example.org")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://explorer.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://elsewhere.example.org")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
