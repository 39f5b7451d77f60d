package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Ayash-Bera/vbm-explorer/internal/metrics"
	"github.com/Ayash-Bera/vbm-explorer/internal/session"
	"github.com/Ayash-Bera/vbm-explorer/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	SessionHeader   = "X-Session-ID"
	SessionKey      = "session_id"
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// RateLimitResponse is the 429 body. It keeps the usual envelope fields.
type RateLimitResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	Error             string `json:"error"`
	Limit             int    `json:"limit"`
	RetryAfterSeconds int    `json:"retry_after_seconds"`
}

// SessionID resolves the caller's session from X-Session-ID, falling back to a
// fingerprint of client IP and user agent.
func SessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if !utils.ValidateSessionID(id) {
			id = utils.FingerprintSessionID(c.ClientIP(), c.GetHeader("User-Agent"))
		}
		c.Set(SessionKey, id)
		c.Header(SessionHeader, id)
		c.Next()
	}
}

// GetSessionID returns the id set by SessionID, or a fingerprint when the
// middleware did not run.
func GetSessionID(c *gin.Context) string {
	if id := c.GetString(SessionKey); id != "" {
		return id
	}
	return utils.FingerprintSessionID(c.ClientIP(), c.GetHeader("User-Agent"))
}

// SessionGuard rejects sessions that used up their quota and records one
// question after every request that was not a client error.
func SessionGuard(guard *session.Guard, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetSessionID(c)

		status, err := guard.Check(c.Request.Context(), id)
		if err != nil {
			// fail open when the store is unavailable
			logger.WithError(err).WithField("session_id", id).Warn("Session quota check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(status.Limit))

		if !status.Allowed() {
			retryAfter := status.RetryAfter(time.Now())
			seconds := int(math.Ceil(retryAfter.Seconds()))

			metrics.RateLimited.Inc()
			logger.WithFields(logrus.Fields{
				"session_id":  id,
				"used":        status.Used,
				"retry_after": seconds,
			}).Info("Session quota exceeded")

			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitResponse{
				Success:           false,
				Message:           QuotaMessage(status.Limit, guard.Window(), retryAfter),
				Error:             "rate_limited",
				Limit:             status.Limit,
				RetryAfterSeconds: seconds,
			})
			return
		}

		c.Next()

		if code := c.Writer.Status(); code >= 400 && code < 500 {
			return
		}
		if _, err := guard.Record(c.Request.Context(), id); err != nil {
			logger.WithError(err).WithField("session_id", id).Warn("Failed to record session question")
		}
	}
}

// QuotaMessage tells the user how long until the quota resets.
func QuotaMessage(limit int, window, retryAfter time.Duration) string {
	return fmt.Sprintf("You have reached the limit of %d questions per %s. Try again in %s.",
		limit, humanDuration(window), humanDuration(retryAfter))
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return plural(int(math.Ceil(d.Minutes())), "minute")
	default:
		return plural(int(math.Ceil(d.Seconds())), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
