package handlers

import (
	"math"
	"net/http"
	"time"

	"github.com/Ayash-Bera/vbm-explorer/internal/health"
	"github.com/Ayash-Bera/vbm-explorer/internal/middleware"
	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/Ayash-Bera/vbm-explorer/internal/services"
	"github.com/Ayash-Bera/vbm-explorer/internal/session"
	"github.com/Ayash-Bera/vbm-explorer/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// sessionHistoryLimit caps the questions returned by /api/session.
const sessionHistoryLimit = 20

type StatusHandler struct {
	guard    *session.Guard
	checker  *health.HealthChecker
	explorer *services.ExplorerService
	logger   *logrus.Logger
}

func NewStatusHandler(guard *session.Guard, checker *health.HealthChecker, explorer *services.ExplorerService, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{guard: guard, checker: checker, explorer: explorer, logger: logger}
}

// HandleSession reports the caller's remaining quota
func (h *StatusHandler) HandleSession(c *gin.Context) {
	id := middleware.GetSessionID(c)
	status, err := h.guard.Check(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read session quota")
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Session store unavailable", err)
		return
	}

	resetsIn := int(math.Ceil(status.RetryAfter(time.Now()).Seconds()))
	if status.Used == 0 {
		resetsIn = 0
	}

	history, err := h.explorer.SessionHistory(id, sessionHistoryLimit)
	if err != nil {
		h.logger.WithError(err).WithField("session", id).Debug("Failed to load session history")
	}

	utils.SuccessResponse(c, http.StatusOK, "Session status", models.SessionResponse{
		SessionID: status.ID,
		Used:      status.Used,
		Limit:     status.Limit,
		Remaining: status.Remaining,
		ResetsIn:  resetsIn,
		History:   history,
	})
}

// HandleHealth returns the latest health summary; 503 when a required
// dependency is down.
func (h *StatusHandler) HandleHealth(c *gin.Context) {
	result := h.checker.Latest(c.Request.Context())
	code := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, result)
}
