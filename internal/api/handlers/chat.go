package handlers

import (
	"net/http"

	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/Ayash-Bera/vbm-explorer/internal/narration"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ChatHandler exposes the narration relay directly. Its wire format is
// {content} on success and {error:{message}} on failure.
type ChatHandler struct {
	relay  *narration.Relay
	logger *logrus.Logger
}

func NewChatHandler(relay *narration.Relay, logger *logrus.Logger) *ChatHandler {
	return &ChatHandler{relay: relay, logger: logger}
}

func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeChatError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	messages := make([]narration.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role != narration.RoleUser && m.Role != narration.RoleAssistant {
			writeChatError(c, http.StatusBadRequest, "message role must be user or assistant")
			return
		}
		messages = append(messages, narration.Message{Role: m.Role, Content: m.Content})
	}

	text, err := h.relay.Complete(c.Request.Context(), narration.Request{
		System:    req.System,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		nerr := narration.AsError(err)
		writeChatError(c, nerr.Status, nerr.Message)
		return
	}

	c.JSON(http.StatusOK, models.ChatResponse{Content: text})
}

func writeChatError(c *gin.Context, status int, message string) {
	var body models.ChatError
	body.Error.Message = message
	c.JSON(status, body)
}
