package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nexusai/broker/internal/broker"
	"github.com/nexusai/broker/internal/guardrails"
	"github.com/nexusai/broker/internal/server/validator"
	"github.com/nexusai/broker/pkg/api"
)

type ChatHandler struct {
	dispatcher *broker.Dispatcher
	guard      guardrails.Checker
}

func NewChatHandler(dispatcher *broker.Dispatcher, guard guardrails.Checker) *ChatHandler {
	return &ChatHandler{
		dispatcher: dispatcher,
		guard:      guard,
	}
}

// Chat serves POST /api/chat. The payload is always a well-formed
// ChatResponse: guardrail blocks and provider exhaustion surface as
// structured fields, not bare transport errors.
func (h *ChatHandler) Chat(c *gin.Context) {
	start := time.Now()

	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// returns RFC compliant error
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	// Guardrails run before candidate resolution; a blocked message
	// never reaches the dispatcher and consumes no window capacity.
	// The check is on unless the request opts out explicitly.
	guarded := req.GuardrailsEnabled == nil || *req.GuardrailsEnabled
	if guarded && h.guard != nil {
		if verdict := h.guard.Check(req.Message); verdict.Blocked {
			c.JSON(http.StatusOK, api.ChatResponse{
				Blocked:      true,
				BlockReason:  verdict.Reason,
				ResponseTime: time.Since(start).Seconds(),
			})
			return
		}
	}

	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), &req)
	if err != nil {
		var exhausted *broker.ExhaustedError
		if errors.As(err, &exhausted) {
			c.JSON(http.StatusServiceUnavailable, api.ChatResponse{
				Error:        exhausted.Error(),
				ResponseTime: time.Since(start).Seconds(),
			})
			return
		}
		_ = c.Error(api.InternalError("Failed to process chat request", err))
		return
	}

	c.JSON(http.StatusOK, api.ChatResponse{
		Response:       result.Response,
		ModelUsed:      result.ModelUsed,
		ProviderUsed:   result.ProviderUsed,
		ResponseTime:   result.Latency.Seconds(),
		ConversationID: req.ConversationID,
		Usage:          result.Usage,
	})
}
