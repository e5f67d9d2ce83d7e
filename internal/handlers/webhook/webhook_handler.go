// internal/handlers/webhook/webhook_handler.go
package webhook

import (
	"net/http"
	"strconv"

	"leadpulse-service/internal/domain/call"
	"leadpulse-service/internal/domain/lead"
	"leadpulse-service/internal/middleware"
	"leadpulse-service/internal/pkg/response"
	"leadpulse-service/internal/queue"
	leadService "leadpulse-service/internal/service/lead"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives inbound lead captures and provider call callbacks.
// Both routes are keyed by the organization embedded in the webhook URL.
type WebhookHandler struct {
	leadService *leadService.LeadService
	producer    *queue.Producer
	logger      *zap.Logger
}

func NewWebhookHandler(leadService *leadService.LeadService, producer *queue.Producer, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		leadService: leadService,
		producer:    producer,
		logger:      logger,
	}
}

// CaptureLead creates a lead from an external form or landing page
func (h *WebhookHandler) CaptureLead(c *gin.Context) {
	orgID, err := parseOrgID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid organization", err)
		return
	}

	var req lead.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", err)
		return
	}
	req.Source = string(lead.SourceWebhook)

	result, err := h.leadService.CreateLead(c.Request.Context(), orgID, &req)
	if err != nil {
		response.FromError(c, "failed to capture lead", err)
		return
	}

	response.Success(c, http.StatusCreated, "lead captured", result)
}

// CallStatus accepts the telephony provider's completion callback and queues
// it for ingestion. The provider only needs a fast 2xx; the worker does the
// actual write.
func (h *WebhookHandler) CallStatus(c *gin.Context) {
	orgID, err := parseOrgID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid organization", err)
		return
	}

	var cb call.ProviderStatusCallback
	if err := c.ShouldBind(&cb); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid callback payload", err)
		return
	}

	payload := queue.CallEventPayload{OrgID: orgID, Callback: cb}
	if err := h.producer.PublishCallEvent(c.Request.Context(), payload); err != nil {
		h.logger.Error("failed to queue call event",
			zap.Int64("org_id", orgID),
			zap.String("call_sid", cb.CallSID),
			zap.Error(err),
		)
		response.Error(c, http.StatusInternalServerError, "failed to queue call event", err)
		return
	}

	middleware.RecordCallIngested("webhook")
	response.Success(c, http.StatusAccepted, "call event queued", nil)
}

func parseOrgID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("org_id"), 10, 64)
}
