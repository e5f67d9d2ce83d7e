// internal/handlers/call/call_handler.go
package call

import (
	"net/http"

	"leadpulse-service/internal/domain/call"
	"leadpulse-service/internal/middleware"
	"leadpulse-service/internal/pkg/response"
	service "leadpulse-service/internal/service/call"

	"github.com/gin-gonic/gin"
)

type CallHandler struct {
	callService *service.CallService
}

func NewCallHandler(callService *service.CallService) *CallHandler {
	return &CallHandler{callService: callService}
}

// LogCall records a call from manual logging or mobile sync
func (h *CallHandler) LogCall(c *gin.Context) {
	orgID := middleware.MustGetOrgID(c)

	var req call.LogCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	// Mobile loggers may omit the rep; default to the caller.
	if req.UserID == 0 {
		req.UserID = middleware.MustGetUserID(c)
	}

	result, err := h.callService.LogCall(c.Request.Context(), orgID, &req)
	if err != nil {
		response.FromError(c, "failed to log call", err)
		return
	}

	middleware.RecordCallIngested("api")
	response.Success(c, http.StatusCreated, "call logged", result)
}

// ListCalls retrieves calls with filters and pagination
func (h *CallHandler) ListCalls(c *gin.Context) {
	orgID := middleware.MustGetOrgID(c)

	var filters call.CallListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	result, err := h.callService.ListCalls(c.Request.Context(), orgID, filters)
	if err != nil {
		response.FromError(c, "failed to list calls", err)
		return
	}

	response.Success(c, http.StatusOK, "calls retrieved", result)
}

// UpdateStatus sets the rep's disposition on a call
func (h *CallHandler) UpdateStatus(c *gin.Context) {
	var req call.UpdateCallStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	if err := h.callService.UpdateStatus(c.Request.Context(), c.Param("id"), req.CallStatus); err != nil {
		response.FromError(c, "failed to update call status", err)
		return
	}

	response.Success(c, http.StatusOK, "call status updated", nil)
}
