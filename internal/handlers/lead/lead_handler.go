// internal/handlers/lead/lead_handler.go
package lead

import (
	"net/http"

	"leadpulse-service/internal/domain/activity"
	"leadpulse-service/internal/domain/lead"
	"leadpulse-service/internal/middleware"
	xerrors "leadpulse-service/internal/pkg/errors"
	"leadpulse-service/internal/pkg/response"
	service "leadpulse-service/internal/service/lead"
	"leadpulse-service/internal/websocket"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	leadService *service.LeadService
	hub         *websocket.Hub
}

func NewLeadHandler(leadService *service.LeadService, hub *websocket.Hub) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		hub:         hub,
	}
}

// CreateLead creates a new lead
func (h *LeadHandler) CreateLead(c *gin.Context) {
	orgID := middleware.MustGetOrgID(c)

	var req lead.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.leadService.CreateLead(c.Request.Context(), orgID, &req)
	if err != nil {
		response.FromError(c, "failed to create lead", err)
		return
	}

	response.Success(c, http.StatusCreated, "lead created successfully", result)
}

// GetLead retrieves a lead by ID
func (h *LeadHandler) GetLead(c *gin.Context) {
	result, err := h.leadService.GetLead(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, "lead not found", err)
		return
	}

	response.Success(c, http.StatusOK, "lead retrieved", result)
}

// ListLeads retrieves leads with filters and pagination
func (h *LeadHandler) ListLeads(c *gin.Context) {
	orgID := middleware.MustGetOrgID(c)

	var filters lead.LeadListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	result, err := h.leadService.ListLeads(c.Request.Context(), orgID, filters)
	if err != nil {
		response.FromError(c, "failed to list leads", err)
		return
	}

	response.Success(c, http.StatusOK, "leads retrieved", result)
}

// UpdateLead edits direct lead fields (never the stage)
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	var req lead.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.leadService.UpdateLead(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.FromError(c, "failed to update lead", err)
		return
	}

	response.Success(c, http.StatusOK, "lead updated", result)
}

// DeleteLead soft-deletes a lead
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	if err := h.leadService.DeleteLead(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, "failed to delete lead", err)
		return
	}

	response.Success(c, http.StatusOK, "lead deleted", nil)
}

// Transition moves a lead to a new pipeline stage. On success the committed
// change is fanned out to connected boards; on a concurrency conflict the
// caller is expected to re-read the lead and retry or surface the conflict.
func (h *LeadHandler) Transition(c *gin.Context) {
	orgID := middleware.MustGetOrgID(c)
	actorID := middleware.MustGetUserID(c)

	var req lead.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	updated, act, err := h.leadService.Transition(c.Request.Context(), c.Param("id"), req.TargetStage, actorID, req.ExpectedStage)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrConflict) {
			middleware.RecordTransitionConflict()
		}
		response.FromError(c, "failed to move lead", err)
		return
	}

	middleware.RecordStageTransition(string(act.FromStage), string(act.ToStage))
	h.hub.BroadcastStageChange(orgID, websocket.StageChangeEvent{
		LeadID:    updated.ID,
		FromStage: string(act.FromStage),
		ToStage:   string(act.ToStage),
		ActorID:   actorID,
		At:        act.Timestamp,
	})

	response.Success(c, http.StatusOK, "lead moved", gin.H{
		"lead":     updated,
		"activity": act,
	})
}

// AddNote appends a note activity to a lead
func (h *LeadHandler) AddNote(c *gin.Context) {
	actorID := middleware.MustGetUserID(c)

	var req lead.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	act, err := h.leadService.AddNote(c.Request.Context(), c.Param("id"), actorID, req.Description)
	if err != nil {
		response.FromError(c, "failed to add note", err)
		return
	}

	response.Success(c, http.StatusCreated, "note added", act)
}

// ListActivities retrieves a lead's activity timeline
func (h *LeadHandler) ListActivities(c *gin.Context) {
	var filters activity.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	result, err := h.leadService.ListActivities(c.Request.Context(), c.Param("id"), filters)
	if err != nil {
		response.FromError(c, "failed to list activities", err)
		return
	}

	response.Success(c, http.StatusOK, "activities retrieved", result)
}

// BulkImport creates leads from pre-parsed import rows
func (h *LeadHandler) BulkImport(c *gin.Context) {
	orgID := middleware.MustGetOrgID(c)

	var req lead.BulkImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.leadService.BulkImport(c.Request.Context(), orgID, &req)
	if err != nil {
		response.FromError(c, "bulk import failed", err)
		return
	}

	response.Success(c, http.StatusOK, "bulk import finished", result)
}

// GetStats returns headline lead counts
func (h *LeadHandler) GetStats(c *gin.Context) {
	orgID := middleware.MustGetOrgID(c)

	result, err := h.leadService.Stats(c.Request.Context(), orgID)
	if err != nil {
		response.FromError(c, "failed to load stats", err)
		return
	}

	response.Success(c, http.StatusOK, "stats retrieved", result)
}
