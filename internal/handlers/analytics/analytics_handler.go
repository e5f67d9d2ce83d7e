// internal/handlers/analytics/analytics_handler.go
package analytics

import (
	"fmt"
	"net/http"
	"time"

	"leadpulse-service/internal/domain/analytics"
	"leadpulse-service/internal/middleware"
	xerrors "leadpulse-service/internal/pkg/errors"
	"leadpulse-service/internal/pkg/response"
	service "leadpulse-service/internal/service/analytics"

	"github.com/gin-gonic/gin"
)

const defaultRangeDays = 30

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetFunnel returns the conversion funnel for a date range
func (h *AnalyticsHandler) GetFunnel(c *gin.Context) {
	orgID := middleware.MustGetOrgID(c)

	r, err := parseRange(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid date range", err)
		return
	}

	report, err := h.analyticsService.Funnel(c.Request.Context(), orgID, r)
	if err != nil {
		response.FromError(c, "failed to compute funnel", err)
		return
	}

	response.Success(c, http.StatusOK, "funnel computed", report)
}

// GetRankings returns per-rep call metrics ordered by the chosen metric
func (h *AnalyticsHandler) GetRankings(c *gin.Context) {
	orgID := middleware.MustGetOrgID(c)

	r, err := parseRange(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid date range", err)
		return
	}

	metric, err := analytics.ParseRankingMetric(c.DefaultQuery("metric", string(analytics.MetricTotalCalls)))
	if err != nil {
		response.FromError(c, "invalid ranking metric", err)
		return
	}

	report, err := h.analyticsService.Rankings(c.Request.Context(), orgID, r, metric)
	if err != nil {
		response.FromError(c, "failed to compute rankings", err)
		return
	}

	response.Success(c, http.StatusOK, "rankings computed", report)
}

// GetQuality returns the call-quality report for a date range
func (h *AnalyticsHandler) GetQuality(c *gin.Context) {
	orgID := middleware.MustGetOrgID(c)

	r, err := parseRange(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid date range", err)
		return
	}

	report, err := h.analyticsService.Quality(c.Request.Context(), orgID, r)
	if err != nil {
		response.FromError(c, "failed to compute quality report", err)
		return
	}

	response.Success(c, http.StatusOK, "quality report computed", report)
}

// parseRange reads from/to query params (YYYY-MM-DD). The range defaults to
// the trailing 30 days; "to" is treated as inclusive and widened to the end
// of its day.
func parseRange(c *gin.Context) (analytics.DateRange, error) {
	now := time.Now()
	r := analytics.DateRange{
		From: now.AddDate(0, 0, -defaultRangeDays),
		To:   now,
	}

	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return r, fmt.Errorf("%w: bad from date %q", xerrors.ErrValidation, from)
		}
		r.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return r, fmt.Errorf("%w: bad to date %q", xerrors.ErrValidation, to)
		}
		r.To = t.AddDate(0, 0, 1)
	}

	if !r.From.Before(r.To) {
		return r, fmt.Errorf("%w: from must precede to", xerrors.ErrValidation)
	}

	return r, nil
}
