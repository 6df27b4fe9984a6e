package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/KLH-F-2025/campus-safety-service/internal/cache"
	"github.com/KLH-F-2025/campus-safety-service/internal/models"
	"github.com/KLH-F-2025/campus-safety-service/internal/services"
	"github.com/KLH-F-2025/campus-safety-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	BaseHandler
	alertService  services.AlertService
	exportService services.ExportService
	alerts        *cache.Feed[models.SOSAlert]
	complaints    *cache.Feed[models.Complaint]
}

func NewAlertHandler(
	alertService services.AlertService,
	exportService services.ExportService,
	alerts *cache.Feed[models.SOSAlert],
	complaints *cache.Feed[models.Complaint],
	logger utils.Logger,
) *AlertHandler {
	return &AlertHandler{
		BaseHandler:   NewBaseHandler(logger),
		alertService:  alertService,
		exportService: exportService,
		alerts:        alerts,
		complaints:    complaints,
	}
}

type triggerAlertRequest struct {
	Student models.StudentProfile `json:"student" binding:"required"`
	Type    models.EmergencyType  `json:"type" binding:"required,emergency_type"`

	// Location is optional: callers whose location access was denied omit
	// it and get the fixed campus default. That fallback is deliberate.
	Location        *models.Location `json:"location"`
	IsWitnessReport bool             `json:"isWitnessReport"`
}

// TriggerAlert raises a new SOS alert
func (h *AlertHandler) TriggerAlert(c *gin.Context) {
	var req triggerAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	location := models.DefaultLocation
	if req.Location != nil {
		location = *req.Location
	}

	alert, err := h.alertService.Trigger(c.Request.Context(), req.Student, req.Type, location, req.IsWitnessReport)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, alert)
}

// ListAlerts returns the mirror snapshot, newest first. The optional status
// query narrows to "active" (anything unresolved) or "resolved".
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	snapshot := h.alerts.Snapshot()

	switch strings.ToLower(c.Query("status")) {
	case "":
		c.JSON(http.StatusOK, snapshot)
	case "active":
		open := make([]models.SOSAlert, 0, len(snapshot))
		for _, alert := range snapshot {
			if alert.Status != models.AlertResolved {
				open = append(open, alert)
			}
		}
		c.JSON(http.StatusOK, open)
	case "resolved":
		resolved := make([]models.SOSAlert, 0, len(snapshot))
		for _, alert := range snapshot {
			if alert.Status == models.AlertResolved {
				resolved = append(resolved, alert)
			}
		}
		c.JSON(http.StatusOK, resolved)
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unknown status filter",
			Details: c.Query("status"),
		})
	}
}

// DispatchAlert marks responders as sent for an active alert
func (h *AlertHandler) DispatchAlert(c *gin.Context) {
	id := c.Param("id")
	if err := h.alertService.Dispatch(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Alert dispatched"})
}

type resolveAlertRequest struct {
	Report string `json:"report" binding:"required"`
}

// ResolveAlert closes an alert with a resolution report. The non-empty
// check lives here; the domain operation trusts its caller.
func (h *AlertHandler) ResolveAlert(c *gin.Context) {
	var req resolveAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Report) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Resolution report must not be empty",
		})
		return
	}

	id := c.Param("id")
	if err := h.alertService.Resolve(c.Request.Context(), id, req.Report); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Alert resolved"})
}

// StatsResponse carries the dashboard counters derived from the mirrors
type StatsResponse struct {
	ActiveAlerts      int `json:"active_alerts"`
	PendingComplaints int `json:"pending_complaints"`
}

// GetStats derives dashboard counters by filtering the mirror snapshots;
// the store offers no server-side aggregation.
func (h *AlertHandler) GetStats(c *gin.Context) {
	var stats StatsResponse
	for _, alert := range h.alerts.Snapshot() {
		if alert.Status != models.AlertResolved {
			stats.ActiveAlerts++
		}
	}
	for _, complaint := range h.complaints.Snapshot() {
		if complaint.Status == models.ComplaintPending {
			stats.PendingComplaints++
		}
	}
	c.JSON(http.StatusOK, stats)
}

// ExportArchive streams the resolved-alert archive as an .xlsx download
func (h *AlertHandler) ExportArchive(c *gin.Context) {
	workbook, err := h.exportService.ExportAlertArchive(c.Request.Context(), h.alerts.Snapshot())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("alert-archive-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}
