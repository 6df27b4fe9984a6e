package handlers

import (
	"net/http"

	"github.com/KLH-F-2025/campus-safety-service/internal/cache"
	"github.com/KLH-F-2025/campus-safety-service/internal/models"
	"github.com/KLH-F-2025/campus-safety-service/internal/services"
	"github.com/KLH-F-2025/campus-safety-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ComplaintHandler struct {
	BaseHandler
	complaintService services.ComplaintService
	complaints       *cache.Feed[models.Complaint]
}

func NewComplaintHandler(
	complaintService services.ComplaintService,
	complaints *cache.Feed[models.Complaint],
	logger utils.Logger,
) *ComplaintHandler {
	return &ComplaintHandler{
		BaseHandler:      NewBaseHandler(logger),
		complaintService: complaintService,
		complaints:       complaints,
	}
}

type submitComplaintRequest struct {
	Student     models.StudentProfile `json:"student" binding:"required"`
	Subject     string                `json:"subject" binding:"required"`
	Description string                `json:"description" binding:"required"`
}

// SubmitComplaint files a new grievance
func (h *ComplaintHandler) SubmitComplaint(c *gin.Context) {
	var req submitComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	complaint, err := h.complaintService.Submit(c.Request.Context(), req.Student, req.Subject, req.Description)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, complaint)
}

// ListComplaints returns the mirror snapshot, newest first. The optional
// rollNumber query narrows to a single student's complaints so the app can
// show "my complaints" without a separate store read.
func (h *ComplaintHandler) ListComplaints(c *gin.Context) {
	snapshot := h.complaints.Snapshot()

	roll := c.Query("rollNumber")
	if roll == "" {
		c.JSON(http.StatusOK, snapshot)
		return
	}

	mine := make([]models.Complaint, 0, len(snapshot))
	for _, complaint := range snapshot {
		if complaint.Student.RollNumber == roll {
			mine = append(mine, complaint)
		}
	}
	c.JSON(http.StatusOK, mine)
}

// ReviewComplaint marks a complaint as reviewed
func (h *ComplaintHandler) ReviewComplaint(c *gin.Context) {
	id := c.Param("id")
	if err := h.complaintService.Review(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Complaint reviewed"})
}
