package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/KLH-F-2025/campus-safety-service/internal/models"
	"github.com/KLH-F-2025/campus-safety-service/internal/services"
	"github.com/KLH-F-2025/campus-safety-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	BaseHandler
	studentService services.StudentService
	exportService  services.ExportService
}

func NewStudentHandler(
	studentService services.StudentService,
	exportService services.ExportService,
	logger utils.Logger,
) *StudentHandler {
	return &StudentHandler{
		BaseHandler:    NewBaseHandler(logger),
		studentService: studentService,
		exportService:  exportService,
	}
}

// ListStudents returns every enrolled student profile
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.studentService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

// UpsertStudent creates a student account or patches the profile of an
// existing one. New accounts get the student role and the shared default
// password; existing accounts keep whatever credentials they have.
func (h *StudentHandler) UpsertStudent(c *gin.Context) {
	var profile models.StudentProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.studentService.Upsert(c.Request.Context(), profile); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Student saved"})
}

// DeleteStudent removes a student account by roll number
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	roll := c.Param("rollNumber")
	if err := h.studentService.Delete(c.Request.Context(), roll); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Student deleted"})
}

// ExportRoster streams the student roster as an .xlsx download
func (h *StudentHandler) ExportRoster(c *gin.Context) {
	students, err := h.studentService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	workbook, err := h.exportService.ExportStudentRoster(c.Request.Context(), students)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("student-roster-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}
