package handlers

import (
	"net/http"

	"github.com/KLH-F-2025/campus-safety-service/internal/cache"
	"github.com/KLH-F-2025/campus-safety-service/internal/models"
	"github.com/KLH-F-2025/campus-safety-service/internal/services"
	"github.com/KLH-F-2025/campus-safety-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	authHandler      *AuthHandler
	alertHandler     *AlertHandler
	complaintHandler *ComplaintHandler
	studentHandler   *StudentHandler
	streamHandler    *StreamHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	alerts *cache.Feed[models.SOSAlert],
	complaints *cache.Feed[models.Complaint],
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:      NewAuthHandler(serviceManager.Auth(), logger),
		alertHandler:     NewAlertHandler(serviceManager.Alerts(), serviceManager.Export(), alerts, complaints, logger),
		complaintHandler: NewComplaintHandler(serviceManager.Complaints(), complaints, logger),
		studentHandler:   NewStudentHandler(serviceManager.Students(), serviceManager.Export(), logger),
		streamHandler:    NewStreamHandler(alerts, complaints, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", hm.authHandler.Login)
		}

		// Alert routes
		alerts := v1.Group("/alerts")
		{
			alerts.POST("", hm.alertHandler.TriggerAlert)
			alerts.GET("", hm.alertHandler.ListAlerts)
			alerts.GET("/stats", hm.alertHandler.GetStats)
			alerts.GET("/export", hm.alertHandler.ExportArchive)
			alerts.POST("/:id/dispatch", hm.alertHandler.DispatchAlert)
			alerts.POST("/:id/resolve", hm.alertHandler.ResolveAlert)
		}

		// Complaint routes
		complaints := v1.Group("/complaints")
		{
			complaints.POST("", hm.complaintHandler.SubmitComplaint)
			complaints.GET("", hm.complaintHandler.ListComplaints)
			complaints.POST("/:id/review", hm.complaintHandler.ReviewComplaint)
		}

		// Student management routes
		students := v1.Group("/students")
		{
			students.GET("", hm.studentHandler.ListStudents)
			students.PUT("", hm.studentHandler.UpsertStudent)
			students.GET("/export", hm.studentHandler.ExportRoster)
			students.DELETE("/:rollNumber", hm.studentHandler.DeleteStudent)
		}
	}

	// Live feeds
	ws := router.Group("/ws")
	{
		ws.GET("/alerts", hm.streamHandler.StreamAlerts)
		ws.GET("/complaints", hm.streamHandler.StreamComplaints)
	}
}

// HealthCheck reports service liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "campus-safety-service",
	})
}
