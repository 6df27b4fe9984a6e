package handlers

import (
	"errors"
	"net/http"

	"github.com/KLH-F-2025/campus-safety-service/internal/services"
	"github.com/KLH-F-2025/campus-safety-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// handleServiceError maps domain errors onto HTTP statuses. Authentication
// failures stay generic on purpose and store outages answer "try again
// later" instead of blaming the caller.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid credentials",
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Resource not found",
			Details: err.Error(),
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Alert already resolved",
		})
	case services.IsUnavailable(err):
		h.logger.LogError(err, "store unavailable")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Service temporarily unavailable, please try again later",
		})
	default:
		h.logger.LogError(err, "unhandled service error",
			"method", c.Request.Method,
			"path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
