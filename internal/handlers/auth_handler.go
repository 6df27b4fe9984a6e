package handlers

import (
	"net/http"

	"github.com/KLH-F-2025/campus-safety-service/internal/services"
	"github.com/KLH-F-2025/campus-safety-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

type loginRequest struct {
	// Identifier is an email or a bare roll number.
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Login authenticates a user and returns the role and profile on success
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
