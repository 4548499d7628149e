package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/response"
	"github.com/personal-system/personal-backend/internal/service"
	"github.com/personal-system/personal-backend/internal/validator"
)

// AuthHandler handles trainer authentication.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// POST /api/v1/auth/login
// Exchanges trainer credentials for a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, validator.FirstField(fields), fields)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}
