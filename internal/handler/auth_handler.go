package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AnuphapGBC/invoice-management-service/internal/model"
	"github.com/AnuphapGBC/invoice-management-service/internal/service"
)

// AuthHandler handles authentication requests.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the auth routes on the given group.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
}

// Login handles POST /login
// @Summary Authenticate a user
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body model.LoginRequest true "Username and password"
// @Success 200 {object} service.AuthResponse "Authenticated"
// @Failure 401 {object} model.ErrorResponse "Invalid credentials"
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, resp)
}
