package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/AnuphapGBC/invoice-management-service/internal/model"
	"github.com/AnuphapGBC/invoice-management-service/internal/repository"
	"github.com/AnuphapGBC/invoice-management-service/internal/service"
)

// UserHandler handles user CRUD requests. These are pass-through accessors
// over the user repository; the only validation is gin's required bindings.
type UserHandler struct {
	userRepo    repository.UserRepository
	authService service.AuthService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userRepo repository.UserRepository, authService service.AuthService) *UserHandler {
	return &UserHandler{userRepo: userRepo, authService: authService}
}

// RegisterRoutes registers the user routes on the given group.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users", h.CreateUser)
	rg.GET("/users", h.ListUsers)
	rg.GET("/users/id/:id", h.GetUserByID)
	rg.GET("/users/username/:username", h.GetUserByUsername)
	rg.PUT("/users/:id", h.UpdateUser)
	rg.DELETE("/users/:id", h.DeleteUser)
}

// CreateUser handles POST /users
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body model.UserRequest true "User data"
// @Success 201 {object} domain.User "User created"
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req model.UserRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Username, req.Password, req.Role, req.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, user)
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepo.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "Users retrieved successfully", "users": users})
}

// GetUserByID handles GET /users/id/:id
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, user)
}

// GetUserByUsername handles GET /users/username/:username
func (h *UserHandler) GetUserByUsername(c *gin.Context) {
	username, err := getPathParam(c, "username")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := h.userRepo.GetByUsername(c.Request.Context(), username)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"user": user})
}

// UpdateUser handles PUT /users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var req model.UserRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	user.Username = req.Username
	user.Role = req.Role
	user.Email = req.Email
	if _, err := h.userRepo.Update(c.Request.Context(), user); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "User updated successfully", "user": user})
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	affected, err := h.userRepo.Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if affected == 0 {
		respondNotFound(c, "User not found")
		return
	}
	respondOK(c, gin.H{"message": "User deleted successfully"})
}
