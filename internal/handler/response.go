package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
	"github.com/AnuphapGBC/invoice-management-service/internal/model"
	"github.com/AnuphapGBC/invoice-management-service/internal/service"
)

// Common error messages
const (
	ErrInvalidInput     = "Invalid input format"
	ErrResourceNotFound = "Resource not found"
	ErrInternalServer   = "Internal server error"
	ErrFileUpload       = "Failed to upload file"
)

// respondWithError sends a standardized error response.
func respondWithError(c *gin.Context, statusCode int, message string, details ...model.ErrorDetail) {
	c.JSON(statusCode, model.ErrorResponse{
		Status:  http.StatusText(statusCode),
		Message: message,
		Details: details,
	})
}

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string, details ...model.ErrorDetail) {
	respondWithError(c, http.StatusBadRequest, message, details...)
}

// respondUnauthorized sends a 401 Unauthorized response.
func respondUnauthorized(c *gin.Context, message string) {
	respondWithError(c, http.StatusUnauthorized, message)
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, message string) {
	respondWithError(c, http.StatusNotFound, message)
}

// respondInternalServerError sends a 500 Internal Server Error response.
func respondInternalServerError(c *gin.Context, message string) {
	respondWithError(c, http.StatusInternalServerError, message)
}

// respondOK sends a 200 OK response with data.
func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// respondServiceError maps typed service failures onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		respondBadRequest(c, ve.Message, model.ErrorDetail{Field: ve.Field, Message: ve.Message})
		return
	}
	if domain.IsNotFound(err) {
		respondNotFound(c, err.Error())
		return
	}
	if errors.Is(err, service.ErrInvalidCredentials) {
		respondUnauthorized(c, "Invalid credentials")
		return
	}
	respondInternalServerError(c, err.Error())
}

// newErrorDetail creates a new error detail.
func newErrorDetail(field, message string) model.ErrorDetail {
	return model.ErrorDetail{Field: field, Message: message}
}
