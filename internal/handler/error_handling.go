package handler

import (
	"errors"
	"net/http"

	"techstore-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp models.ErrorResponse

	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Error: "Invalid email or password."}
	case errors.Is(err, models.ErrEmailAlreadyExists):
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Error: "User already exists."}
	case errors.Is(err, models.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Error: "User not found."}
	case errors.Is(err, models.ErrPackageNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Error: "Package not found"}
	case errors.Is(err, models.ErrPasswordIncorrect):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Error: "Password is incorrect."}
	case errors.Is(err, models.ErrProfileImageMissing):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Error: "Profile image not found."}
	case errors.Is(err, models.ErrTokenInvalid), errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Error: "Invalid or expired token. Please login again."}
	case errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errResp = models.ErrorResponse{Error: "Authentication required. No token provided."}
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		errResp = models.ErrorResponse{Error: "Access denied."}
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Error: err.Error()}
	case errors.Is(err, models.ErrUploadFailed):
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: "Error uploading image"}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: "Server error. Please try again later."}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
