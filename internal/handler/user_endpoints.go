package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"techstore-server/internal/models"
	"techstore-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @Summary Список всех пользователей
// @Tags user
// @Produce json
// @Success 200 {array} models.User
// @Security BearerAuth
// @Router /user/all [get]
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.userRepo.ListUsers(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	for i := range users {
		if users[i].Packages == nil {
			users[i].Packages = []uuid.UUID{}
		}
	}
	c.JSON(http.StatusOK, users)
}

// @Summary Получить пользователя по email
// @Tags user
// @Produce json
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse "Пользователь не найден"
// @Security BearerAuth
// @Router /user/by-email/{email} [get]
func (h *Handler) getUserByEmail(c *gin.Context) {
	user, err := h.userRepo.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	packages, err := h.ledger.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	user.Packages = packages

	c.JSON(http.StatusOK, user)
}

// @Summary Изменить имя пользователя
// @Tags user
// @Accept json
// @Produce json
// @Param request body updateNameRequest true "Новое имя"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 403 {object} models.ErrorResponse "Чужой аккаунт"
// @Security BearerAuth
// @Router /user/edit-name/{email} [patch]
func (h *Handler) editName(c *gin.Context) {
	var req updateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ValidationErrorResponse{Errors: []models.FieldError{
			{Field: "name", Message: "Name is required"},
		}})
		return
	}

	user, err := h.authService.UpdateName(c.Request.Context(), c.Param("email"), req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	packages, err := h.ledger.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	user.Packages = packages

	c.JSON(http.StatusOK, gin.H{"message": "Name updated successfully!", "user": user})
}

// @Summary Сменить пароль
// @Tags user
// @Accept json
// @Produce json
// @Param request body updatePasswordRequest true "Текущий и новый пароль"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse "Текущий пароль неверен"
// @Security BearerAuth
// @Router /user/update-password/{email} [patch]
func (h *Handler) updatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request data: " + err.Error()})
		return
	}

	var fieldErrors []models.FieldError
	if req.CurrentPassword == "" {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "currentPassword", Message: "Current password is required"})
	}
	if len(req.NewPassword) < minPasswordLength {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "newPassword", Message: fmt.Sprintf("New password must be at least %d characters long", minPasswordLength)})
	}
	if len(fieldErrors) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ValidationErrorResponse{Errors: fieldErrors})
		return
	}

	err := h.authService.UpdatePassword(c.Request.Context(), c.Param("email"), req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, models.ErrPasswordIncorrect) {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Current password is incorrect."})
			return
		}
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully!"})
}

// @Summary Удалить аккаунт
// @Tags user
// @Accept json
// @Produce json
// @Param request body deleteAccountRequest true "Пароль для подтверждения"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse "Пароль неверен"
// @Security BearerAuth
// @Router /user/delete-account/{email} [delete]
func (h *Handler) deleteAccount(c *gin.Context) {
	var req deleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ValidationErrorResponse{Errors: []models.FieldError{
			{Field: "password", Message: "Password is required to confirm deletion"},
		}})
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), c.Param("email"), req.Password); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully!"})
}

// readFormFile reads a multipart file fully into memory.
func readFormFile(fh *multipart.FileHeader) (service.UploadFile, error) {
	file, err := fh.Open()
	if err != nil {
		return service.UploadFile{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return service.UploadFile{}, err
	}

	return service.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *Handler) setProfileImage(c *gin.Context, successMessage string) {
	user := currentUser(c)

	fh, err := c.FormFile("image")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "No file uploaded"})
		return
	}

	upload, err := readFormFile(fh)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Could not read uploaded file"})
		return
	}

	updated, err := h.authService.SetProfileImage(c.Request.Context(), user.ID, upload.Name, upload.ContentType, upload.Data)
	if err != nil {
		imageUploadsTotal.WithLabelValues("profile", "failure").Inc()
		handleServiceError(c, err)
		return
	}

	imageUploadsTotal.WithLabelValues("profile", "success").Inc()
	c.JSON(http.StatusOK, gin.H{"message": successMessage, "user": updated})
}

// @Summary Загрузить аватар
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /user/upload-image [post]
func (h *Handler) uploadProfileImage(c *gin.Context) {
	h.setProfileImage(c, "Profile image uploaded successfully!")
}

// @Summary Обновить аватар
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /user/update-profile-image [patch]
func (h *Handler) updateProfileImage(c *gin.Context) {
	h.setProfileImage(c, "Profile image updated successfully!")
}

// @Summary Получить URL аватара
// @Tags user
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse "Аватар не установлен"
// @Security BearerAuth
// @Router /user/profile-image [get]
func (h *Handler) getProfileImage(c *gin.Context) {
	user := currentUser(c)

	url, err := h.authService.GetProfileImageURL(c.Request.Context(), user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profileImageUrl": url})
}

// @Summary Удалить аватар
// @Tags user
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse "Аватар не установлен"
// @Security BearerAuth
// @Router /user/remove-profile-image [delete]
func (h *Handler) removeProfileImage(c *gin.Context) {
	user := currentUser(c)

	if err := h.authService.RemoveProfileImage(c.Request.Context(), user.ID); err != nil {
		if errors.Is(err, models.ErrProfileImageMissing) {
			c.AbortWithStatusJSON(http.StatusNotFound, models.ErrorResponse{Error: "No profile image to remove."})
			return
		}
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile image removed successfully!"})
}
