package handler

import (
	"net/http"

	"techstore-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @Summary Заблокировать/разблокировать пользователя
// @Description Переключает флаг блокировки (только для администраторов)
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} models.ErrorResponse "Не администратор"
// @Failure 404 {object} models.ErrorResponse "Пользователь не найден"
// @Security BearerAuth
// @Router /user/{id}/block [patch]
func (h *Handler) toggleBlock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid user ID."})
		return
	}

	blocked, err := h.authService.ToggleBlock(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	message := "User unblocked successfully!"
	if blocked {
		message = "User blocked successfully!"
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// @Summary Изменить роль пользователя
// @Description Назначает роль user/admin (только для администраторов)
// @Tags admin
// @Accept json
// @Produce json
// @Param request body updateRoleRequest true "Новая роль"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse "Неизвестная роль"
// @Failure 403 {object} models.ErrorResponse "Не администратор"
// @Security BearerAuth
// @Router /user/edit-role/{id} [patch]
func (h *Handler) updateRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid user ID."})
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil || !models.ValidRole(req.Role) {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: `Invalid role. Role must be either "user" or "admin".`})
		return
	}

	emailSent, err := h.authService.UpdateRole(c.Request.Context(), id, req.Role)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	message := "User role updated successfully."
	if emailSent {
		message = "User role updated successfully and email sent!"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   message,
		"emailSent": emailSent,
	})
}
