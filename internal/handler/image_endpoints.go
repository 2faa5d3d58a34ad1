package handler

import (
	"net/http"

	"techstore-server/internal/models"

	"github.com/gin-gonic/gin"
)

// @Summary Загрузить изображение
// @Description Принимает изображение и сохраняет его в объектном хранилище
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse "Файл не приложен"
// @Router /api/images/upload [post]
func (h *Handler) uploadImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "No image uploaded."})
		return
	}

	upload, err := readFormFile(fh)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Could not read uploaded file"})
		return
	}

	img, err := h.catalogService.IngestImage(c.Request.Context(), c.PostForm("email"), upload.Name, upload.ContentType, upload.Data)
	if err != nil {
		imageUploadsTotal.WithLabelValues("ingest", "failure").Inc()
		handleServiceError(c, err)
		return
	}

	imageUploadsTotal.WithLabelValues("ingest", "success").Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Image uploaded successfully.", "imageUrl": img.ImageURL})
}

// @Summary Запросить правку аватара
// @Description Отправляет письмо с просьбой отредактировать изображение
// @Tags images
// @Accept json
// @Produce json
// @Param request body editImageRequest true "Email и URL изображения"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse "Неверные данные"
// @Router /api/images/edit [post]
func (h *Handler) editImage(c *gin.Context) {
	var req editImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request data: " + err.Error()})
		return
	}

	if err := h.catalogService.RequestAvatarEdit(c.Request.Context(), req.Email, req.ImageURL); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Edit request sent via email."})
}
