package handler

import (
	"errors"
	"net/http"
	"strconv"

	"techstore-server/internal/models"
	"techstore-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxPackageImages = 10

// packageForm pulls the multipart fields and image files shared by the
// create and update endpoints.
func packageForm(c *gin.Context) (name, version, description string, price float64, files []service.UploadFile, err error) {
	name = c.PostForm("name")
	version = c.PostForm("version")
	description = c.PostForm("description")

	price, err = strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		return "", "", "", 0, nil, err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return "", "", "", 0, nil, err
	}

	headers := form.File["images"]
	if len(headers) > maxPackageImages {
		headers = headers[:maxPackageImages]
	}
	for _, fh := range headers {
		var file service.UploadFile
		file, err = readFormFile(fh)
		if err != nil {
			return "", "", "", 0, nil, err
		}
		files = append(files, file)
	}

	return name, version, description, price, files, nil
}

// @Summary Создать пакет
// @Description Создает пакет с изображениями (только для администраторов)
// @Tags packages
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} models.Package
// @Failure 400 {object} models.ErrorResponse "Неверные данные"
// @Failure 403 {object} models.ErrorResponse "Не администратор"
// @Security BearerAuth
// @Router /api/packages [post]
func (h *Handler) createPackage(c *gin.Context) {
	name, version, description, price, files, err := packageForm(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid package data: " + err.Error()})
		return
	}

	pkg, err := h.catalogService.CreatePackage(c.Request.Context(), name, version, description, price, files)
	if err != nil {
		imageUploadsTotal.WithLabelValues("package", "failure").Inc()
		handleServiceError(c, err)
		return
	}

	imageUploadsTotal.WithLabelValues("package", "success").Inc()
	c.JSON(http.StatusCreated, pkg)
}

// @Summary Обновить пакет
// @Description Обновляет пакет; без новых файлов набор изображений сохраняется
// @Tags packages
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} models.Package
// @Failure 404 {object} models.ErrorResponse "Пакет не найден"
// @Security BearerAuth
// @Router /api/packages/{id} [put]
func (h *Handler) updatePackage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid package ID."})
		return
	}

	name, version, description, price, files, err := packageForm(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid package data: " + err.Error()})
		return
	}

	pkg, err := h.catalogService.UpdatePackage(c.Request.Context(), id, name, version, description, price, files)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg)
}

// @Summary Список пакетов
// @Tags packages
// @Produce json
// @Success 200 {array} models.Package
// @Router /api/packages [get]
func (h *Handler) listPackages(c *gin.Context) {
	packages, err := h.catalogService.ListPackages(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, packages)
}

// @Summary Получить пакет по ID
// @Tags packages
// @Produce json
// @Success 200 {object} models.Package
// @Failure 404 {object} models.ErrorResponse "Пакет не найден"
// @Router /api/packages/{id} [get]
func (h *Handler) getPackage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid package ID."})
		return
	}

	pkg, err := h.catalogService.GetPackage(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

// @Summary Удалить пакет
// @Tags packages
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse "Пакет не найден"
// @Security BearerAuth
// @Router /api/packages/{id} [delete]
func (h *Handler) deletePackage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid package ID."})
		return
	}

	if err := h.catalogService.DeletePackage(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Package deleted successfully"})
}

// @Summary Купить пакет
// @Description Добавляет пакет в профиль пользователя; повторная покупка добавляет еще одну запись
// @Tags packages
// @Accept json
// @Produce json
// @Param request body purchaseRequest true "Идентификаторы пользователя и пакета"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse "Отсутствуют идентификаторы"
// @Failure 404 {object} models.ErrorResponse "Пользователь или пакет не найден"
// @Router /api/packages/purchase [post]
func (h *Handler) purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "User ID and Package ID are required."})
		return
	}
	if req.UserID == "" || req.PackageID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "User ID and Package ID are required."})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "User ID and Package ID are required."})
		return
	}
	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "User ID and Package ID are required."})
		return
	}

	user, err := h.catalogService.Purchase(c.Request.Context(), userID, packageID)
	if err != nil {
		handlePurchaseError(c, err)
		return
	}

	purchasesTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Package purchased successfully!", "user": user})
}

// handlePurchaseError collapses the two not-found halves into the single
// message the storefront expects.
func handlePurchaseError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrUserNotFound) || errors.Is(err, models.ErrPackageNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, models.ErrorResponse{Error: "User or Package not found."})
		return
	}
	handleServiceError(c, err)
}
