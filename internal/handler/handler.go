package handler

import (
	"techstore-server/internal/config"
	"techstore-server/internal/interfaces"
	"techstore-server/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler wires the HTTP surface to the services.
type Handler struct {
	authService    service.AuthService
	catalogService service.CatalogService
	userRepo       interfaces.UserRepository
	ledger         interfaces.PurchaseLedger
	cfg            *config.Config
}

func NewHandler(authService service.AuthService, catalogService service.CatalogService, userRepo interfaces.UserRepository, ledger interfaces.PurchaseLedger, cfg *config.Config) *Handler {
	return &Handler{
		authService:    authService,
		catalogService: catalogService,
		userRepo:       userRepo,
		ledger:         ledger,
		cfg:            cfg,
	}
}

// RegisterRoutes mounts every route. rateLimit guards the credential
// endpoints only.
func (h *Handler) RegisterRoutes(router *gin.Engine, rateLimit gin.HandlerFunc) {
	userGroup := router.Group("/user")
	{
		userGroup.POST("/register", rateLimit, h.register)
		userGroup.POST("/login", rateLimit, h.login)

		userGroup.GET("/all", h.AuthMiddleware(), h.listUsers)
		userGroup.GET("/by-email/:email", h.AuthMiddleware(), h.getUserByEmail)
		userGroup.PATCH("/edit-name/:email", h.AuthMiddleware(), h.OwnershipMiddleware(), h.editName)
		userGroup.PATCH("/update-password/:email", h.AuthMiddleware(), h.OwnershipMiddleware(), h.updatePassword)
		userGroup.DELETE("/delete-account/:email", h.AuthMiddleware(), h.OwnershipMiddleware(), h.deleteAccount)

		userGroup.PATCH("/:id/block", h.AuthMiddleware(), h.AdminMiddleware(), h.toggleBlock)
		userGroup.PATCH("/edit-role/:id", h.AuthMiddleware(), h.AdminMiddleware(), h.updateRole)

		userGroup.POST("/upload-image", h.AuthMiddleware(), h.uploadProfileImage)
		userGroup.GET("/profile-image", h.AuthMiddleware(), h.getProfileImage)
		userGroup.PATCH("/update-profile-image", h.AuthMiddleware(), h.updateProfileImage)
		userGroup.DELETE("/remove-profile-image", h.AuthMiddleware(), h.removeProfileImage)
	}

	packageGroup := router.Group("/api/packages")
	{
		packageGroup.GET("", h.listPackages)
		packageGroup.GET("/:id", h.getPackage)
		packageGroup.POST("/purchase", h.purchase)

		packageGroup.POST("", h.AuthMiddleware(), h.AdminMiddleware(), h.createPackage)
		packageGroup.PUT("/:id", h.AuthMiddleware(), h.AdminMiddleware(), h.updatePackage)
		packageGroup.DELETE("/:id", h.AuthMiddleware(), h.AdminMiddleware(), h.deletePackage)
	}

	imageGroup := router.Group("/api/images")
	{
		imageGroup.POST("/upload", h.uploadImage)
		imageGroup.POST("/edit", h.editImage)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
