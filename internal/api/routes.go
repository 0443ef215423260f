package api

import (
	"alcyxob/fitness-companion/internal/repository"
	"alcyxob/fitness-companion/internal/service"
	"alcyxob/fitness-companion/internal/storage"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all handlers onto the router. archiver may be nil when
// snapshot archiving is disabled.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	syncService service.SyncService,
	adaptService service.AdaptationService,
	templateRepo repository.TemplateRepository,
	userRepo repository.UserRepository,
	gymRepo repository.GymRepository,
	catalogRepo repository.CatalogRepository,
	archiver storage.SnapshotArchiver,
) {
	programHandler := NewProgramHandler(syncService, adaptService, templateRepo, userRepo, archiver)
	gymHandler := NewGymHandler(gymRepo, userRepo, templateRepo, archiver)
	catalogHandler := NewCatalogHandler(catalogRepo)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Program Routes ---
		protected.POST("/sync", programHandler.TriggerSync)
		protected.GET("/templates", programHandler.GetTemplates)

		// --- Gym Routes ---
		gymGroup := protected.Group("/gyms")
		{
			gymGroup.POST("", gymHandler.CreateGym)
			gymGroup.GET("", gymHandler.GetGyms)
			gymGroup.DELETE("/:gymId", gymHandler.DeleteGym)
			// Rewrites the source program for this gym's equipment.
			gymGroup.POST("/:gymId/adapt", programHandler.AdaptToGym)
		}

		// --- Profile Routes ---
		protected.PUT("/users/me/gym", gymHandler.SelectGym)

		// --- Catalog Routes ---
		protected.GET("/catalog/exercises", catalogHandler.GetCatalogExercises)
	}
}
