package api

import (
	"alcyxob/fitness-companion/internal/domain"
	"alcyxob/fitness-companion/internal/repository"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the read-only exercise catalog.
type CatalogHandler struct {
	catalogRepo repository.CatalogRepository
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogRepo repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalogRepo: catalogRepo}
}

// CatalogExerciseResponse is the DTO for one catalog entry.
type CatalogExerciseResponse struct {
	Key               string   `json:"key"`
	Name              string   `json:"name"`
	Category          string   `json:"category,omitempty"`
	PrimaryMuscles    []string `json:"primaryMuscles"`
	SecondaryMuscles  []string `json:"secondaryMuscles,omitempty"`
	RequiredEquipment []string `json:"requiredEquipment"`
	Difficulty        string   `json:"difficulty,omitempty"`
	IsCompound        bool     `json:"isCompound"`
}

// MapCatalogExerciseToResponse converts a domain.CatalogExercise to its DTO.
func MapCatalogExerciseToResponse(ex *domain.CatalogExercise) CatalogExerciseResponse {
	return CatalogExerciseResponse{
		Key:               ex.Key,
		Name:              ex.Name,
		Category:          ex.Category,
		PrimaryMuscles:    ex.PrimaryMuscles,
		SecondaryMuscles:  ex.SecondaryMuscles,
		RequiredEquipment: ex.RequiredEquipment,
		Difficulty:        ex.Difficulty,
		IsCompound:        ex.IsCompound,
	}
}

// GetCatalogExercises returns the full catalog snapshot.
// GET /api/v1/catalog/exercises
func (h *CatalogHandler) GetCatalogExercises(c *gin.Context) {
	exercises, err := h.catalogRepo.AllExercises(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve catalog.")
		return
	}

	responses := make([]CatalogExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapCatalogExerciseToResponse(&exercises[i])
	}
	c.JSON(http.StatusOK, responses)
}
