package api

import (
	"alcyxob/fitness-companion/internal/domain"
	"alcyxob/fitness-companion/internal/repository"
	"alcyxob/fitness-companion/internal/storage"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GymHandler manages the user's gyms and active-gym selection.
type GymHandler struct {
	gymRepo      repository.GymRepository
	userRepo     repository.UserRepository
	templateRepo repository.TemplateRepository
	archiver     storage.SnapshotArchiver // optional, may be nil
}

// NewGymHandler creates a new GymHandler.
func NewGymHandler(gymRepo repository.GymRepository, userRepo repository.UserRepository, templateRepo repository.TemplateRepository, archiver storage.SnapshotArchiver) *GymHandler {
	return &GymHandler{gymRepo: gymRepo, userRepo: userRepo, templateRepo: templateRepo, archiver: archiver}
}

// --- DTOs ---

// CreateGymRequest defines the expected JSON for creating a gym.
type CreateGymRequest struct {
	Name      string   `json:"name" binding:"required"`
	Equipment []string `json:"equipment" binding:"required"`
}

// SelectGymRequest selects the active gym. A null gymId clears the
// selection back to the global scope.
type SelectGymRequest struct {
	GymID *string `json:"gymId"`
}

// GymResponse is the DTO for returning gym details.
type GymResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Equipment []string  `json:"equipment"`
	CreatedAt time.Time `json:"createdAt"`
}

// MapGymToResponse converts a domain.Gym to GymResponse DTO.
func MapGymToResponse(gym *domain.Gym) GymResponse {
	return GymResponse{
		ID:        gym.ID.Hex(),
		Name:      gym.Name,
		Equipment: gym.Equipment,
		CreatedAt: gym.CreatedAt,
	}
}

// --- Handler Methods ---

// CreateGym registers a new gym with its equipment set.
// POST /api/v1/gyms
func (h *GymHandler) CreateGym(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req CreateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	gym := &domain.Gym{
		UserID:    userID,
		Name:      req.Name,
		Equipment: req.Equipment,
	}
	gymID, err := h.gymRepo.Create(c.Request.Context(), gym)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create gym.")
		return
	}
	gym.ID = gymID

	c.JSON(http.StatusCreated, MapGymToResponse(gym))
}

// GetGyms lists the authenticated user's gyms.
// GET /api/v1/gyms
func (h *GymHandler) GetGyms(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	gyms, err := h.gymRepo.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve gyms.")
		return
	}

	responses := make([]GymResponse, len(gyms))
	for i := range gyms {
		responses[i] = MapGymToResponse(&gyms[i])
	}
	c.JSON(http.StatusOK, responses)
}

// DeleteGym removes a gym and every template scoped to it.
// DELETE /api/v1/gyms/:gymId
func (h *GymHandler) DeleteGym(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	gymID, err := primitive.ObjectIDFromHex(c.Param("gymId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid gym ID format.")
		return
	}

	if err := h.gymRepo.Delete(c.Request.Context(), gymID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Gym not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete gym.")
		}
		return
	}

	// Templates are scoped to the gym; they go with it.
	if err := h.templateRepo.DeleteScope(c.Request.Context(), userID, &gymID); err != nil {
		abortWithError(c, http.StatusInternalServerError, "Gym deleted but template cleanup failed.")
		return
	}

	// The archived snapshot for the scope is dead weight now. Best effort.
	if h.archiver != nil {
		if err := h.archiver.DeleteSnapshot(c.Request.Context(), snapshotKey(userID, &gymID)); err != nil {
			log.Printf("WARN: snapshot cleanup for gym %s failed: %v", gymID.Hex(), err)
		}
	}

	c.Status(http.StatusNoContent)
}

// SelectGym sets (or clears) the user's active gym.
// PUT /api/v1/users/me/gym
func (h *GymHandler) SelectGym(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	var req SelectGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	var gymID *primitive.ObjectID
	if req.GymID != nil {
		id, err := primitive.ObjectIDFromHex(*req.GymID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid gym ID format.")
			return
		}
		// The gym must exist and belong to this user before it can become
		// the active scope.
		gym, err := h.gymRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				abortWithError(c, http.StatusNotFound, "Gym not found.")
			} else {
				abortWithError(c, http.StatusInternalServerError, "Failed to resolve gym.")
			}
			return
		}
		if gym.UserID != userID {
			abortWithError(c, http.StatusForbidden, "Gym belongs to another user.")
			return
		}
		gymID = &id
	}

	if err := h.userRepo.SetSelectedGym(c.Request.Context(), userID, gymID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update gym selection.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
