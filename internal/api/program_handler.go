package api

import (
	"alcyxob/fitness-companion/internal/domain"
	"alcyxob/fitness-companion/internal/remote"
	"alcyxob/fitness-companion/internal/repository"
	"alcyxob/fitness-companion/internal/service"
	"alcyxob/fitness-companion/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramHandler exposes the synchronize and adapt operations plus template
// listing for the authenticated user.
type ProgramHandler struct {
	syncService  service.SyncService
	adaptService service.AdaptationService
	templateRepo repository.TemplateRepository
	userRepo     repository.UserRepository
	archiver     storage.SnapshotArchiver // nil when archiving is disabled
}

// NewProgramHandler creates a new ProgramHandler. archiver may be nil.
func NewProgramHandler(
	syncService service.SyncService,
	adaptService service.AdaptationService,
	templateRepo repository.TemplateRepository,
	userRepo repository.UserRepository,
	archiver storage.SnapshotArchiver,
) *ProgramHandler {
	return &ProgramHandler{
		syncService:  syncService,
		adaptService: adaptService,
		templateRepo: templateRepo,
		userRepo:     userRepo,
		archiver:     archiver,
	}
}

// --- DTOs ---

// SyncResponse reports the outcome of one synchronize run.
type SyncResponse struct {
	Status   string `json:"status"`
	Applied  int    `json:"applied"`
	Deleted  int    `json:"deleted"`
	Inserted int    `json:"inserted"`
}

// AdaptRequest selects the source scope for an adaptation. A missing
// sourceGymId means the global (no-gym) template set.
type AdaptRequest struct {
	SourceGymID *string `json:"sourceGymId,omitempty"`
}

// TemplateResponse is the DTO for returning a template with its exercises.
type TemplateResponse struct {
	ID           string                     `json:"id"`
	GymID        string                     `json:"gymId,omitempty"`
	Name         string                     `json:"name"`
	MuscleFocus  string                     `json:"muscleFocus,omitempty"`
	DayOfWeek    *int                       `json:"dayOfWeek,omitempty"`
	DurationMins *int                       `json:"durationMins,omitempty"`
	WarmUp       string                     `json:"warmUp,omitempty"`
	Exercises    []TemplateExerciseResponse `json:"exercises"`
	CreatedAt    time.Time                  `json:"createdAt"`
	UpdatedAt    time.Time                  `json:"updatedAt"`
}

type TemplateExerciseResponse struct {
	ExerciseKey       string   `json:"exerciseKey"`
	Name              string   `json:"name"`
	OrderIndex        int      `json:"orderIndex"`
	Sets              int      `json:"sets"`
	Reps              string   `json:"reps"`
	WeightKg          *float64 `json:"weightKg,omitempty"`
	RequiredEquipment []string `json:"requiredEquipment"`
	Muscles           []string `json:"muscles"`
	Notes             string   `json:"notes,omitempty"`
}

// MapTemplateToResponse converts a domain.Template to TemplateResponse DTO.
func MapTemplateToResponse(tpl *domain.Template) TemplateResponse {
	resp := TemplateResponse{
		ID:           tpl.ID,
		Name:         tpl.Name,
		MuscleFocus:  tpl.MuscleFocus,
		DayOfWeek:    tpl.DayOfWeek,
		DurationMins: tpl.DurationMins,
		WarmUp:       tpl.WarmUp,
		Exercises:    make([]TemplateExerciseResponse, len(tpl.Exercises)),
		CreatedAt:    tpl.CreatedAt,
		UpdatedAt:    tpl.UpdatedAt,
	}
	if tpl.GymID != nil {
		resp.GymID = tpl.GymID.Hex()
	}
	for i, ex := range tpl.Exercises {
		resp.Exercises[i] = TemplateExerciseResponse{
			ExerciseKey:       ex.ExerciseKey,
			Name:              ex.Name,
			OrderIndex:        ex.OrderIndex,
			Sets:              ex.Sets,
			Reps:              ex.Reps,
			WeightKg:          ex.WeightKg,
			RequiredEquipment: ex.RequiredEquipment,
			Muscles:           ex.Muscles,
			Notes:             ex.Notes,
		}
	}
	return resp
}

// --- Handler Methods ---

// TriggerSync runs a synchronize pass for the authenticated user against
// their currently selected gym scope.
// POST /api/v1/sync
func (h *ProgramHandler) TriggerSync(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	outcome, err := h.syncService.Synchronize(c.Request.Context(), userID, nil)
	if err != nil {
		var te *remote.TransportError
		switch {
		case errors.As(err, &te):
			// Stale data stays usable; the client surfaces a retry notice.
			abortWithError(c, http.StatusBadGateway, "Template source unavailable, sync delayed.")
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, "User not found.")
		default:
			log.Printf("ERROR: sync for user %s: %v", userID.Hex(), err)
			abortWithError(c, http.StatusInternalServerError, "Sync failed.")
		}
		return
	}

	if outcome.Status == service.SyncApplied {
		// Archive the scope the run actually wrote: the user's selected gym
		// partition, not the global one.
		h.archiveSnapshot(c.Request.Context(), userID, outcome.GymID, "sync")
	}

	status := http.StatusOK
	if outcome.Status == service.SyncPending {
		// Generation still running server-side; nothing changed locally.
		status = http.StatusAccepted
	}
	c.JSON(status, SyncResponse{
		Status:   string(outcome.Status),
		Applied:  outcome.Applied,
		Deleted:  outcome.Deleted,
		Inserted: outcome.Inserted,
	})
}

// AdaptToGym rewrites the source program for the target gym's equipment.
// POST /api/v1/gyms/:gymId/adapt
func (h *ProgramHandler) AdaptToGym(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	targetGymID, err := primitive.ObjectIDFromHex(c.Param("gymId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid gym ID format.")
		return
	}

	// Body is optional; an absent body means "adapt from the global scope".
	var req AdaptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}

	var sourceGymID *primitive.ObjectID
	if req.SourceGymID != nil {
		id, err := primitive.ObjectIDFromHex(*req.SourceGymID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid source gym ID format.")
			return
		}
		sourceGymID = &id
	}

	err = h.adaptService.Adapt(c.Request.Context(), userID, sourceGymID, targetGymID)
	if err != nil {
		if errors.Is(err, service.ErrGymNotFound) {
			abortWithError(c, http.StatusNotFound, "Target gym not found.")
		} else {
			log.Printf("ERROR: adapt for user %s gym %s: %v", userID.Hex(), targetGymID.Hex(), err)
			abortWithError(c, http.StatusInternalServerError, "Adaptation failed.")
		}
		return
	}

	h.archiveSnapshot(c.Request.Context(), userID, &targetGymID, "adapt")

	c.Status(http.StatusNoContent)
}

// GetTemplates lists the authenticated user's templates for their selected
// gym scope.
// GET /api/v1/templates
func (h *ProgramHandler) GetTemplates(c *gin.Context) {
	userID, ok := authedUserID(c)
	if !ok {
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found.")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to load profile.")
		}
		return
	}

	templates, err := h.templateRepo.ListByOwner(c.Request.Context(), userID, user.SelectedGymID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve templates.")
		return
	}

	responses := make([]TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = MapTemplateToResponse(&templates[i])
	}
	c.JSON(http.StatusOK, responses)
}

// snapshotKey is the archive object key for one (user, gym) scope. One
// stable key per scope: each archive overwrites the previous one, and gym
// deletion can clean up with a single object delete.
func snapshotKey(userID primitive.ObjectID, gymID *primitive.ObjectID) string {
	scope := "global"
	if gymID != nil {
		scope = gymID.Hex()
	}
	return fmt.Sprintf("snapshots/%s/%s/latest.json", userID.Hex(), scope)
}

// archiveSnapshot stores the current template set for (user, gym) in the
// snapshot archive. Best effort: failures are logged, never surfaced.
func (h *ProgramHandler) archiveSnapshot(ctx context.Context, userID primitive.ObjectID, gymID *primitive.ObjectID, reason string) {
	if h.archiver == nil {
		return
	}

	templates, err := h.templateRepo.ListByOwner(ctx, userID, gymID)
	if err != nil {
		log.Printf("WARN: %s snapshot read for user %s failed: %v", reason, userID.Hex(), err)
		return
	}

	payload, err := json.Marshal(templates)
	if err != nil {
		log.Printf("WARN: %s snapshot encode for user %s failed: %v", reason, userID.Hex(), err)
		return
	}

	if err := h.archiver.PutSnapshot(ctx, snapshotKey(userID, gymID), "application/json", bytes.NewReader(payload)); err != nil {
		log.Printf("WARN: %s snapshot upload for user %s failed: %v", reason, userID.Hex(), err)
	}
}

// authedUserID pulls the authenticated user's ObjectID out of the request
// context, writing the error response itself on failure.
func authedUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return userID, true
}
