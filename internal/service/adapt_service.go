package service

import (
	"alcyxob/fitness-companion/internal/domain"
	"alcyxob/fitness-companion/internal/repository"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrGymNotFound = errors.New("target gym not found")
)

// NoteEquipmentMissing is appended to an exercise's notes when no substitute
// exists for it at the target gym. The exercise is kept rather than dropped,
// so the user sees why the entry may not be performable.
const NoteEquipmentMissing = "[equipment missing at this gym]"

// --- Service Interface ---

// AdaptationService rewrites a source gym's template set for a target gym's
// equipment, substituting exercises that need unavailable equipment.
type AdaptationService interface {
	// Adapt copies the (userID, sourceGymID) template set to targetGymID,
	// replacing the target gym's existing templates entirely. sourceGymID
	// nil means the global (no-gym) template set is the source.
	//
	// A missing target gym fails with ErrGymNotFound before anything is
	// deleted. An empty source set succeeds trivially.
	Adapt(ctx context.Context, userID primitive.ObjectID, sourceGymID *primitive.ObjectID, targetGymID primitive.ObjectID) error
}

// --- Service Implementation ---

// adaptationService implements the AdaptationService interface.
type adaptationService struct {
	templateRepo repository.TemplateRepository
	gymRepo      repository.GymRepository
	catalogRepo  repository.CatalogRepository
	gate         *ScopeGate
}

// NewAdaptationService creates a new instance of adaptationService. gate
// must be the same ScopeGate given to the sync service.
func NewAdaptationService(
	templateRepo repository.TemplateRepository,
	gymRepo repository.GymRepository,
	catalogRepo repository.CatalogRepository,
	gate *ScopeGate,
) AdaptationService {
	return &adaptationService{
		templateRepo: templateRepo,
		gymRepo:      gymRepo,
		catalogRepo:  catalogRepo,
		gate:         gate,
	}
}

func (s *adaptationService) Adapt(ctx context.Context, userID primitive.ObjectID, sourceGymID *primitive.ObjectID, targetGymID primitive.ObjectID) error {
	if userID == primitive.NilObjectID || targetGymID == primitive.NilObjectID {
		return errors.New("user ID and target gym ID are required")
	}

	// 1. Resolve the target gym before anything destructive happens. The
	// equipment set must be known or the whole operation is off.
	gym, err := s.gymRepo.GetByID(ctx, targetGymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGymNotFound
		}
		return err
	}
	available := gym.EquipmentSet()

	unlock := s.gate.lock(userID, &targetGymID)
	defer unlock()

	// 2. Load the source program. No source program is not a failure; there
	// is simply nothing to adapt.
	sourceTemplates, err := s.templateRepo.ListByOwner(ctx, userID, sourceGymID)
	if err != nil {
		return err
	}
	if len(sourceTemplates) == 0 {
		return nil
	}

	catalog, err := s.catalogRepo.AllExercises(ctx)
	if err != nil {
		return err
	}

	// 3. Build the adapted template set in memory.
	adapted := make([]domain.Template, 0, len(sourceTemplates))
	for i := range sourceTemplates {
		adapted = append(adapted, s.adaptTemplate(&sourceTemplates[i], userID, targetGymID, available, catalog))
	}

	// 4. Replace the target gym's program as one batch: delete everything
	// stored for (user, target gym), insert the adapted set.
	return s.templateRepo.ReplaceScope(ctx, userID, &targetGymID, adapted)
}

// adaptTemplate produces the target-gym copy of one source template.
func (s *adaptationService) adaptTemplate(src *domain.Template, userID, targetGymID primitive.ObjectID, available map[string]bool, catalog []domain.CatalogExercise) domain.Template {
	gymID := targetGymID
	out := domain.Template{
		ID:           uuid.NewString(), // locally generated; this template never resyncs
		UserID:       userID,
		GymID:        &gymID,
		Name:         src.Name,
		MuscleFocus:  src.MuscleFocus,
		DayOfWeek:    src.DayOfWeek,
		DurationMins: src.DurationMins,
		WarmUp:       src.WarmUp,
		Exercises:    make([]domain.TemplateExercise, 0, len(src.Exercises)),
	}

	for i := range src.Exercises {
		out.Exercises = append(out.Exercises, adaptExercise(&src.Exercises[i], available, catalog))
	}
	return out
}

// adaptExercise decides, for one source exercise, between a verbatim copy,
// a catalog substitution, and a kept-but-flagged copy.
func adaptExercise(src *domain.TemplateExercise, available map[string]bool, catalog []domain.CatalogExercise) domain.TemplateExercise {
	// Performable as-is: copy verbatim.
	if domain.HasAllEquipment(available, src.RequiredEquipment) {
		return *src
	}

	substitute := FindAlternative(src, available, catalog)
	if substitute == nil {
		// No substitute: keep the original entry but flag it, so the user
		// is never shown a silently incomplete workout.
		flagged := *src
		flagged.Notes = appendNote(flagged.Notes, NoteEquipmentMissing)
		return flagged
	}

	out := domain.TemplateExercise{
		ExerciseKey:       substitute.Key,
		Name:              substitute.Name,
		OrderIndex:        src.OrderIndex,
		Sets:              src.Sets,
		Reps:              src.Reps,
		RequiredEquipment: substitute.RequiredEquipment,
		Muscles:           append(append([]string{}, substitute.PrimaryMuscles...), substitute.SecondaryMuscles...),
		Notes:             appendNote(src.Notes, fmt.Sprintf("adapted from %s", src.Name)),
	}

	// Weight policy: a bodyweight substitute has no external load, so the
	// carried-over number would be meaningless. Otherwise keep the original
	// weight unchanged and let the user recalibrate; no load scaling.
	if !substitute.IsBodyweight() {
		out.WeightKg = src.WeightKg
	}
	return out
}

// appendNote appends note to existing, separating with "; " when both are
// non-empty.
func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}
