// internal/service/mergeplan.go
package service

import (
	"alcyxob/fitness-companion/internal/domain"
	"alcyxob/fitness-companion/internal/remote"
	"alcyxob/fitness-companion/internal/repository"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuildTemplatePlan reconciles the locally stored template set against a
// non-empty remote answer and returns the batch of changes to apply. The
// remote side is authoritative once it has answered with data:
//   - local templates absent from the remote set are deleted,
//   - templates present on both sides are replaced in place,
//   - remote templates with no local match are inserted.
//
// The function is pure, so reconciliation behavior (idempotence, obsolete
// deletion, dedup) is testable without any storage.
func BuildTemplatePlan(local []domain.Template, remoteTemplates []remote.RemoteTemplate, userID primitive.ObjectID, gymID *primitive.ObjectID) *repository.TemplatePlan {
	plan := &repository.TemplatePlan{}

	remoteIDs := make(map[string]bool, len(remoteTemplates))
	for _, rt := range remoteTemplates {
		remoteIDs[rt.ID] = true
	}

	localByID := make(map[string]*domain.Template, len(local))
	for i := range local {
		tpl := &local[i]
		if !remoteIDs[tpl.ID] {
			// Obsolete: the remote no longer knows this template.
			plan.Deletions = append(plan.Deletions, tpl.ID)
			continue
		}
		localByID[tpl.ID] = tpl
	}

	for _, rt := range remoteTemplates {
		tpl := templateFromRemote(rt, userID, gymID)
		if existing, ok := localByID[rt.ID]; ok {
			// Keep the original creation time; everything else is replaced,
			// including the whole embedded exercise collection. A template
			// whose content already matches the remote needs no write at
			// all, which keeps a resync against an unchanged remote a true
			// no-op (stable UpdatedAt included).
			tpl.CreatedAt = existing.CreatedAt
			if templateContentEqual(&tpl, existing) {
				plan.Unchanged++
			} else {
				plan.Updates = append(plan.Updates, tpl)
			}
		} else {
			plan.Additions = append(plan.Additions, tpl)
		}
	}

	return plan
}

// templateFromRemote maps one remote payload template into the local model.
func templateFromRemote(rt remote.RemoteTemplate, userID primitive.ObjectID, gymID *primitive.ObjectID) domain.Template {
	return domain.Template{
		ID:           rt.ID,
		UserID:       userID,
		GymID:        gymID,
		Name:         rt.Name,
		MuscleFocus:  rt.MuscleFocus,
		DayOfWeek:    rt.DayOfWeek,
		DurationMins: rt.DurationMins,
		WarmUp:       rt.WarmUp,
		Exercises:    exercisesFromRemote(rt.Exercises),
	}
}

// templateContentEqual compares everything but the timestamps. Stored
// templates may carry a nil exercise slice where the remote mapping
// produces an empty one; length comparison treats those the same.
func templateContentEqual(a, b *domain.Template) bool {
	if a.ID != b.ID || a.UserID != b.UserID || !objectIDPtrEqual(a.GymID, b.GymID) {
		return false
	}
	if a.Name != b.Name || a.MuscleFocus != b.MuscleFocus || a.WarmUp != b.WarmUp {
		return false
	}
	if !intPtrEqual(a.DayOfWeek, b.DayOfWeek) || !intPtrEqual(a.DurationMins, b.DurationMins) {
		return false
	}
	if len(a.Exercises) != len(b.Exercises) {
		return false
	}
	for i := range a.Exercises {
		if !exerciseContentEqual(&a.Exercises[i], &b.Exercises[i]) {
			return false
		}
	}
	return true
}

func exerciseContentEqual(a, b *domain.TemplateExercise) bool {
	if a.ExerciseKey != b.ExerciseKey || a.Name != b.Name || a.OrderIndex != b.OrderIndex {
		return false
	}
	if a.Sets != b.Sets || a.Reps != b.Reps || a.Notes != b.Notes {
		return false
	}
	if !floatPtrEqual(a.WeightKg, b.WeightKg) {
		return false
	}
	return stringSlicesEqual(a.RequiredEquipment, b.RequiredEquipment) && stringSlicesEqual(a.Muscles, b.Muscles)
}

func objectIDPtrEqual(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// exercisesFromRemote maps and deduplicates the exercise entries of one
// remote template. Malformed server answers have been observed to repeat
// entries; the composite key (lowercased name, order index) keeps only the
// first occurrence of each.
func exercisesFromRemote(remoteExercises []remote.RemoteExercise) []domain.TemplateExercise {
	seen := make(map[string]bool, len(remoteExercises))
	exercises := make([]domain.TemplateExercise, 0, len(remoteExercises))

	for _, re := range remoteExercises {
		key := fmt.Sprintf("%s|%d", strings.ToLower(re.Name), re.OrderIndex)
		if seen[key] {
			continue
		}
		seen[key] = true

		exercises = append(exercises, domain.TemplateExercise{
			ExerciseKey:       re.ExerciseKey,
			Name:              re.Name,
			OrderIndex:        re.OrderIndex,
			Sets:              re.Sets,
			Reps:              re.Reps,
			WeightKg:          re.WeightKg,
			RequiredEquipment: re.RequiredEquipment,
			Muscles:           re.Muscles,
			Notes:             re.Notes,
		})
	}
	return exercises
}
