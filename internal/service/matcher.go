// internal/service/matcher.go
package service

import (
	"alcyxob/fitness-companion/internal/domain"
	"strings"
)

// FindAlternative returns the best substitute for source from the catalog,
// performable with the given equipment set, or nil when none qualifies.
//
// A candidate qualifies when all of the following hold:
//  1. its name differs from the source exercise's name,
//  2. its primary muscles overlap the source exercise's muscles,
//  3. its required equipment is fully available.
//
// Ranking is a total order: candidates whose primary-muscle list contains
// the source's first listed muscle rank above the rest; ties break by
// ascending exercise name. Deterministic input, deterministic answer.
func FindAlternative(source *domain.TemplateExercise, availableEquipment map[string]bool, catalog []domain.CatalogExercise) *domain.CatalogExercise {
	primary := strings.ToLower(source.PrimaryMuscle())

	var best *domain.CatalogExercise
	var bestHitsPrimary bool

	for i := range catalog {
		candidate := &catalog[i]

		if strings.EqualFold(candidate.Name, source.Name) {
			continue
		}
		if !musclesOverlap(candidate.PrimaryMuscles, source.Muscles) {
			continue
		}
		if !domain.HasAllEquipment(availableEquipment, candidate.RequiredEquipment) {
			continue
		}

		hitsPrimary := primary != "" && containsMuscle(candidate.PrimaryMuscles, primary)

		if best == nil || ranksAbove(candidate, hitsPrimary, best, bestHitsPrimary) {
			best = candidate
			bestHitsPrimary = hitsPrimary
		}
	}
	return best
}

// ranksAbove reports whether candidate outranks the current best.
func ranksAbove(candidate *domain.CatalogExercise, candidateHitsPrimary bool, best *domain.CatalogExercise, bestHitsPrimary bool) bool {
	if candidateHitsPrimary != bestHitsPrimary {
		return candidateHitsPrimary
	}
	return strings.ToLower(candidate.Name) < strings.ToLower(best.Name)
}

// musclesOverlap reports whether the two muscle lists share at least one
// entry, case-insensitively.
func musclesOverlap(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, m := range a {
		set[strings.ToLower(strings.TrimSpace(m))] = true
	}
	for _, m := range b {
		if set[strings.ToLower(strings.TrimSpace(m))] {
			return true
		}
	}
	return false
}

// containsMuscle reports whether the list contains the (already lowercased)
// muscle name.
func containsMuscle(muscles []string, lowered string) bool {
	for _, m := range muscles {
		if strings.ToLower(strings.TrimSpace(m)) == lowered {
			return true
		}
	}
	return false
}
