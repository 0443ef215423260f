package service

import (
	"alcyxob/fitness-companion/internal/remote"
	"alcyxob/fitness-companion/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound = errors.New("user not found")
)

// SyncStatus distinguishes the terminal states of one synchronize run.
type SyncStatus string

const (
	// SyncApplied: the remote answer was reconciled into the local store.
	SyncApplied SyncStatus = "applied"
	// SyncPending: the remote answered with zero templates, which means
	// "generation still running", not "delete everything". Nothing was
	// mutated; the caller should try again later.
	SyncPending SyncStatus = "pending"
)

// SyncOutcome reports what a synchronize run did.
type SyncOutcome struct {
	Status   SyncStatus `json:"status"`
	Applied  int        `json:"applied"`  // templates now present for the scope (0 when pending)
	Deleted  int        `json:"deleted"`  // obsolete local templates removed
	Inserted int        `json:"inserted"` // templates that had no local match

	// GymID is the scope the run resolved from the user's profile and wrote
	// to (nil = global). Callers acting on the synced partition, like the
	// snapshot archiver, must use this rather than re-guess the scope.
	GymID *primitive.ObjectID `json:"gymId,omitempty"`
}

// SyncStage identifies a point in the synchronize flow, reported through
// the caller-supplied progress callback.
type SyncStage string

const (
	StageFetching SyncStage = "fetching"
	StagePlanning SyncStage = "planning"
	StageApplying SyncStage = "applying"
	StageDone     SyncStage = "done"
)

// ProgressFunc receives stage transitions during a synchronize run. The
// callback is owned by the caller and invoked synchronously; there is no
// shared progress singleton.
type ProgressFunc func(stage SyncStage)

// --- Service Interface ---

// SyncService reconciles the remote-authoritative template set for a user
// into the local template store.
type SyncService interface {
	// Synchronize fetches the user's templates from the remote source and
	// applies them to the local store for the user's currently selected gym
	// scope. progress may be nil.
	//
	// Transport failures and persistence failures leave the store untouched
	// and are returned as errors; an empty remote answer returns a pending
	// outcome with no mutation.
	Synchronize(ctx context.Context, userID primitive.ObjectID, progress ProgressFunc) (SyncOutcome, error)
}

// --- Service Implementation ---

// syncService implements the SyncService interface.
type syncService struct {
	userRepo     repository.UserRepository
	templateRepo repository.TemplateRepository
	source       remote.TemplateSource
	gate         *ScopeGate
}

// NewSyncService creates a new instance of syncService. gate serializes
// writers per (user, gym) scope and should be shared with the adaptation
// service (see NewScopeGate).
func NewSyncService(
	userRepo repository.UserRepository,
	templateRepo repository.TemplateRepository,
	source remote.TemplateSource,
	gate *ScopeGate,
) SyncService {
	return &syncService{
		userRepo:     userRepo,
		templateRepo: templateRepo,
		source:       source,
		gate:         gate,
	}
}

func (s *syncService) Synchronize(ctx context.Context, userID primitive.ObjectID, progress ProgressFunc) (SyncOutcome, error) {
	if userID == primitive.NilObjectID {
		return SyncOutcome{}, errors.New("user ID is required")
	}
	report := func(stage SyncStage) {
		if progress != nil {
			progress(stage)
		}
	}

	// 1. Resolve the user's currently selected gym scope.
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return SyncOutcome{}, ErrUserNotFound
		}
		return SyncOutcome{}, err
	}
	gymID := user.SelectedGymID

	unlock := s.gate.lock(userID, gymID)
	defer unlock()

	// 2. Fetch the remote answer. Any transport failure (including timeout)
	// propagates as-is with zero local mutation; retries are the caller's
	// concern.
	report(StageFetching)
	remoteTemplates, err := s.source.FetchTemplates(ctx, userID.Hex())
	if err != nil {
		return SyncOutcome{}, err
	}

	// 3. Empty result means the server-side generation job has not finished
	// yet. Wiping a populated local cache over that race would be a data
	// loss bug; report pending and touch nothing.
	if len(remoteTemplates) == 0 {
		report(StageDone)
		return SyncOutcome{Status: SyncPending, GymID: gymID}, nil
	}

	// 4. Compute the merge plan against the current local set.
	report(StagePlanning)
	local, err := s.templateRepo.ListByOwner(ctx, userID, gymID)
	if err != nil {
		return SyncOutcome{}, err
	}
	plan := BuildTemplatePlan(local, remoteTemplates, userID, gymID)

	// 5. Commit the whole plan as one batch.
	report(StageApplying)
	if err := s.templateRepo.ApplyPlan(ctx, plan); err != nil {
		return SyncOutcome{}, err
	}

	report(StageDone)
	return SyncOutcome{
		Status:   SyncApplied,
		Applied:  plan.Applied(),
		Deleted:  len(plan.Deletions),
		Inserted: len(plan.Additions),
		GymID:    gymID,
	}, nil
}
