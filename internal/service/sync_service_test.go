package service

import (
	"alcyxob/fitness-companion/internal/domain"
	"alcyxob/fitness-companion/internal/remote"
	"context"
	"errors"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newSyncFixture(t *testing.T, source *stubSource) (SyncService, *memTemplateRepo, primitive.ObjectID) {
	t.Helper()
	userID := primitive.NewObjectID()
	userRepo := newMemUserRepo(domain.User{ID: userID, Email: "user@example.com"})
	templateRepo := newMemTemplateRepo()
	svc := NewSyncService(userRepo, templateRepo, source, NewScopeGate())
	return svc, templateRepo, userID
}

func TestSynchronize_AppliesRemoteAnswer(t *testing.T) {
	source := &stubSource{templates: []remote.RemoteTemplate{
		{ID: "t1", Name: "Push Day", Exercises: []remote.RemoteExercise{
			{Name: "Bench Press", OrderIndex: 0, Sets: 3, Reps: "8-12"},
		}},
		{ID: "t2", Name: "Pull Day"},
	}}
	svc, templateRepo, userID := newSyncFixture(t, source)

	outcome, err := svc.Synchronize(context.Background(), userID, nil)
	if err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if outcome.Status != SyncApplied || outcome.Applied != 2 || outcome.Inserted != 2 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	stored, _ := templateRepo.ListByOwner(context.Background(), userID, nil)
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored templates, got %d", len(stored))
	}
}

func TestSynchronize_IdempotentOnUnchangedRemote(t *testing.T) {
	source := &stubSource{templates: []remote.RemoteTemplate{
		{ID: "t1", Name: "Push Day", Exercises: []remote.RemoteExercise{
			{Name: "Bench Press", OrderIndex: 0, Sets: 3, Reps: "8-12"},
		}},
	}}
	svc, templateRepo, userID := newSyncFixture(t, source)

	if _, err := svc.Synchronize(context.Background(), userID, nil); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	first, _ := templateRepo.ListByOwner(context.Background(), userID, nil)

	if _, err := svc.Synchronize(context.Background(), userID, nil); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	second, _ := templateRepo.ListByOwner(context.Background(), userID, nil)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("store changed across identical syncs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestSynchronize_EmptyRemoteIsPendingNotWipe(t *testing.T) {
	source := &stubSource{templates: []remote.RemoteTemplate{{ID: "t1", Name: "Push Day"}}}
	svc, templateRepo, userID := newSyncFixture(t, source)

	if _, err := svc.Synchronize(context.Background(), userID, nil); err != nil {
		t.Fatalf("populate sync: %v", err)
	}

	// Remote now answers empty: generation job race, not a deletion order.
	source.templates = nil
	outcome, err := svc.Synchronize(context.Background(), userID, nil)
	if err != nil {
		t.Fatalf("empty sync: %v", err)
	}
	if outcome.Status != SyncPending {
		t.Fatalf("expected pending outcome, got %+v", outcome)
	}
	if outcome.Applied != 0 {
		t.Errorf("pending outcome must not report applied templates, got %d", outcome.Applied)
	}

	stored, _ := templateRepo.ListByOwner(context.Background(), userID, nil)
	if len(stored) != 1 || stored[0].ID != "t1" {
		t.Fatalf("local store must be untouched on empty remote, got %+v", stored)
	}
}

func TestSynchronize_DeletesObsoleteTemplates(t *testing.T) {
	source := &stubSource{templates: []remote.RemoteTemplate{
		{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"},
	}}
	svc, templateRepo, userID := newSyncFixture(t, source)

	if _, err := svc.Synchronize(context.Background(), userID, nil); err != nil {
		t.Fatalf("populate sync: %v", err)
	}

	source.templates = []remote.RemoteTemplate{{ID: "a", Name: "A"}, {ID: "c", Name: "C"}}
	outcome, err := svc.Synchronize(context.Background(), userID, nil)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if outcome.Deleted != 1 {
		t.Errorf("expected 1 deletion, got %d", outcome.Deleted)
	}

	stored, _ := templateRepo.ListByOwner(context.Background(), userID, nil)
	ids := make([]string, len(stored))
	for i, tpl := range stored {
		ids[i] = tpl.ID
	}
	if !reflect.DeepEqual(ids, []string{"a", "c"}) {
		t.Fatalf("expected exactly {a, c} after resync, got %v", ids)
	}
}

func TestSynchronize_TransportErrorLeavesStoreUntouched(t *testing.T) {
	source := &stubSource{templates: []remote.RemoteTemplate{{ID: "t1", Name: "Push Day"}}}
	svc, templateRepo, userID := newSyncFixture(t, source)

	if _, err := svc.Synchronize(context.Background(), userID, nil); err != nil {
		t.Fatalf("populate sync: %v", err)
	}

	source.err = &remote.TransportError{Temporary: true, Err: errBoom}
	_, err := svc.Synchronize(context.Background(), userID, nil)

	var te *remote.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error to propagate, got %v", err)
	}
	stored, _ := templateRepo.ListByOwner(context.Background(), userID, nil)
	if len(stored) != 1 {
		t.Fatalf("store must be untouched after transport failure, got %+v", stored)
	}
}

func TestSynchronize_PersistenceFailurePropagates(t *testing.T) {
	source := &stubSource{templates: []remote.RemoteTemplate{{ID: "t1", Name: "Push Day"}}}
	svc, templateRepo, userID := newSyncFixture(t, source)
	templateRepo.failApply = errBoom

	_, err := svc.Synchronize(context.Background(), userID, nil)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected persistence error to surface, got %v", err)
	}
}

func TestSynchronize_UsesSelectedGymScope(t *testing.T) {
	userID := primitive.NewObjectID()
	gymID := primitive.NewObjectID()
	userRepo := newMemUserRepo(domain.User{ID: userID, Email: "user@example.com", SelectedGymID: &gymID})
	templateRepo := newMemTemplateRepo()
	source := &stubSource{templates: []remote.RemoteTemplate{{ID: "t1", Name: "Push Day"}}}
	svc := NewSyncService(userRepo, templateRepo, source, NewScopeGate())

	if _, err := svc.Synchronize(context.Background(), userID, nil); err != nil {
		t.Fatalf("Synchronize: %v", err)
	}

	inGym, _ := templateRepo.ListByOwner(context.Background(), userID, &gymID)
	if len(inGym) != 1 {
		t.Fatalf("expected template stored under the selected gym scope, got %+v", inGym)
	}
	global, _ := templateRepo.ListByOwner(context.Background(), userID, nil)
	if len(global) != 0 {
		t.Fatalf("global scope must stay empty, got %+v", global)
	}
}

func TestSynchronize_ReportsProgressStages(t *testing.T) {
	source := &stubSource{templates: []remote.RemoteTemplate{{ID: "t1", Name: "Push Day"}}}
	svc, _, userID := newSyncFixture(t, source)

	var stages []SyncStage
	if _, err := svc.Synchronize(context.Background(), userID, func(stage SyncStage) {
		stages = append(stages, stage)
	}); err != nil {
		t.Fatalf("Synchronize: %v", err)
	}

	want := []SyncStage{StageFetching, StagePlanning, StageApplying, StageDone}
	if !reflect.DeepEqual(stages, want) {
		t.Errorf("stages = %v, want %v", stages, want)
	}
}

func TestSynchronize_UnknownUser(t *testing.T) {
	svc := NewSyncService(newMemUserRepo(), newMemTemplateRepo(), &stubSource{}, NewScopeGate())

	_, err := svc.Synchronize(context.Background(), primitive.NewObjectID(), nil)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
