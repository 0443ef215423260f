package service

import (
	"alcyxob/fitness-companion/internal/domain"
	"alcyxob/fitness-companion/internal/remote"
	"alcyxob/fitness-companion/internal/repository"
	"context"
	"errors"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory fakes standing in for the Mongo repositories and the remote
// template source. They replicate the contracts the services rely on:
// stable list order, atomic batch application, scope filtering.

type memTemplateRepo struct {
	templates map[string]domain.Template // by template ID
	failApply error                      // when set, ApplyPlan/ReplaceScope fail without mutating
}

func newMemTemplateRepo() *memTemplateRepo {
	return &memTemplateRepo{templates: make(map[string]domain.Template)}
}

func sameScope(tpl *domain.Template, userID primitive.ObjectID, gymID *primitive.ObjectID) bool {
	if tpl.UserID != userID {
		return false
	}
	if gymID == nil {
		return tpl.GymID == nil
	}
	return tpl.GymID != nil && *tpl.GymID == *gymID
}

func (r *memTemplateRepo) ListByOwner(_ context.Context, userID primitive.ObjectID, gymID *primitive.ObjectID) ([]domain.Template, error) {
	var out []domain.Template
	for _, tpl := range r.templates {
		if sameScope(&tpl, userID, gymID) {
			out = append(out, tpl)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memTemplateRepo) ApplyPlan(_ context.Context, plan *repository.TemplatePlan) error {
	if r.failApply != nil {
		return r.failApply
	}
	if plan == nil {
		return nil
	}
	for _, id := range plan.Deletions {
		delete(r.templates, id)
	}
	for _, tpl := range plan.Updates {
		if _, ok := r.templates[tpl.ID]; !ok {
			return repository.ErrUpdateFailed
		}
		r.templates[tpl.ID] = tpl
	}
	for _, tpl := range plan.Additions {
		r.templates[tpl.ID] = tpl
	}
	return nil
}

func (r *memTemplateRepo) ReplaceScope(_ context.Context, userID primitive.ObjectID, gymID *primitive.ObjectID, templates []domain.Template) error {
	if r.failApply != nil {
		return r.failApply
	}
	for id, tpl := range r.templates {
		if sameScope(&tpl, userID, gymID) {
			delete(r.templates, id)
		}
	}
	for _, tpl := range templates {
		r.templates[tpl.ID] = tpl
	}
	return nil
}

func (r *memTemplateRepo) DeleteScope(_ context.Context, userID primitive.ObjectID, gymID *primitive.ObjectID) error {
	for id, tpl := range r.templates {
		if sameScope(&tpl, userID, gymID) {
			delete(r.templates, id)
		}
	}
	return nil
}

type memUserRepo struct {
	users map[primitive.ObjectID]domain.User
}

func newMemUserRepo(users ...domain.User) *memUserRepo {
	r := &memUserRepo{users: make(map[primitive.ObjectID]domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = *user
	return user.ID, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *memUserRepo) SetSelectedGym(_ context.Context, userID primitive.ObjectID, gymID *primitive.ObjectID) error {
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.SelectedGymID = gymID
	r.users[userID] = user
	return nil
}

type memGymRepo struct {
	gyms map[primitive.ObjectID]domain.Gym
}

func newMemGymRepo(gyms ...domain.Gym) *memGymRepo {
	r := &memGymRepo{gyms: make(map[primitive.ObjectID]domain.Gym)}
	for _, g := range gyms {
		r.gyms[g.ID] = g
	}
	return r
}

func (r *memGymRepo) Create(_ context.Context, gym *domain.Gym) (primitive.ObjectID, error) {
	gym.ID = primitive.NewObjectID()
	r.gyms[gym.ID] = *gym
	return gym.ID, nil
}

func (r *memGymRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Gym, error) {
	gym, ok := r.gyms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &gym, nil
}

func (r *memGymRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) ([]domain.Gym, error) {
	var out []domain.Gym
	for _, g := range r.gyms {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *memGymRepo) Delete(_ context.Context, id primitive.ObjectID, userID primitive.ObjectID) error {
	gym, ok := r.gyms[id]
	if !ok || gym.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.gyms, id)
	return nil
}

type memCatalogRepo struct {
	exercises []domain.CatalogExercise
}

func (r *memCatalogRepo) AllExercises(_ context.Context) ([]domain.CatalogExercise, error) {
	return r.exercises, nil
}

// stubSource returns a canned answer or error on every fetch and counts
// calls.
type stubSource struct {
	templates []remote.RemoteTemplate
	err       error
	calls     int
}

func (s *stubSource) FetchTemplates(_ context.Context, _ string) ([]remote.RemoteTemplate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.templates, nil
}

var errBoom = errors.New("boom")
