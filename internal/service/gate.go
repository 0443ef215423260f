// internal/service/gate.go
package service

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScopeGate serializes mutating operations per (user, gym) partition. Sync
// and adaptation both follow a read-then-overwrite pattern against the same
// template partition, which is only safe with a single writer; one gate is
// shared between the two services so they exclude each other as well.
type ScopeGate struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewScopeGate creates an empty gate. Construct exactly one per process and
// pass it to both NewSyncService and NewAdaptationService.
func NewScopeGate() *ScopeGate {
	return &ScopeGate{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for one (user, gym) scope and returns its unlock
// function.
func (g *ScopeGate) lock(userID primitive.ObjectID, gymID *primitive.ObjectID) func() {
	key := userID.Hex()
	if gymID != nil {
		key += "|" + gymID.Hex()
	}

	g.mu.Lock()
	m, ok := g.locks[key]
	if !ok {
		m = &sync.Mutex{}
		g.locks[key] = m
	}
	g.mu.Unlock()

	m.Lock()
	return m.Unlock
}
