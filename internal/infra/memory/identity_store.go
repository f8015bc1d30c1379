package memory

import (
	"context"
	"sync"

	"globetrotter/internal/domain"
)

// IdentityStore is an in-memory implementation of app.IdentityRepository.
type IdentityStore struct {
	mu    sync.RWMutex
	value *domain.PersistedIdentity
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{}
}

func (s *IdentityStore) Save(_ context.Context, identity domain.PersistedIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = &identity
	return nil
}

func (s *IdentityStore) Load(_ context.Context) (domain.PersistedIdentity, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.value == nil {
		return domain.PersistedIdentity{}, false, nil
	}
	return *s.value, true, nil
}

func (s *IdentityStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = nil
	return nil
}

// IdentityStores hands out one IdentityStore per namespace (e.g. per browser client).
type IdentityStores struct {
	mu     sync.Mutex
	stores map[string]*IdentityStore
}

func NewIdentityStores() *IdentityStores {
	return &IdentityStores{stores: make(map[string]*IdentityStore)}
}

func (s *IdentityStores) For(namespace string) *IdentityStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	if store, ok := s.stores[namespace]; ok {
		return store
	}
	store := NewIdentityStore()
	s.stores[namespace] = store
	return store
}

// Forget drops the namespace and whatever identity it held.
func (s *IdentityStores) Forget(namespace string) {
	s.mu.Lock()
	delete(s.stores, namespace)
	s.mu.Unlock()
}
