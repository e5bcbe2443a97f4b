package repositories

import "sync"

// MockStateRepository is an in-memory implementation of StateRepository.
type MockStateRepository struct {
	entries map[string]string
	mu      sync.RWMutex
}

// NewMockStateRepository creates a new instance of MockStateRepository.
func NewMockStateRepository() *MockStateRepository {
	return &MockStateRepository{
		entries: make(map[string]string),
	}
}

// Get retrieves the value stored under key.
func (r *MockStateRepository) Get(key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.entries[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

// Set writes value under key.
func (r *MockStateRepository) Set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = value
	return nil
}

// Delete removes key.
func (r *MockStateRepository) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, key)
	return nil
}

// Clear removes all entries.
func (r *MockStateRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[string]string)
	return nil
}
