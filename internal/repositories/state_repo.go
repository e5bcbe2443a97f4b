package repositories

import "errors"

// ErrKeyNotFound is returned when a state key has never been written
// or has been deleted.
var ErrKeyNotFound = errors.New("state key not found")

// StateRepository defines the interface for durable client state access.
// It is the local-storage analog: tokens, the serialized user profile and
// the remembered email live here and survive process restarts.
type StateRepository interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
	Clear() error
}
