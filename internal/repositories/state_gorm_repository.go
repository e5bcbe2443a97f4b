package repositories

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"malonda/internal/models"
)

// GORMStateRepository is a GORM implementation of StateRepository backed by
// a local sqlite file.
type GORMStateRepository struct {
	db *gorm.DB
}

// OpenStateDB opens (or creates) the sqlite state database at path and
// migrates the schema.
func OpenStateDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open state database at %s: %w", path, err)
	}
	if err := db.AutoMigrate(&models.StateEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}
	return db, nil
}

// NewGORMStateRepository creates a new instance of GORMStateRepository.
func NewGORMStateRepository(db *gorm.DB) *GORMStateRepository {
	return &GORMStateRepository{
		db: db,
	}
}

// Get retrieves the value stored under key.
func (r *GORMStateRepository) Get(key string) (string, error) {
	var entry models.StateEntry
	if err := r.db.First(&entry, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read state key %s: %w", key, err)
	}
	return entry.Value, nil
}

// Set writes value under key, replacing any previous value. The write is
// synchronous: once Set returns, the value is durable.
func (r *GORMStateRepository) Set(key, value string) error {
	entry := models.StateEntry{Key: key, Value: value}
	if err := r.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write state key %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (r *GORMStateRepository) Delete(key string) error {
	if err := r.db.Delete(&models.StateEntry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete state key %s: %w", key, err)
	}
	return nil
}

// Clear removes all persisted state.
func (r *GORMStateRepository) Clear() error {
	if err := r.db.Where("1 = 1").Delete(&models.StateEntry{}).Error; err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}
