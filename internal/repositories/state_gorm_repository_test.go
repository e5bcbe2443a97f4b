package repositories_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"malonda/internal/repositories"
)

func newTestRepo(t *testing.T) *repositories.GORMStateRepository {
	t.Helper()
	db, err := repositories.OpenStateDB(filepath.Join(t.TempDir(), "state.db"))
	assert.NoError(t, err)
	return repositories.NewGORMStateRepository(db)
}

func TestGORMStateRepository_SetGet(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Set("access", "tok1")
	assert.NoError(t, err)

	value, err := repo.Get("access")
	assert.NoError(t, err)
	assert.Equal(t, "tok1", value)

	// Overwrite replaces the previous value
	err = repo.Set("access", "tok2")
	assert.NoError(t, err)
	value, err = repo.Get("access")
	assert.NoError(t, err)
	assert.Equal(t, "tok2", value)
}

func TestGORMStateRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get("refresh")
	assert.ErrorIs(t, err, repositories.ErrKeyNotFound)
}

func TestGORMStateRepository_DeleteAndClear(t *testing.T) {
	repo := newTestRepo(t)

	assert.NoError(t, repo.Set("access", "tok1"))
	assert.NoError(t, repo.Set("refresh", "tok2"))

	assert.NoError(t, repo.Delete("access"))
	_, err := repo.Get("access")
	assert.ErrorIs(t, err, repositories.ErrKeyNotFound)

	// Deleting an absent key is not an error
	assert.NoError(t, repo.Delete("access"))

	assert.NoError(t, repo.Clear())
	_, err = repo.Get("refresh")
	assert.ErrorIs(t, err, repositories.ErrKeyNotFound)
}

func TestGORMStateRepository_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	db, err := repositories.OpenStateDB(path)
	assert.NoError(t, err)
	repo := repositories.NewGORMStateRepository(db)
	assert.NoError(t, repo.Set("user", `{"id":1}`))

	// A fresh open of the same file sees the previous write
	db2, err := repositories.OpenStateDB(path)
	assert.NoError(t, err)
	repo2 := repositories.NewGORMStateRepository(db2)
	value, err := repo2.Get("user")
	assert.NoError(t, err)
	assert.Equal(t, `{"id":1}`, value)
}
