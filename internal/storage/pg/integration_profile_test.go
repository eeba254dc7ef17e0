package pg

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tftboard/tftboard/internal/domain"
)

func TestUpsertProfile(t *testing.T) {
	id := uuid.NewString()
	err := storage.UpsertProfile(domain.Profile{
		Id:          id,
		DisplayName: "profiled",
		Bio:         "climbs on slow rolls",
	})
	require.NoError(t, err)

	got, err := storage.ProfileById(id)
	require.NoError(t, err)
	assert.Equal(t, "profiled", got.DisplayName)
	assert.Equal(t, "climbs on slow rolls", got.Bio)
	assert.Empty(t, got.AvatarURL)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestUpsertProfileDoesNotClobber(t *testing.T) {
	id := uuid.NewString()
	require.NoError(t, storage.UpsertProfile(domain.Profile{
		Id:          id,
		DisplayName: "keeper",
		Bio:         "original bio",
	}))

	// A later upsert with missing fields must leave them alone.
	require.NoError(t, storage.UpsertProfile(domain.Profile{
		Id:        id,
		AvatarURL: "https://cdn.example.com/a.png",
	}))

	got, err := storage.ProfileById(id)
	require.NoError(t, err)
	assert.Equal(t, "keeper", got.DisplayName)
	assert.Equal(t, "original bio", got.Bio)
	assert.Equal(t, "https://cdn.example.com/a.png", got.AvatarURL)

	// A non-empty field still overwrites.
	require.NoError(t, storage.UpsertProfile(domain.Profile{
		Id:  id,
		Bio: "updated bio",
	}))
	got, err = storage.ProfileById(id)
	require.NoError(t, err)
	assert.Equal(t, "updated bio", got.Bio)
}

func TestProfileByName(t *testing.T) {
	id := uuid.NewString()
	require.NoError(t, storage.UpsertProfile(domain.Profile{
		Id:          id,
		DisplayName: "unique-handle",
	}))

	got, err := storage.ProfileByName("unique-handle")
	require.NoError(t, err)
	assert.Equal(t, id, got.Id)

	_, err = storage.ProfileByName("nobody-here")
	requireStatusCode(t, err, http.StatusNotFound)
}

func TestProfileByIdNotFound(t *testing.T) {
	_, err := storage.ProfileById(uuid.NewString())
	requireStatusCode(t, err, http.StatusNotFound)
}
