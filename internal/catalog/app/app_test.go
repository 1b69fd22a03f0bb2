package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depcatalog/internal/catalog/config"
)

func TestInitInMemoryStoresFromSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"teams": [{"id": "t1", "name": "Core"}],
		"services": [{"id": "api", "name": "API", "team_id": "t1", "is_active": true}]
	}`), 0o644))

	stores, err := initStores(context.Background(), &config.Config{SeedFile: path})
	require.NoError(t, err)
	svc, ok, err := stores.services.FindByIDWithTeam(context.Background(), "api")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Core", svc.TeamName)
	assert.NoError(t, stores.Close())
}

func TestInitInMemoryStoresBadSeed(t *testing.T) {
	_, err := initStores(context.Background(), &config.Config{SeedFile: filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, err)
}

func TestNewWithConfigEmptyCatalog(t *testing.T) {
	a, err := NewWithConfig(context.Background(), &config.Config{Port: ":0", CORSOrigin: "*"})
	require.NoError(t, err)
	require.NotNil(t, a.server)
	assert.NoError(t, a.Shutdown(context.Background()))
}
