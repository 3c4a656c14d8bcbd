package vectorstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/tripd/internal/config"
	"github.com/fyrsmithlabs/tripd/internal/vectorstore"
)

func TestNewStore_Chromem(t *testing.T) {
	cfg := &config.Config{}
	cfg.VectorStore.Provider = config.ProviderChromem
	cfg.Chromem.Path = t.TempDir()
	cfg.Chromem.Collection = "trip_rag_name"

	store, collection, err := vectorstore.NewStore(cfg, nil)
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &vectorstore.ChromemStore{}, store)
	assert.Equal(t, "trip_rag_name", collection)
}

func TestNewStore_AutoWithoutQdrantKeyUsesChromem(t *testing.T) {
	cfg := &config.Config{}
	cfg.VectorStore.Provider = "auto"
	cfg.Qdrant.URL = "https://abc.cloud.qdrant.io"
	cfg.Chromem.Path = t.TempDir()
	cfg.Chromem.Collection = "venice"

	store, collection, err := vectorstore.NewStore(cfg, nil)
	require.NoError(t, err)
	defer store.Close()

	assert.IsType(t, &vectorstore.ChromemStore{}, store)
	assert.Equal(t, "venice", collection)
}
