package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(DefaultsSource())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http", cfg.EmbeddingProvider)
	assert.Equal(t, "weaviate", cfg.VectorBackend)
	assert.Equal(t, "local", cfg.BlobBackend)
	assert.Equal(t, 400, cfg.ChunkWords)
	assert.Equal(t, 4, cfg.RetrievalLimit)
	assert.Equal(t, 10, cfg.SyncBatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.SyncBatchPause)
	assert.Equal(t, int64(100), cfg.SyncMinFileBytes)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "", cfg.RedisURL)
	assert.False(t, cfg.DriveEnabled())
	assert.Equal(t, "default", cfg.Origin(KeyPort))
	assert.Equal(t, "", cfg.Origin(KeyRedisURL))
}

func TestResolve_FirstNonEmptyWins(t *testing.T) {
	high := MapSource("flags", map[string]string{
		KeyPort:          "9090",
		KeyVectorBackend: "", // empty falls through
	})
	low := MapSource("file", map[string]string{
		KeyVectorBackend:  "PGVECTOR",
		KeyPort:           "7070",
		KeySyncBatchPause: "2",
	})

	cfg, err := Resolve(high, low, DefaultsSource())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "flags", cfg.Origin(KeyPort))
	assert.Equal(t, "pgvector", cfg.VectorBackend)
	assert.Equal(t, "file", cfg.Origin(KeyVectorBackend))
	assert.Equal(t, 2*time.Second, cfg.SyncBatchPause, "bare integers are seconds")
	assert.Equal(t, "default", cfg.Origin(KeyChunkWords))
}

func TestResolve_InvalidValues(t *testing.T) {
	bad := MapSource("env", map[string]string{
		KeyPort:              "eighty",
		KeyCacheTTL:          "forever",
		KeyEmbeddingProvider: "openai",
		KeyBlobBackend:       "s3",
	})

	_, err := Resolve(bad, DefaultsSource())
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `PORT="eighty" (from env): not an integer`)
	assert.Contains(t, msg, `CACHE_TTL="forever"`)
	assert.Contains(t, msg, `EMBEDDING_PROVIDER="openai"`)
	assert.Contains(t, msg, "S3_BUCKET is required")
}

func TestDotEnvSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("# local overrides\nPORT=8181\nCORS_ORIGINS=https://a.example, https://b.example\nGOOGLE_CLIENT_ID=id\nGOOGLE_CLIENT_SECRET=secret\n"), 0o600))

	cfg, err := Resolve(DotEnvSource(path), DefaultsSource())
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Port)
	assert.Equal(t, path, cfg.Origin(KeyPort))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.True(t, cfg.DriveEnabled())

	_, ok := os.LookupEnv("GOOGLE_CLIENT_ID")
	assert.False(t, ok, "dotenv values must not leak into the process environment")
}

func TestDotEnvSource_Missing(t *testing.T) {
	cfg, err := Resolve(DotEnvSource(filepath.Join(t.TempDir(), "nope.env")), DefaultsSource())
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
}

func TestEnvSource(t *testing.T) {
	t.Setenv(KeyRetrievalLimit, "7")
	t.Setenv(KeyRedisURL, "redis://localhost:6379/0")

	cfg, err := Resolve(EnvSource(), DefaultsSource())
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.RetrievalLimit)
	assert.Equal(t, "env", cfg.Origin(KeyRetrievalLimit))
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestBool(t *testing.T) {
	cfg := &Config{
		sources: []Source{MapSource("m", map[string]string{"A": "true", "B": "yes", "C": "0", "D": "maybe"})},
		origins: map[string]string{},
	}
	assert.True(t, cfg.Bool("A"))
	assert.True(t, cfg.Bool("B"))
	assert.False(t, cfg.Bool("C"))
	assert.False(t, cfg.Bool("D"))
	assert.False(t, cfg.Bool("MISSING"))
	assert.Len(t, cfg.errs, 1)
}

func TestReport_MasksSecrets(t *testing.T) {
	cfg, err := Resolve(MapSource("env", map[string]string{KeyJWTSecret: "s3cret"}), DefaultsSource())
	require.NoError(t, err)

	found := false
	for _, s := range cfg.Report() {
		if s.Key == KeyJWTSecret {
			found = true
			assert.Equal(t, "****", s.Value)
			assert.Equal(t, "env", s.Source)
		}
		if s.Key == KeyPort {
			assert.Equal(t, "8080", s.Value)
		}
	}
	assert.True(t, found)
}
