// Package config resolves settings from an ordered list of sources.
// The first source with a non-empty value for a key wins.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Keys
const (
	KeyPort                = "PORT"
	KeyDatabaseURL         = "DATABASE_URL"
	KeyRedisURL            = "REDIS_URL"
	KeyJWTSecret           = "JWT_SECRET"
	KeyEncryptionKey       = "ENCRYPTION_KEY"
	KeyEmbeddingProvider   = "EMBEDDING_PROVIDER"
	KeyEmbeddingURL        = "EMBEDDING_URL"
	KeyEmbeddingDimensions = "EMBEDDING_DIMENSIONS"
	KeyLLMProvider         = "LLM_PROVIDER"
	KeyLLMURL              = "LLM_URL"
	KeyLLMAPIKey           = "LLM_API_KEY"
	KeyLLMModel            = "LLM_MODEL"
	KeyGeminiAPIKey        = "GEMINI_API_KEY"
	KeyVectorBackend       = "VECTOR_BACKEND"
	KeyWeaviateURL         = "WEAVIATE_URL"
	KeyWeaviateAPIKey      = "WEAVIATE_API_KEY"
	KeyPGVectorURL         = "PGVECTOR_URL"
	KeyGoogleClientID      = "GOOGLE_CLIENT_ID"
	KeyGoogleClientSecret  = "GOOGLE_CLIENT_SECRET"
	KeyGoogleRedirectURL   = "GOOGLE_REDIRECT_URL"
	KeyFrontendRedirectURL = "FRONTEND_REDIRECT_URL"
	KeyBlobBackend         = "BLOB_BACKEND"
	KeyUploadDir           = "UPLOAD_DIR"
	KeyS3Bucket            = "S3_BUCKET"
	KeyS3Region            = "S3_REGION"
	KeyS3Endpoint          = "S3_ENDPOINT"
	KeyAWSAccessKeyID      = "AWS_ACCESS_KEY_ID"
	KeyAWSSecretAccessKey  = "AWS_SECRET_ACCESS_KEY"
	KeyChunkWords          = "CHUNK_WORDS"
	KeyRetrievalLimit      = "RETRIEVAL_LIMIT"
	KeySyncBatchSize       = "SYNC_BATCH_SIZE"
	KeySyncBatchPause      = "SYNC_BATCH_PAUSE"
	KeySyncMinFileBytes    = "SYNC_MIN_FILE_BYTES"
	KeySyncParallelism     = "SYNC_PARALLELISM"
	KeyCacheMaxEntries     = "CACHE_MAX_ENTRIES"
	KeyCacheTTL            = "CACHE_TTL"
	KeyCORSOrigins         = "CORS_ORIGINS"
	KeyHTTPTimeout         = "HTTP_TIMEOUT"
)

// secretKeys are masked in the startup report
var secretKeys = map[string]bool{
	KeyDatabaseURL:        true,
	KeyRedisURL:           true,
	KeyJWTSecret:          true,
	KeyEncryptionKey:      true,
	KeyLLMAPIKey:          true,
	KeyGeminiAPIKey:       true,
	KeyWeaviateAPIKey:     true,
	KeyPGVectorURL:        true,
	KeyGoogleClientSecret: true,
	KeyAWSSecretAccessKey: true,
}

// Config holds the resolved settings
type Config struct {
	Port int

	DatabaseURL   string
	RedisURL      string // Optional; postgres is used for locks and OAuth state when empty
	JWTSecret     string
	EncryptionKey string

	EmbeddingProvider   string
	EmbeddingURL        string
	EmbeddingDimensions int // 0 learns the dimension from the first response
	LLMProvider         string
	LLMURL              string
	LLMAPIKey           string
	LLMModel            string
	GeminiAPIKey        string

	VectorBackend  string
	WeaviateURL    string
	WeaviateAPIKey string
	PGVectorURL    string

	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURL   string
	FrontendRedirectURL string

	BlobBackend        string
	UploadDir          string
	S3Bucket           string
	S3Region           string
	S3Endpoint         string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	ChunkWords       int
	RetrievalLimit   int
	SyncBatchSize    int
	SyncBatchPause   time.Duration
	SyncMinFileBytes int64
	SyncParallelism  int
	CacheMaxEntries  int
	CacheTTL         time.Duration
	CORSOrigins      []string
	HTTPTimeout      time.Duration

	sources []Source
	origins map[string]string
	errs    []error
}

// Load resolves the process environment, then .env, then defaults
func Load() (*Config, error) {
	return Resolve(EnvSource(), DotEnvSource(".env"), DefaultsSource())
}

// Resolve builds a Config from sources in priority order
func Resolve(sources ...Source) (*Config, error) {
	c := &Config{sources: sources, origins: make(map[string]string)}
	for _, s := range sources {
		if es, ok := s.(*mapSource); ok && es.err != nil {
			c.errs = append(c.errs, fmt.Errorf("read %s: %w", es.name, es.err))
		}
	}

	c.Port = c.Int(KeyPort)

	c.DatabaseURL = c.String(KeyDatabaseURL)
	c.RedisURL = c.String(KeyRedisURL)
	c.JWTSecret = c.String(KeyJWTSecret)
	c.EncryptionKey = c.String(KeyEncryptionKey)

	c.EmbeddingProvider = strings.ToLower(c.String(KeyEmbeddingProvider))
	c.EmbeddingURL = c.String(KeyEmbeddingURL)
	c.EmbeddingDimensions = c.Int(KeyEmbeddingDimensions)
	c.LLMProvider = strings.ToLower(c.String(KeyLLMProvider))
	c.LLMURL = c.String(KeyLLMURL)
	c.LLMAPIKey = c.String(KeyLLMAPIKey)
	c.LLMModel = c.String(KeyLLMModel)
	c.GeminiAPIKey = c.String(KeyGeminiAPIKey)

	c.VectorBackend = strings.ToLower(c.String(KeyVectorBackend))
	c.WeaviateURL = c.String(KeyWeaviateURL)
	c.WeaviateAPIKey = c.String(KeyWeaviateAPIKey)
	c.PGVectorURL = c.String(KeyPGVectorURL)

	c.GoogleClientID = c.String(KeyGoogleClientID)
	c.GoogleClientSecret = c.String(KeyGoogleClientSecret)
	c.GoogleRedirectURL = c.String(KeyGoogleRedirectURL)
	c.FrontendRedirectURL = c.String(KeyFrontendRedirectURL)

	c.BlobBackend = strings.ToLower(c.String(KeyBlobBackend))
	c.UploadDir = c.String(KeyUploadDir)
	c.S3Bucket = c.String(KeyS3Bucket)
	c.S3Region = c.String(KeyS3Region)
	c.S3Endpoint = c.String(KeyS3Endpoint)
	c.AWSAccessKeyID = c.String(KeyAWSAccessKeyID)
	c.AWSSecretAccessKey = c.String(KeyAWSSecretAccessKey)

	c.ChunkWords = c.Int(KeyChunkWords)
	c.RetrievalLimit = c.Int(KeyRetrievalLimit)
	c.SyncBatchSize = c.Int(KeySyncBatchSize)
	c.SyncBatchPause = c.Duration(KeySyncBatchPause)
	c.SyncMinFileBytes = int64(c.Int(KeySyncMinFileBytes))
	c.SyncParallelism = c.Int(KeySyncParallelism)
	c.CacheMaxEntries = c.Int(KeyCacheMaxEntries)
	c.CacheTTL = c.Duration(KeyCacheTTL)
	c.CORSOrigins = c.Strings(KeyCORSOrigins)
	c.HTTPTimeout = c.Duration(KeyHTTPTimeout)

	c.validate()
	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}
	return c, nil
}

func (c *Config) validate() {
	oneOf := func(key, value string, allowed ...string) {
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		c.errs = append(c.errs, fmt.Errorf("%s=%q: must be one of %s", key, value, strings.Join(allowed, ", ")))
	}
	oneOf(KeyEmbeddingProvider, c.EmbeddingProvider, "http", "gemini")
	oneOf(KeyLLMProvider, c.LLMProvider, "http", "gemini")
	oneOf(KeyVectorBackend, c.VectorBackend, "weaviate", "pgvector")
	oneOf(KeyBlobBackend, c.BlobBackend, "local", "s3")

	if c.VectorBackend == "pgvector" && c.PGVectorURL == "" && c.DatabaseURL == "" {
		c.errs = append(c.errs, fmt.Errorf("%s or %s is required for the pgvector backend", KeyPGVectorURL, KeyDatabaseURL))
	}
	if c.BlobBackend == "s3" && c.S3Bucket == "" {
		c.errs = append(c.errs, fmt.Errorf("%s is required for the s3 blob backend", KeyS3Bucket))
	}
}

// DriveEnabled reports whether Google OAuth client credentials are set
func (c *Config) DriveEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// lookup returns the first non-empty value for key and records its source
func (c *Config) lookup(key string) string {
	for _, s := range c.sources {
		if v, ok := s.Lookup(key); ok && strings.TrimSpace(v) != "" {
			c.origins[key] = s.Name()
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// String returns the raw value for key
func (c *Config) String(key string) string {
	return c.lookup(key)
}

// Int parses key as an integer. Empty is 0.
func (c *Config) Int(key string) int {
	v := c.lookup(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s=%q (from %s): not an integer", key, v, c.origins[key]))
		return 0
	}
	return n
}

// Bool parses key as a boolean. Empty is false.
func (c *Config) Bool(key string) bool {
	v := c.lookup(key)
	if v == "" {
		return false
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s=%q (from %s): not a boolean", key, v, c.origins[key]))
		return false
	}
	return b
}

// Duration parses key as a time.Duration. Bare integers are seconds.
func (c *Config) Duration(key string) time.Duration {
	v := c.lookup(key)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s=%q (from %s): not a duration", key, v, c.origins[key]))
		return 0
	}
	return d
}

// Strings splits a comma separated value, dropping empty items
func (c *Config) Strings(key string) []string {
	var out []string
	for _, part := range strings.Split(c.lookup(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Origin returns the name of the source that answered key, "" if none did
func (c *Config) Origin(key string) string {
	return c.origins[key]
}

// Setting is one line of the startup report
type Setting struct {
	Key    string
	Value  string
	Source string
}

// Report lists every resolved key with its source. Secrets are masked.
func (c *Config) Report() []Setting {
	keys := make([]string, 0, len(c.origins))
	for k := range c.origins {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Setting, 0, len(keys))
	for _, k := range keys {
		v := c.lookup(k)
		if secretKeys[k] {
			v = "****"
		}
		out = append(out, Setting{Key: k, Value: v, Source: c.origins[k]})
	}
	return out
}
