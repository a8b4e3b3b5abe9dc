package config

import "time"

// Store ping timeout for startup checks
const DBPingTimeout = 5 * time.Second

// Default result limits for the collaborator search surfaces
const (
	DefaultSearchLimit       = 5
	DefaultMemorySearchLimit = 10
)

// Embedding dimension for the local fallback embedder
const EmbeddingDim = 384
