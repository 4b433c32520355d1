package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RAG_TOP_K", "")
	t.Setenv("RAG_SIMILARITY_THRESHOLD", "")

	cfg := Load()

	assert.Equal(t, 5, cfg.Rag.TopK)
	assert.InDelta(t, 0.35, cfg.Rag.SimilarityThreshold, 1e-9)
	assert.Equal(t, 3000, cfg.Rag.ContextTokenBudget)
	assert.Equal(t, 10, cfg.Session.MaxHistory)
	assert.Equal(t, 120*time.Second, cfg.Ai.GenerationTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RAG_TOP_K", "8")
	t.Setenv("RAG_SIMILARITY_THRESHOLD", "0.5")
	t.Setenv("SEARCH_TIMEOUT", "3s")
	t.Setenv("RAG_CACHE_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, 8, cfg.Rag.TopK)
	assert.InDelta(t, 0.5, cfg.Rag.SimilarityThreshold, 1e-9)
	assert.Equal(t, 3*time.Second, cfg.Rag.SearchTimeout)
	assert.True(t, cfg.Rag.CacheEnabled)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "lots")
	t.Setenv("SESSION_IDLE_TTL", "forever")

	cfg := Load()

	assert.Equal(t, 1024, cfg.Ai.MaxTokens)
	assert.Equal(t, time.Hour, cfg.Session.IdleTTL)
}
