package search

import (
	"context"
	"sort"
	"time"

	"juris-rag-be/internal/pkg/logger"
	"juris-rag-be/pkg/rag/query"
	"juris-rag-be/pkg/store"
	"juris-rag-be/pkg/vectorindex"
)

// Config encapsulates search parameters
type Config struct {
	TopK      int
	Threshold float64
	Timeout   time.Duration
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		TopK:      5,
		Threshold: 0.35,
		Timeout:   10 * time.Second,
	}
}

// Orchestrator handles vector search and candidate filtering
type Orchestrator struct {
	index  vectorindex.Index
	config Config
	logger logger.ILogger
}

// NewOrchestrator creates a new search orchestrator
func NewOrchestrator(index vectorindex.Index, config Config, log logger.ILogger) *Orchestrator {
	def := DefaultConfig()
	if config.TopK <= 0 {
		config.TopK = def.TopK
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	// Similarity lives in [0,1]; outside it every hit would pass or none would.
	if config.Threshold < 0 || config.Threshold > 1 {
		config.Threshold = def.Threshold
	}
	return &Orchestrator{
		index:  index,
		config: config,
		logger: log,
	}
}

// BuildFilter turns extracted entities into an index filter. Case numbers are
// left to the semantic match since passages of one case span many documents.
func BuildFilter(e query.Entities) vectorindex.Filter {
	f := vectorindex.Filter{
		Court: e.Court,
		Judge: e.Judge,
	}
	if len(e.Topics) > 0 {
		f.Topics = append([]string(nil), e.Topics...)
	}
	return f
}

// Execute returns at most k passages ordered by descending similarity. Index
// failures are logged and yield an empty slice.
func (o *Orchestrator) Execute(ctx context.Context, pq *query.ProcessedQuery, k int) []store.Passage {
	if k <= 0 {
		k = o.config.TopK
	}

	searchCtx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	filter := BuildFilter(pq.Entities)
	hits, err := o.index.Search(searchCtx, pq.Expanded, 2*k, filter)
	if err != nil {
		o.logger.Warn("SEARCH", "Vector search failed, continuing without documents", map[string]interface{}{
			"error":  err.Error(),
			"filter": filter,
		})
		return []store.Passage{}
	}

	o.logger.Debug("SEARCH", "Raw search results", map[string]interface{}{
		"count":  len(hits),
		"filter": filter,
	})

	passages := o.rank(hits, k)

	o.logger.Debug("SEARCH", "Filtered candidates", map[string]interface{}{
		"kept":      len(passages),
		"threshold": o.config.Threshold,
	})
	return passages
}

func (o *Orchestrator) rank(hits []vectorindex.Hit, k int) []store.Passage {
	passages := make([]store.Passage, 0, len(hits))
	seen := make(map[string]bool, len(hits))

	for _, h := range hits {
		if seen[h.ID] {
			continue
		}
		similarity := Similarity(h.Distance)
		if similarity < o.config.Threshold {
			continue
		}
		seen[h.ID] = true
		passages = append(passages, store.Passage{
			ID:         h.ID,
			Text:       h.Text,
			Metadata:   h.Metadata,
			Similarity: similarity,
		})
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Similarity > passages[j].Similarity
	})
	if len(passages) > k {
		passages = passages[:k]
	}
	for i := range passages {
		passages[i].Rank = i + 1
	}
	return passages
}

// Similarity converts cosine distance to a score in [0, 1].
func Similarity(distance float64) float64 {
	s := 1 - distance
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
