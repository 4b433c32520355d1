package vectorindex

import (
	"context"

	"juris-rag-be/pkg/store"
)

// Filter is an AND of metadata constraints. Empty fields are ignored and
// Topics is an OR group.
type Filter struct {
	Court  string   `json:"court,omitempty"`
	Judge  string   `json:"judge,omitempty"`
	Topics []string `json:"topics,omitempty"`
}

func (f Filter) Empty() bool {
	return f.Court == "" && f.Judge == "" && len(f.Topics) == 0
}

// Hit is a raw nearest-neighbour candidate. Distance is cosine distance.
type Hit struct {
	ID       string                `json:"id"`
	Text     string                `json:"text"`
	Metadata store.PassageMetadata `json:"metadata"`
	Distance float64               `json:"distance"`
}

// Index answers similarity queries over pre-populated legal passages.
// Implementations must be safe for concurrent use.
type Index interface {
	Search(ctx context.Context, text string, limit int, filter Filter) ([]Hit, error)
}
