package ports

import (
	"context"

	"github.com/longregen/slovo-agent/internal/domain/models"
)

// VectorSearchOptions filters a C3 nearest-neighbour search.
type VectorSearchOptions struct {
	K             int
	SourceFilter  string
	MinConfidence float64
}

// VectorSearchResult pairs a semantic entry with its similarity score.
type VectorSearchResult struct {
	Entry *models.SemanticEntry
	Score float64
}

// VectorStore is the C3 semantic memory collection: fixed-dimension
// vectors under cosine similarity, encrypted payload. Ties in similarity
// are broken by CreatedAt descending.
type VectorStore interface {
	Upsert(ctx context.Context, entry *models.SemanticEntry) error
	Search(ctx context.Context, vec []float32, opts VectorSearchOptions) ([]VectorSearchResult, error)
	Get(ctx context.Context, id string) (*models.SemanticEntry, error)
	Update(ctx context.Context, id string, summary *string, confidence *float64) error
	Delete(ctx context.Context, id string) error
	Scroll(ctx context.Context, offset, limit int) ([]*models.SemanticEntry, int, error)
	ClearAll(ctx context.Context) error
}
