package engine

import (
	"context"

	"github.com/Laziz6066/Tafakkur-test/internal/domain"
)

// SearchEngine defines the interface for indexing and searching products.
// Implementations may use Elasticsearch, in-memory storage, or other backends.
type SearchEngine interface {
	// Index adds or updates a single product document in the search index.
	Index(ctx context.Context, doc *domain.ProductDocument) error

	// Delete removes a product document from the search index by its ID.
	// Deleting an absent document is not an error.
	Delete(ctx context.Context, id int64) error

	// DeleteByCategory removes all documents belonging to the given category.
	DeleteByCategory(ctx context.Context, categoryID int64) error

	// BulkIndex adds or updates multiple product documents.
	BulkIndex(ctx context.Context, docs []domain.ProductDocument) error

	// Search executes a normalized search query and returns matching hits
	// with the total match count.
	Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchResult, error)

	// Suggest returns autocomplete terms for the given prefix, ranked by
	// the engine. The caller deduplicates and caps the list.
	Suggest(ctx context.Context, prefix string, size int) ([]string, error)

	// Recreate drops and recreates the index with a fresh mapping.
	Recreate(ctx context.Context) error
}
