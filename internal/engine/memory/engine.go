package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/Laziz6066/Tafakkur-test/internal/domain"
)

// Engine is an in-memory implementation of the SearchEngine interface.
// It provides simple substring matching on name and description fields and
// mirrors the Elasticsearch engine's ordering guarantees (id tie-break).
// Thread-safe via sync.RWMutex.
type Engine struct {
	mu   sync.RWMutex
	docs map[int64]domain.ProductDocument
}

// New creates a new in-memory search engine.
func New() *Engine {
	return &Engine{
		docs: make(map[int64]domain.ProductDocument),
	}
}

// Index adds or updates a single document in the in-memory index.
func (e *Engine) Index(_ context.Context, doc *domain.ProductDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.docs[doc.ID] = *doc
	return nil
}

// Delete removes a document from the in-memory index by its ID.
func (e *Engine) Delete(_ context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.docs, id)
	return nil
}

// DeleteByCategory removes all documents belonging to the given category.
func (e *Engine) DeleteByCategory(_ context.Context, categoryID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, doc := range e.docs {
		if doc.CategoryID == categoryID {
			delete(e.docs, id)
		}
	}
	return nil
}

// BulkIndex adds or updates multiple documents in the in-memory index.
func (e *Engine) BulkIndex(_ context.Context, docs []domain.ProductDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range docs {
		e.docs[docs[i].ID] = docs[i]
	}
	return nil
}

// Recreate clears the index.
func (e *Engine) Recreate(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.docs = make(map[int64]domain.ProductDocument)
	return nil
}

// Search executes a normalized search query against the in-memory index.
func (e *Engine) Search(_ context.Context, query *domain.SearchQuery) (*domain.SearchResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	queryLower := strings.ToLower(query.Query)

	matched := make([]domain.SearchHit, 0)
	for _, doc := range e.docs {
		score, ok := e.match(doc, query, queryLower)
		if !ok {
			continue
		}
		hit := domain.SearchHit{Document: doc}
		if query.Sort == domain.SortRelevance || query.Sort == "" {
			s := score
			hit.Score = &s
		}
		matched = append(matched, hit)
	}

	sortHits(matched, query.Sort)

	total := len(matched)
	offset := (query.Page - 1) * query.PageSize
	if offset > total {
		offset = total
	}
	end := offset + query.PageSize
	if end > total {
		end = total
	}

	return &domain.SearchResult{
		Hits:  matched[offset:end],
		Total: total,
	}, nil
}

// Suggest returns names whose lowercase form starts with the prefix,
// ranked alphabetically for determinism.
func (e *Engine) Suggest(_ context.Context, prefix string, size int) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	prefixLower := strings.ToLower(prefix)

	var terms []string
	for _, doc := range e.docs {
		for _, s := range doc.Suggest {
			if strings.HasPrefix(strings.ToLower(s), prefixLower) {
				terms = append(terms, s)
			}
		}
	}

	sort.Strings(terms)
	if len(terms) > size {
		terms = terms[:size]
	}
	return terms, nil
}

// match checks filters and computes a relevance score. Name matches weigh
// three times description matches, mirroring the name^3 boost.
func (e *Engine) match(doc domain.ProductDocument, query *domain.SearchQuery, queryLower string) (float64, bool) {
	var score float64

	if queryLower != "" {
		nameHit := strings.Contains(strings.ToLower(doc.Name), queryLower)
		descHit := strings.Contains(strings.ToLower(doc.Description), queryLower)
		if !nameHit && !descHit {
			return 0, false
		}
		if nameHit {
			score += 3
		}
		if descHit {
			score += 1
		}
	} else {
		score = 1
	}

	if len(query.CategoryIDs) > 0 {
		found := false
		for _, id := range query.CategoryIDs {
			if doc.CategoryID == id {
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}

	if query.PriceMin != nil && doc.Price < *query.PriceMin {
		return 0, false
	}
	if query.PriceMax != nil && doc.Price > *query.PriceMax {
		return 0, false
	}

	return score, true
}

// sortHits orders the matched hits with an id tie-break, matching the
// Elasticsearch sort clauses.
func sortHits(hits []domain.SearchHit, sortBy string) {
	switch sortBy {
	case domain.SortPriceAsc:
		sort.Slice(hits, func(i, j int) bool {
			if hits[i].Document.Price != hits[j].Document.Price {
				return hits[i].Document.Price < hits[j].Document.Price
			}
			return hits[i].Document.ID < hits[j].Document.ID
		})
	case domain.SortPriceDesc:
		sort.Slice(hits, func(i, j int) bool {
			if hits[i].Document.Price != hits[j].Document.Price {
				return hits[i].Document.Price > hits[j].Document.Price
			}
			return hits[i].Document.ID < hits[j].Document.ID
		})
	default:
		sort.Slice(hits, func(i, j int) bool {
			si, sj := scoreOf(hits[i]), scoreOf(hits[j])
			if si != sj {
				return si > sj
			}
			return hits[i].Document.ID < hits[j].Document.ID
		})
	}
}

func scoreOf(h domain.SearchHit) float64 {
	if h.Score == nil {
		return 0
	}
	return *h.Score
}
