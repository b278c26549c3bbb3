package domain

// Sort options for search results.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

// IsValidSort checks whether the given sort string is a recognized sort option.
func IsValidSort(sort string) bool {
	switch sort {
	case SortRelevance, SortPriceAsc, SortPriceDesc:
		return true
	}
	return false
}

// ProductDocument is a product projected into the search index, denormalized
// with its category name. The Suggest field feeds the completion suggester
// and is always derived from the product name.
type ProductDocument struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	CategoryID   int64    `json:"category_id"`
	CategoryName string   `json:"category_name"`
	Image        *string  `json:"image,omitempty"`
	Suggest      []string `json:"suggest"`
}

// NewProductDocument builds the index document for a product. The projection
// is deterministic: the same product and category name always produce the
// same document.
func NewProductDocument(p *Product) ProductDocument {
	return ProductDocument{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Image:        p.Image,
		Suggest:      []string{p.Name},
	}
}

// SearchQuery holds all parameters for a product search request. Numeric
// fields are already validated by the HTTP layer; Normalize applies defaults
// and clamping before the query reaches an engine.
type SearchQuery struct {
	Query       string   `json:"query"`
	CategoryIDs []int64  `json:"category_ids,omitempty"`
	PriceMin    *float64 `json:"price_min,omitempty"`
	PriceMax    *float64 `json:"price_max,omitempty"`
	Sort        string   `json:"sort"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
}

// Normalize applies default page, default and maximum page size, and the
// default sort. Unrecognized sort values fall back to relevance.
func (q *SearchQuery) Normalize(defaultSize, maxSize int) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultSize
	}
	if q.PageSize > maxSize {
		q.PageSize = maxSize
	}
	if !IsValidSort(q.Sort) {
		q.Sort = SortRelevance
	}
}

// Unsatisfiable reports whether the price range can never match any document
// (price_min strictly greater than price_max). Such queries return an empty
// page without contacting the engine.
func (q *SearchQuery) Unsatisfiable() bool {
	return q.PriceMin != nil && q.PriceMax != nil && *q.PriceMin > *q.PriceMax
}

// SearchHit is a single engine result: the stored document plus its
// relevance score. Score is nil when the engine sorted by a field instead
// of by relevance.
type SearchHit struct {
	Document ProductDocument
	Score    *float64
}

// SearchResult is the raw engine response before formatting.
type SearchResult struct {
	Hits  []SearchHit
	Total int
}

// ProductHit is a single formatted search result item.
type ProductHit struct {
	ID           int64    `json:"id"`
	Category     int64    `json:"category"`
	CategoryName string   `json:"category_name"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Description  string   `json:"description"`
	Image        *string  `json:"image,omitempty"`
	Score        *float64 `json:"_score"`
}

// SearchPage is the formatted, paginated search response envelope.
type SearchPage struct {
	Count      int          `json:"count"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
	HasNext    bool         `json:"has_next"`
	HasPrev    bool         `json:"has_prev"`
	Results    []ProductHit `json:"results"`
}

// NewSearchPage shapes an engine result into the response envelope for the
// given (already normalized) query. Results is never nil so it serializes
// as an empty array.
func NewSearchPage(q *SearchQuery, result *SearchResult) SearchPage {
	totalPages := result.Total / q.PageSize
	if result.Total%q.PageSize > 0 {
		totalPages++
	}

	hits := make([]ProductHit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hits = append(hits, ProductHit{
			ID:           h.Document.ID,
			Category:     h.Document.CategoryID,
			CategoryName: h.Document.CategoryName,
			Name:         h.Document.Name,
			Price:        h.Document.Price,
			Description:  h.Document.Description,
			Image:        h.Document.Image,
			Score:        h.Score,
		})
	}

	return SearchPage{
		Count:      result.Total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
		HasNext:    q.Page < totalPages,
		HasPrev:    q.Page > 1,
		Results:    hits,
	}
}

// EmptySearchPage returns a normally shaped envelope with zero results,
// used for unsatisfiable queries that never reach the engine.
func EmptySearchPage(q *SearchQuery) SearchPage {
	return SearchPage{
		Count:    0,
		Page:     q.Page,
		PageSize: q.PageSize,
		Results:  []ProductHit{},
	}
}

// Suggestions is the formatted autocomplete response.
type Suggestions struct {
	Query   string   `json:"q"`
	Options []string `json:"options"`
	Size    int      `json:"size"`
}

// NewSuggestions deduplicates terms preserving engine ranking and caps the
// list at size. Options is never nil.
func NewSuggestions(query string, terms []string, size int) Suggestions {
	seen := make(map[string]struct{}, len(terms))
	options := make([]string, 0, size)
	for _, term := range terms {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		options = append(options, term)
		if len(options) == size {
			break
		}
	}
	return Suggestions{Query: query, Options: options, Size: size}
}
