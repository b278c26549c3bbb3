package elasticsearch

import (
	"github.com/Laziz6066/Tafakkur-test/internal/domain"
)

// suggesterName is the key under which the completion suggester is registered
// in suggest request bodies and responses.
const suggesterName = "product_suggest"

// BuildSearchBody translates a normalized search query into the
// Elasticsearch request body. The translation is pure: the same query always
// produces the same body (json.Marshal of a map is key-sorted, so the
// serialized form is byte-identical across calls).
func BuildSearchBody(q *domain.SearchQuery) map[string]any {
	var must any
	if q.Query != "" {
		must = map[string]any{
			"multi_match": map[string]any{
				"query":  q.Query,
				"fields": []string{"name^3", "description"},
			},
		}
	} else {
		must = map[string]any{
			"match_all": map[string]any{},
		}
	}

	boolQuery := map[string]any{
		"must": []any{must},
	}

	if filters := buildFilters(q); len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	return map[string]any{
		"query": map[string]any{
			"bool": boolQuery,
		},
		"sort":             buildSort(q.Sort),
		"from":             (q.Page - 1) * q.PageSize,
		"size":             q.PageSize,
		"track_total_hits": true,
	}
}

// buildFilters constructs the filter clauses for category and price range.
func buildFilters(q *domain.SearchQuery) []any {
	var filters []any

	if len(q.CategoryIDs) > 0 {
		filters = append(filters, map[string]any{
			"terms": map[string]any{
				"category_id": q.CategoryIDs,
			},
		})
	}

	if q.PriceMin != nil || q.PriceMax != nil {
		rangeFilter := map[string]any{}
		if q.PriceMin != nil {
			rangeFilter["gte"] = *q.PriceMin
		}
		if q.PriceMax != nil {
			rangeFilter["lte"] = *q.PriceMax
		}
		filters = append(filters, map[string]any{
			"range": map[string]any{
				"price": rangeFilter,
			},
		})
	}

	return filters
}

// buildSort constructs the sort clause. Every sort carries a trailing
// "id asc" tie-break so pagination stays stable when scores or prices tie.
func buildSort(sort string) []any {
	switch sort {
	case domain.SortPriceAsc:
		return []any{
			map[string]any{"price": "asc"},
			map[string]any{"id": "asc"},
		}
	case domain.SortPriceDesc:
		return []any{
			map[string]any{"price": "desc"},
			map[string]any{"id": "asc"},
		}
	default:
		return []any{
			map[string]any{"_score": "desc"},
			map[string]any{"id": "asc"},
		}
	}
}

// BuildSuggestBody constructs the completion-suggester request body for an
// autocomplete prefix.
func BuildSuggestBody(prefix string, size int) map[string]any {
	return map[string]any{
		"suggest": map[string]any{
			suggesterName: map[string]any{
				"prefix": prefix,
				"completion": map[string]any{
					"field":           "suggest",
					"size":            size,
					"skip_duplicates": true,
				},
			},
		},
	}
}
