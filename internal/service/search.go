package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/Laziz6066/Tafakkur-test/internal/domain"
	"github.com/Laziz6066/Tafakkur-test/internal/engine"
	"github.com/Laziz6066/Tafakkur-test/internal/repository"
	apperrors "github.com/Laziz6066/Tafakkur-test/pkg/errors"
)

// SearchConfig holds the tuning knobs for the search service.
type SearchConfig struct {
	DefaultPageSize    int
	MaxPageSize        int
	DefaultSuggestSize int
	MaxSuggestSize     int
	SearchTimeout      time.Duration
	SuggestCacheTTL    time.Duration
}

// DefaultSearchConfig returns the standard search service settings.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		DefaultPageSize:    20,
		MaxPageSize:        100,
		DefaultSuggestSize: 5,
		MaxSuggestSize:     10,
		SearchTimeout:      2 * time.Second,
		SuggestCacheTTL:    time.Minute,
	}
}

// SearchService implements search, autocomplete, and full reindex on top of
// a search engine. Engine calls run behind a circuit breaker so a failing
// engine degrades to fast 503s instead of piling up timeouts.
type SearchService struct {
	engine   engine.SearchEngine
	products repository.ProductRepository
	cache    *redis.Client
	cfg      SearchConfig
	logger   *slog.Logger

	searchBreaker  *gobreaker.CircuitBreaker[*domain.SearchResult]
	suggestBreaker *gobreaker.CircuitBreaker[[]string]
}

// NewSearchService creates a new search service. The cache client is
// optional; when nil, suggestions are always served from the engine.
func NewSearchService(
	eng engine.SearchEngine,
	products repository.ProductRepository,
	cache *redis.Client,
	cfg SearchConfig,
	logger *slog.Logger,
) *SearchService {
	s := &SearchService{
		engine:   eng,
		products: products,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
	}

	s.searchBreaker = gobreaker.NewCircuitBreaker[*domain.SearchResult](breakerSettings("search", logger))
	s.suggestBreaker = gobreaker.NewCircuitBreaker[[]string](breakerSettings("suggest", logger))

	return s
}

func breakerSettings(name string, logger *slog.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}
}

// Search executes a normalized product search and shapes the engine result
// into the paginated response envelope.
func (s *SearchService) Search(ctx context.Context, query *domain.SearchQuery) (*domain.SearchPage, error) {
	query.Normalize(s.cfg.DefaultPageSize, s.cfg.MaxPageSize)

	if query.Unsatisfiable() {
		page := domain.EmptySearchPage(query)
		return &page, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	defer cancel()

	result, err := s.searchBreaker.Execute(func() (*domain.SearchResult, error) {
		return s.engine.Search(ctx, query)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "search engine unavailable",
			slog.String("query", query.Query),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.SearchUnavailable(err)
	}

	s.logger.DebugContext(ctx, "search executed",
		slog.String("query", query.Query),
		slog.Int("total", result.Total),
	)

	page := domain.NewSearchPage(query, result)
	return &page, nil
}

// Suggest returns autocomplete options for a name prefix. Results are cached
// in Redis; cache failures degrade to engine calls and are only logged.
func (s *SearchService) Suggest(ctx context.Context, prefix string, size int) (*domain.Suggestions, error) {
	prefix = strings.TrimSpace(prefix)
	if size < 1 {
		size = s.cfg.DefaultSuggestSize
	}
	if size > s.cfg.MaxSuggestSize {
		size = s.cfg.MaxSuggestSize
	}

	if prefix == "" {
		suggestions := domain.NewSuggestions("", nil, size)
		return &suggestions, nil
	}

	cacheKey := fmt.Sprintf("suggest:%d:%s", size, strings.ToLower(prefix))
	if cached := s.cachedSuggestions(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
	defer cancel()

	terms, err := s.suggestBreaker.Execute(func() ([]string, error) {
		return s.engine.Suggest(ctx, prefix, size)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "suggest engine unavailable",
			slog.String("prefix", prefix),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.SearchUnavailable(err)
	}

	suggestions := domain.NewSuggestions(prefix, terms, size)
	s.storeSuggestions(ctx, cacheKey, &suggestions)

	return &suggestions, nil
}

func (s *SearchService) cachedSuggestions(ctx context.Context, key string) *domain.Suggestions {
	if s.cache == nil {
		return nil
	}

	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.WarnContext(ctx, "suggest cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	var suggestions domain.Suggestions
	if err := json.Unmarshal(payload, &suggestions); err != nil {
		s.logger.WarnContext(ctx, "suggest cache entry corrupt",
			slog.String("key", key),
		)
		return nil
	}

	return &suggestions
}

func (s *SearchService) storeSuggestions(ctx context.Context, key string, suggestions *domain.Suggestions) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(suggestions)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.cfg.SuggestCacheTTL).Err(); err != nil {
		s.logger.WarnContext(ctx, "suggest cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Reindex drops the index, recreates the mapping, and re-projects every
// product from the database. Returns the number of documents indexed.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if err := s.engine.Recreate(ctx); err != nil {
		return 0, fmt.Errorf("recreate index: %w", err)
	}

	products, err := s.products.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load products for reindex: %w", err)
	}

	if len(products) == 0 {
		s.logger.InfoContext(ctx, "reindex completed", slog.Int("count", 0))
		return 0, nil
	}

	docs := make([]domain.ProductDocument, 0, len(products))
	for i := range products {
		docs = append(docs, domain.NewProductDocument(&products[i]))
	}

	if err := s.engine.BulkIndex(ctx, docs); err != nil {
		return 0, fmt.Errorf("bulk index: %w", err)
	}

	s.logger.InfoContext(ctx, "reindex completed", slog.Int("count", len(docs)))
	return len(docs), nil
}
