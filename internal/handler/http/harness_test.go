package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Laziz6066/Tafakkur-test/internal/auth"
	"github.com/Laziz6066/Tafakkur-test/internal/domain"
	"github.com/Laziz6066/Tafakkur-test/internal/engine/memory"
	"github.com/Laziz6066/Tafakkur-test/internal/event"
	"github.com/Laziz6066/Tafakkur-test/internal/repository"
	"github.com/Laziz6066/Tafakkur-test/internal/service"
	apperrors "github.com/Laziz6066/Tafakkur-test/pkg/errors"
	"github.com/Laziz6066/Tafakkur-test/pkg/health"
	pkgkafka "github.com/Laziz6066/Tafakkur-test/pkg/kafka"
)

// --- In-memory fake repositories ---

type fakeCategoryRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{nextID: 1, items: make(map[int64]domain.Category)}
}

func (f *fakeCategoryRepo) Create(_ context.Context, c *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.Name == c.Name {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
	}
	c.ID = f.nextID
	f.nextID++
	c.CreatedAt = time.Now().UTC()
	c.UpdatedAt = c.CreatedAt
	f.items[c.ID] = *c
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("category", id)
	}
	return &c, nil
}

func (f *fakeCategoryRepo) List(_ context.Context, limit, offset int) ([]domain.Category, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domain.Category, 0, len(f.items))
	for _, c := range f.items {
		all = append(all, c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	if offset >= total {
		return []domain.Category{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, c *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[c.ID]; !ok {
		return apperrors.NotFound("category", c.ID)
	}
	f.items[c.ID] = *c
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperrors.NotFound("category", id)
	}
	delete(f.items, id)
	return nil
}

type fakeProductRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{nextID: 1, items: make(map[int64]domain.Product)}
}

func (f *fakeProductRepo) Create(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	f.items[p.ID] = *p
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return &p, nil
}

func (f *fakeProductRepo) sorted() []domain.Product {
	all := make([]domain.Product, 0, len(f.items))
	for _, p := range f.items {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}

func (f *fakeProductRepo) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domain.Product, 0)
	for _, p := range f.sorted() {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		all = append(all, p)
	}
	total := len(all)
	if filter.Offset >= total {
		return []domain.Product{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return all[filter.Offset:end], total, nil
}

func (f *fakeProductRepo) ListByCategory(_ context.Context, categoryID int64) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]domain.Product, 0)
	for _, p := range f.sorted() {
		if p.CategoryID == categoryID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeProductRepo) ListAll(_ context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(), nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[p.ID]; !ok {
		return apperrors.NotFound("product", p.ID)
	}
	f.items[p.ID] = *p
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperrors.NotFound("product", id)
	}
	delete(f.items, id)
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, items: make(map[int64]domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.Email == u.Email {
			return apperrors.AlreadyExists("user", "email", u.Email)
		}
	}
	u.ID = f.nextID
	f.nextID++
	u.CreatedAt = time.Now().UTC()
	f.items[u.ID] = *u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	return &u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.items {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.Unauthorized("invalid credentials")
}

// --- Test server ---

type testServer struct {
	router     http.Handler
	engine     *memory.Engine
	categories *fakeCategoryRepo
	products   *fakeProductRepo
	jwtManager *auth.JWTManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	categories := newFakeCategoryRepo()
	products := newFakeProductRepo()
	users := newFakeUserRepo()
	eng := memory.New()

	producerCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	producerCfg.Async = true
	producer := event.NewProducer(pkgkafka.NewProducer(producerCfg, logger), logger)

	jwtManager := auth.NewJWTManager("test-secret", 15*time.Minute, time.Hour)

	catalogSvc := service.NewCatalogService(categories, products, producer, logger)
	searchSvc := service.NewSearchService(eng, products, nil, service.DefaultSearchConfig(), logger)
	authSvc := service.NewAuthService(users, jwtManager, logger)

	router := NewRouter(RouterConfig{
		Catalog:       catalogSvc,
		Search:        searchSvc,
		Auth:          authSvc,
		TokenValidate: jwtManager.MiddlewareValidator(),
		Health:        health.NewHandler(),
		Logger:        logger,
	})

	return &testServer{
		router:     router,
		engine:     eng,
		categories: categories,
		products:   products,
		jwtManager: jwtManager,
	}
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	token, err := s.jwtManager.GenerateAccessToken(1, "shop@example.com")
	require.NoError(t, err)
	return token
}

// seedIndex indexes products directly into the engine, bypassing Kafka.
func (s *testServer) seedIndex(t *testing.T, products ...domain.Product) {
	t.Helper()
	for i := range products {
		doc := domain.NewProductDocument(&products[i])
		require.NoError(t, s.engine.Index(context.Background(), &doc))
	}
}

func (s *testServer) do(t *testing.T, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

// errorEnvelope mirrors the error half of the response envelope.
type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
