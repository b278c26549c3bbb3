package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Laziz6066/Tafakkur-test/internal/domain"
	"github.com/Laziz6066/Tafakkur-test/internal/repository"
	"github.com/Laziz6066/Tafakkur-test/pkg/database"
	apperrors "github.com/Laziz6066/Tafakkur-test/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────────────────

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// ─── Category column definitions ────────────────────────────────────────────

var categoryCols = []string{
	"id", "name", "slug", "description", "image", "created_at", "updated_at",
}

func sampleCategory() domain.Category {
	return domain.Category{
		ID:          1,
		Name:        "Electronics",
		Slug:        "electronics",
		Description: "Phones, laptops and accessories",
		Image:       strPtr("https://cdn.example.com/electronics.png"),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func categoryRow(c domain.Category) []any {
	return []any{c.ID, c.Name, c.Slug, c.Description, c.Image, c.CreatedAt, c.UpdatedAt}
}

// ─── Product column definitions ─────────────────────────────────────────────

var productCols = []string{
	"id", "category_id", "category_name", "name", "description", "price", "image",
	"created_at", "updated_at",
}

func sampleProduct() domain.Product {
	return domain.Product{
		ID:           1,
		CategoryID:   1,
		CategoryName: "Electronics",
		Name:         "Smartphone",
		Description:  "Flagship smartphone",
		Price:        499.99,
		Image:        strPtr("https://cdn.example.com/smartphone.png"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func productRow(p domain.Product) []any {
	return []any{
		p.ID, p.CategoryID, p.CategoryName, p.Name, p.Description, p.Price,
		p.Image, p.CreatedAt, p.UpdatedAt,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// CategoryRepository
// ─────────────────────────────────────────────────────────────────────────────

func TestCategoryRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	c := sampleCategory()
	c.ID = 0

	mock.ExpectQuery("INSERT INTO categories").
		WithArgs(c.Name, c.Slug, c.Description, c.Image).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), now, now))

	err := repo.Create(context.Background(), &c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, now, c.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Create_UniqueViolation(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	c := sampleCategory()
	mock.ExpectQuery("INSERT INTO categories").
		WithArgs(c.Name, c.Slug, c.Description, c.Image).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &c)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_GetByID_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	c := sampleCategory()
	mock.ExpectQuery("SELECT .+ FROM categories WHERE id").
		WithArgs(c.ID).
		WillReturnRows(pgxmock.NewRows(categoryCols).AddRow(categoryRow(c)...))

	got, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Name, got.Name)
	assert.Equal(t, c.Slug, got.Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM categories WHERE id").
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_List_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	c := sampleCategory()
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .+ FROM categories").
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows(categoryCols).AddRow(categoryRow(c)...))

	categories, total, err := repo.List(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, categories, 1)
	assert.Equal(t, c.Name, categories[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Update_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	c := sampleCategory()
	mock.ExpectExec("UPDATE categories").
		WithArgs(c.Name, c.Slug, c.Description, c.Image, pgxmock.AnyArg(), c.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), &c)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	c := sampleCategory()
	c.ID = 404
	mock.ExpectExec("UPDATE categories").
		WithArgs(c.Name, c.Slug, c.Description, c.Image, pgxmock.AnyArg(), c.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &c)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Delete_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryRepository_Delete_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewCategoryRepository(mock)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs(int64(404)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─────────────────────────────────────────────────────────────────────────────
// ProductRepository
// ─────────────────────────────────────────────────────────────────────────────

func TestProductRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	p := sampleProduct()
	p.ID = 0

	mock.ExpectQuery("INSERT INTO products").
		WithArgs(p.CategoryID, p.Name, p.Description, p.Price, p.Image).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), now, now))

	err := repo.Create(context.Background(), &p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectQuery("SELECT .+ FROM products p").
		WithArgs(p.ID).
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(productRow(p)...))

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, "Electronics", got.CategoryName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products p").
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .+ FROM products p").
		WithArgs(20, 0).
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(productRow(p)...))

	products, total, err := repo.List(context.Background(), repository.ProductFilter{Limit: 20, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, p.Name, products[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_List_WithCategoryFilter(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .+ FROM products p").
		WithArgs(int64(1), 10, 0).
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(productRow(p)...))

	filter := repository.ProductFilter{CategoryID: int64Ptr(1), Limit: 10, Offset: 0}
	products, total, err := repo.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListByCategory_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectQuery("SELECT .+ FROM products p").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(productCols).AddRow(productRow(p)...))

	products, err := repo.ListByCategory(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(1), products[0].CategoryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_ListAll_Empty(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM products p").
		WillReturnRows(pgxmock.NewRows(productCols))

	products, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NotNil(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectExec("UPDATE products").
		WithArgs(p.CategoryID, p.Name, p.Description, p.Price, p.Image, pgxmock.AnyArg(), p.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Update(context.Background(), &p)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	p := sampleProduct()
	p.ID = 404
	mock.ExpectExec("UPDATE products").
		WithArgs(p.CategoryID, p.Name, p.Description, p.Price, p.Image, pgxmock.AnyArg(), p.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &p)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Delete_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec("DELETE FROM products").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Delete_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewProductRepository(mock)

	mock.ExpectExec("DELETE FROM products").
		WithArgs(int64(404)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─────────────────────────────────────────────────────────────────────────────
// UserRepository
// ─────────────────────────────────────────────────────────────────────────────

func TestUserRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	u := domain.User{Email: "shop@example.com", PasswordHash: "$2a$12$hash"}
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.Email, u.PasswordHash).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))

	err := repo.Create(context.Background(), &u)
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	u := domain.User{Email: "shop@example.com", PasswordHash: "$2a$12$hash"}
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.Email, u.PasswordHash).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	err := repo.Create(context.Background(), &u)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_Success(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email").
		WithArgs("shop@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow(int64(7), "shop@example.com", "$2a$12$hash", now))

	u, err := repo.GetByEmail(context.Background(), "shop@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email").
		WithArgs("missing@example.com").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}
