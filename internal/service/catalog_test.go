package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Laziz6066/Tafakkur-test/internal/domain"
	apperrors "github.com/Laziz6066/Tafakkur-test/pkg/errors"
	"github.com/Laziz6066/Tafakkur-test/pkg/pagination"
)

func newCatalogService(categories *mockCategoryRepository, products *mockProductRepository) *CatalogService {
	logger := newTestLogger()
	return NewCatalogService(categories, products, newTestProducer(logger), logger)
}

func TestCreateCategory_GeneratesSlug(t *testing.T) {
	categories := new(mockCategoryRepository)
	products := new(mockProductRepository)
	svc := newCatalogService(categories, products)

	categories.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return c.Slug == "home-kitchen"
	})).Return(nil)

	category, err := svc.CreateCategory(context.Background(), &CreateCategoryInput{
		Name:        "Home & Kitchen",
		Description: "Everything for the home",
	})
	require.NoError(t, err)
	assert.Equal(t, "home-kitchen", category.Slug)
	categories.AssertExpectations(t)
}

func TestCreateCategory_EmptyName(t *testing.T) {
	svc := newCatalogService(new(mockCategoryRepository), new(mockProductRepository))

	_, err := svc.CreateCategory(context.Background(), &CreateCategoryInput{Name: ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateCategory_RenameReslugs(t *testing.T) {
	categories := new(mockCategoryRepository)
	products := new(mockProductRepository)
	svc := newCatalogService(categories, products)

	existing := &domain.Category{ID: 1, Name: "Electronics", Slug: "electronics"}
	categories.On("GetByID", mock.Anything, int64(1)).Return(existing, nil)
	categories.On("Update", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return c.Name == "Gadgets" && c.Slug == "gadgets"
	})).Return(nil)

	updated, err := svc.UpdateCategory(context.Background(), 1, &UpdateCategoryInput{
		Name: strPtr("Gadgets"),
	})
	require.NoError(t, err)
	assert.Equal(t, "gadgets", updated.Slug)
	categories.AssertExpectations(t)
}

func TestUpdateCategory_NotFound(t *testing.T) {
	categories := new(mockCategoryRepository)
	svc := newCatalogService(categories, new(mockProductRepository))

	categories.On("GetByID", mock.Anything, int64(404)).Return(nil, apperrors.NotFound("category", 404))

	_, err := svc.UpdateCategory(context.Background(), 404, &UpdateCategoryInput{Name: strPtr("X")})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteCategory_Success(t *testing.T) {
	categories := new(mockCategoryRepository)
	svc := newCatalogService(categories, new(mockProductRepository))

	categories.On("Delete", mock.Anything, int64(1)).Return(nil)

	require.NoError(t, svc.DeleteCategory(context.Background(), 1))
	categories.AssertExpectations(t)
}

func TestListCategories_Paginates(t *testing.T) {
	categories := new(mockCategoryRepository)
	svc := newCatalogService(categories, new(mockProductRepository))

	categories.On("List", mock.Anything, 20, 0).Return([]domain.Category{
		{ID: 1, Name: "Books"},
		{ID: 2, Name: "Electronics"},
	}, 2, nil)

	result, err := svc.ListCategories(context.Background(), pagination.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 1, result.TotalPages)
	assert.Len(t, result.Results, 2)
}

func TestCreateProduct_DenormalizesCategoryName(t *testing.T) {
	categories := new(mockCategoryRepository)
	products := new(mockProductRepository)
	svc := newCatalogService(categories, products)

	categories.On("GetByID", mock.Anything, int64(2)).Return(&domain.Category{ID: 2, Name: "Electronics"}, nil)
	products.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.CategoryName == "Electronics"
	})).Return(nil)

	product, err := svc.CreateProduct(context.Background(), &CreateProductInput{
		CategoryID:  2,
		Name:        "Smartphone",
		Description: "Flagship smartphone",
		Price:       499.99,
	})
	require.NoError(t, err)
	assert.Equal(t, "Electronics", product.CategoryName)
	products.AssertExpectations(t)
}

func TestCreateProduct_MissingCategory(t *testing.T) {
	categories := new(mockCategoryRepository)
	svc := newCatalogService(categories, new(mockProductRepository))

	categories.On("GetByID", mock.Anything, int64(404)).Return(nil, apperrors.NotFound("category", 404))

	_, err := svc.CreateProduct(context.Background(), &CreateProductInput{
		CategoryID: 404,
		Name:       "Smartphone",
		Price:      499.99,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateProduct_NegativePrice(t *testing.T) {
	svc := newCatalogService(new(mockCategoryRepository), new(mockProductRepository))

	_, err := svc.CreateProduct(context.Background(), &CreateProductInput{
		CategoryID: 1,
		Name:       "Smartphone",
		Price:      -1,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestUpdateProduct_CategoryMove(t *testing.T) {
	categories := new(mockCategoryRepository)
	products := new(mockProductRepository)
	svc := newCatalogService(categories, products)

	existing := &domain.Product{ID: 1, CategoryID: 2, CategoryName: "Electronics", Name: "Smartphone", Price: 499.99}
	products.On("GetByID", mock.Anything, int64(1)).Return(existing, nil)
	categories.On("GetByID", mock.Anything, int64(3)).Return(&domain.Category{ID: 3, Name: "Refurbished"}, nil)
	products.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.CategoryID == 3 && p.CategoryName == "Refurbished"
	})).Return(nil)

	updated, err := svc.UpdateProduct(context.Background(), 1, &UpdateProductInput{
		CategoryID: int64Ptr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "Refurbished", updated.CategoryName)
	products.AssertExpectations(t)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	products := new(mockProductRepository)
	svc := newCatalogService(new(mockCategoryRepository), products)

	products.On("Delete", mock.Anything, int64(404)).Return(apperrors.NotFound("product", 404))

	err := svc.DeleteProduct(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
