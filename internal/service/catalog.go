package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Laziz6066/Tafakkur-test/internal/domain"
	"github.com/Laziz6066/Tafakkur-test/internal/event"
	"github.com/Laziz6066/Tafakkur-test/internal/repository"
	apperrors "github.com/Laziz6066/Tafakkur-test/pkg/errors"
	"github.com/Laziz6066/Tafakkur-test/pkg/pagination"
	"github.com/Laziz6066/Tafakkur-test/pkg/slug"
)

// CatalogService implements the business logic for category and product
// operations. Writes publish domain events so the search index follows the
// database; a failed publish never fails the API call.
type CatalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	producer   *event.Producer
	logger     *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		producer:   producer,
		logger:     logger,
	}
}

// CreateCategoryInput holds the parameters for creating a category.
type CreateCategoryInput struct {
	Name        string
	Description string
	Image       *string
}

// UpdateCategoryInput holds the parameters for updating a category.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	Image       *string
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	CategoryID  int64
	Name        string
	Description string
	Price       float64
	Image       *string
}

// UpdateProductInput holds the parameters for updating a product.
type UpdateProductInput struct {
	CategoryID  *int64
	Name        *string
	Description *string
	Price       *float64
	Image       *string
}

// CreateCategory creates a new category with a slug derived from its name.
func (s *CatalogService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*domain.Category, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}

	category := &domain.Category{
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		Image:       input.Image,
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.InfoContext(ctx, "category created",
		slog.Int64("category_id", category.ID),
		slog.String("slug", category.Slug),
	)

	return category, nil
}

// GetCategory retrieves a category by its ID.
func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return category, nil
}

// ListCategories returns a page of categories ordered by name.
func (s *CatalogService) ListCategories(ctx context.Context, params pagination.Params) (*pagination.Result[domain.Category], error) {
	categories, total, err := s.categories.List(ctx, params.PageSize, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	result := pagination.NewResult(categories, total, params)
	return &result, nil
}

// UpdateCategory applies a partial update. A rename re-slugs the category
// and triggers re-indexing of its products through the category.updated
// event.
func (s *CatalogService) UpdateCategory(ctx context.Context, id int64, input *UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}

	renamed := false
	if input.Name != nil && *input.Name != category.Name {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("category name is required")
		}
		category.Name = *input.Name
		category.Slug = slug.Generate(*input.Name)
		renamed = true
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.Image != nil {
		category.Image = input.Image
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	if renamed {
		if err := s.producer.PublishCategoryUpdated(ctx, category); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish category.updated event",
				slog.Int64("category_id", category.ID),
				slog.String("error", err.Error()),
			)
			// Do not fail the operation if event publishing fails.
		}
	}

	s.logger.InfoContext(ctx, "category updated",
		slog.Int64("category_id", category.ID),
	)

	return category, nil
}

// DeleteCategory removes a category and, through the FK cascade, its
// products. The category.deleted event drops the matching index documents.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := s.producer.PublishCategoryDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.deleted event",
			slog.Int64("category_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category deleted",
		slog.Int64("category_id", id),
	)

	return nil
}

// CreateProduct creates a new product in an existing category.
func (s *CatalogService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}

	product := &domain.Product{
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		Image:        input.Image,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.Int64("category_id", product.CategoryID),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// ListProducts returns a page of products, optionally filtered by category.
func (s *CatalogService) ListProducts(ctx context.Context, categoryID *int64, params pagination.Params) (*pagination.Result[domain.Product], error) {
	filter := repository.ProductFilter{
		CategoryID: categoryID,
		Limit:      params.PageSize,
		Offset:     params.Offset,
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	result := pagination.NewResult(products, total, params)
	return &result, nil
}

// UpdateProduct applies a partial update to a product.
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	if input.CategoryID != nil && *input.CategoryID != product.CategoryID {
		category, err := s.categories.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("get category by id: %w", err)
		}
		product.CategoryID = category.ID
		product.CategoryName = category.Name
	}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("product name is required")
		}
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		product.Price = *input.Price
	}
	if input.Image != nil {
		product.Image = input.Image
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.Int64("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes a product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.Int64("product_id", id),
	)

	return nil
}
