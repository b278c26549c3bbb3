package repository

import (
	"context"

	"github.com/Laziz6066/Tafakkur-test/internal/domain"
)

// ProductFilter narrows product list queries.
type ProductFilter struct {
	CategoryID *int64
	Limit      int
	Offset     int
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context, limit, offset int) ([]domain.Category, int, error)
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id int64) error
}

// ProductRepository defines persistence operations for products. Reads are
// joined with categories so CategoryName is always populated.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

// UserRepository defines persistence operations for API users.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
