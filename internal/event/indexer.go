package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Laziz6066/Tafakkur-test/internal/domain"
	"github.com/Laziz6066/Tafakkur-test/internal/engine"
	pkgkafka "github.com/Laziz6066/Tafakkur-test/pkg/kafka"
)

// ProductLister loads products for re-projection after category changes.
type ProductLister interface {
	ListByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error)
}

// Indexer consumes catalog domain events and keeps the search index in
// sync with the database.
type Indexer struct {
	engine   engine.SearchEngine
	products ProductLister
	logger   *slog.Logger
}

// NewIndexer creates a new index-sync consumer.
func NewIndexer(eng engine.SearchEngine, products ProductLister, logger *slog.Logger) *Indexer {
	return &Indexer{
		engine:   eng,
		products: products,
		logger:   logger,
	}
}

// Handler returns the event handler wrapped with idempotent delivery
// protection backed by the given store.
func (i *Indexer) Handler(store pkgkafka.IdempotencyStore) pkgkafka.Handler {
	return pkgkafka.IdempotentHandler(store, i.Handle, i.logger)
}

// Handle processes a Kafka event based on its type.
func (i *Indexer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicProductCreated, TopicProductUpdated:
		return i.handleProductUpserted(ctx, event)
	case TopicProductDeleted:
		return i.handleProductDeleted(ctx, event)
	case TopicCategoryUpdated:
		return i.handleCategoryUpdated(ctx, event)
	case TopicCategoryDeleted:
		return i.handleCategoryDeleted(ctx, event)
	default:
		i.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleProductUpserted indexes a created or updated product.
func (i *Indexer) handleProductUpserted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductEventData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal %s data: %w", event.EventType, err)
	}

	doc := domain.NewProductDocument(&domain.Product{
		ID:           data.ID,
		CategoryID:   data.CategoryID,
		CategoryName: data.CategoryName,
		Name:         data.Name,
		Description:  data.Description,
		Price:        data.Price,
		Image:        data.Image,
	})

	if err := i.engine.Index(ctx, &doc); err != nil {
		return fmt.Errorf("index product %d: %w", data.ID, err)
	}

	i.logger.InfoContext(ctx, "indexed product",
		slog.Int64("product_id", data.ID),
		slog.String("event_type", event.EventType),
	)

	return nil
}

// handleProductDeleted removes a deleted product from the index.
func (i *Indexer) handleProductDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data ProductDeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal product.deleted data: %w", err)
	}

	if err := i.engine.Delete(ctx, data.ID); err != nil {
		return fmt.Errorf("delete product %d from index: %w", data.ID, err)
	}

	i.logger.InfoContext(ctx, "removed product from index",
		slog.Int64("product_id", data.ID),
	)

	return nil
}

// handleCategoryUpdated re-projects every product of the category so the
// denormalized category name in the index matches the database.
func (i *Indexer) handleCategoryUpdated(ctx context.Context, event *pkgkafka.Event) error {
	var data CategoryUpdatedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal category.updated data: %w", err)
	}

	products, err := i.products.ListByCategory(ctx, data.ID)
	if err != nil {
		return fmt.Errorf("list products of category %d: %w", data.ID, err)
	}

	if len(products) == 0 {
		return nil
	}

	docs := make([]domain.ProductDocument, 0, len(products))
	for idx := range products {
		docs = append(docs, domain.NewProductDocument(&products[idx]))
	}

	if err := i.engine.BulkIndex(ctx, docs); err != nil {
		return fmt.Errorf("re-index products of category %d: %w", data.ID, err)
	}

	i.logger.InfoContext(ctx, "re-indexed category products",
		slog.Int64("category_id", data.ID),
		slog.Int("count", len(docs)),
	)

	return nil
}

// handleCategoryDeleted removes all documents of the category. The rows are
// already gone from the database via the FK cascade.
func (i *Indexer) handleCategoryDeleted(ctx context.Context, event *pkgkafka.Event) error {
	var data CategoryDeletedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("unmarshal category.deleted data: %w", err)
	}

	if err := i.engine.DeleteByCategory(ctx, data.ID); err != nil {
		return fmt.Errorf("delete category %d documents: %w", data.ID, err)
	}

	i.logger.InfoContext(ctx, "removed category documents from index",
		slog.Int64("category_id", data.ID),
	)

	return nil
}
