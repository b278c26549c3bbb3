package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Laziz6066/Tafakkur-test/internal/domain"
	pkgkafka "github.com/Laziz6066/Tafakkur-test/pkg/kafka"
)

// Kafka topic constants for catalog domain events.
var (
	TopicProductCreated  = pkgkafka.Topic("product", "created")
	TopicProductUpdated  = pkgkafka.Topic("product", "updated")
	TopicProductDeleted  = pkgkafka.Topic("product", "deleted")
	TopicCategoryUpdated = pkgkafka.Topic("category", "updated")
	TopicCategoryDeleted = pkgkafka.Topic("category", "deleted")
)

// Aggregate type constants.
const (
	AggregateTypeProduct  = "product"
	AggregateTypeCategory = "category"
)

// Source identifier for events originating from the catalog API.
const SourceCatalog = "catalog"

// ProductEventData is the denormalized payload for product.created and
// product.updated events. It carries everything the indexer needs so the
// consumer never has to call back into the database.
type ProductEventData struct {
	ID           int64   `json:"id"`
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Image        *string `json:"image,omitempty"`
}

// ProductDeletedData is the payload for a product.deleted event.
type ProductDeletedData struct {
	ID int64 `json:"id"`
}

// CategoryUpdatedData is the payload for a category.updated event.
type CategoryUpdatedData struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryDeletedData is the payload for a category.deleted event.
type CategoryDeletedData struct {
	ID int64 `json:"id"`
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog API.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func productEventData(p *domain.Product) ProductEventData {
	return ProductEventData{
		ID:           p.ID,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Image:        p.Image,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceCatalog, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	id := strconv.FormatInt(product.ID, 10)
	return p.publish(ctx, TopicProductCreated, id, AggregateTypeProduct, productEventData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	id := strconv.FormatInt(product.ID, 10)
	return p.publish(ctx, TopicProductUpdated, id, AggregateTypeProduct, productEventData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id int64) error {
	aggregateID := strconv.FormatInt(id, 10)
	return p.publish(ctx, TopicProductDeleted, aggregateID, AggregateTypeProduct, ProductDeletedData{ID: id})
}

// PublishCategoryUpdated publishes a category.updated event. The indexer
// reacts by re-projecting every product of the category so the denormalized
// category_name in the index stays current.
func (p *Producer) PublishCategoryUpdated(ctx context.Context, category *domain.Category) error {
	id := strconv.FormatInt(category.ID, 10)
	data := CategoryUpdatedData{ID: category.ID, Name: category.Name, Slug: category.Slug}
	return p.publish(ctx, TopicCategoryUpdated, id, AggregateTypeCategory, data)
}

// PublishCategoryDeleted publishes a category.deleted event.
func (p *Producer) PublishCategoryDeleted(ctx context.Context, id int64) error {
	aggregateID := strconv.FormatInt(id, 10)
	return p.publish(ctx, TopicCategoryDeleted, aggregateID, AggregateTypeCategory, CategoryDeletedData{ID: id})
}
