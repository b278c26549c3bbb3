// Command seed populates the catalog database with a deterministic set of
// demo categories and products so search and autocomplete have something to
// chew on in development.
//
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const batchSize = 200

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type seedCategory struct {
	name string
	slug string
}

var categories = []seedCategory{
	{"Electronics", "electronics"},
	{"Accessories", "accessories"},
	{"Home & Kitchen", "home-kitchen"},
	{"Sports & Outdoors", "sports-outdoors"},
	{"Books", "books"},
	{"Toys & Games", "toys-games"},
}

var adjectives = []string{
	"Classic", "Compact", "Premium", "Wireless", "Portable",
	"Ergonomic", "Foldable", "Smart", "Vintage", "Ultra",
}

var nouns = map[string][]string{
	"electronics":     {"Smartphone", "Laptop", "Tablet", "Headphones", "Monitor", "Camera"},
	"accessories":     {"Phone case", "Charger", "Cable", "Stand", "Sleeve", "Strap"},
	"home-kitchen":    {"Blender", "Kettle", "Toaster", "Cookware set", "Lamp", "Organizer"},
	"sports-outdoors": {"Yoga mat", "Water bottle", "Backpack", "Tent", "Dumbbell set", "Bike light"},
	"books":           {"Novel", "Cookbook", "Atlas", "Field guide", "Biography", "Anthology"},
	"toys-games":      {"Puzzle", "Board game", "Building set", "Plush toy", "Card game", "Model kit"},
}

func main() {
	productsPerCategory := 50
	if v := os.Getenv("SEED_PRODUCTS_PER_CATEGORY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			log.Fatalf("invalid SEED_PRODUCTS_PER_CATEGORY %q", v)
		}
		productsPerCategory = n
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "catalog"),
		getEnv("POSTGRES_PASSWORD", "catalog_secret"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_DB", "catalog_db"),
		getEnv("POSTGRES_SSL_MODE", "disable"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping postgres: %v", err)
	}

	start := time.Now()
	total, err := seed(ctx, pool, productsPerCategory)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("seeded %d categories and %d products in %s", len(categories), total, time.Since(start).Round(time.Millisecond))
}

func seed(ctx context.Context, pool *pgxpool.Pool, perCategory int) (int, error) {
	// Fixed seed keeps re-runs deterministic.
	rng := rand.New(rand.NewSource(42))

	categoryIDs := make(map[string]int64, len(categories))
	for _, c := range categories {
		var id int64
		err := pool.QueryRow(ctx, `
			INSERT INTO categories (name, slug)
			VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			c.name, c.slug,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("upsert category %s: %w", c.slug, err)
		}
		categoryIDs[c.slug] = id
	}

	total := 0
	batch := &pgx.Batch{}
	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		br := pool.SendBatch(ctx, batch)
		defer br.Close()
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				return fmt.Errorf("insert product batch: %w", err)
			}
		}
		batch = &pgx.Batch{}
		return nil
	}

	for _, c := range categories {
		names := nouns[c.slug]
		for i := 0; i < perCategory; i++ {
			adj := adjectives[rng.Intn(len(adjectives))]
			noun := names[rng.Intn(len(names))]
			name := fmt.Sprintf("%s %s %d", adj, noun, i+1)
			description := fmt.Sprintf("%s %s from the %s collection.", adj, noun, c.name)
			price := float64(rng.Intn(99000)+1000) / 100

			batch.Queue(`
				INSERT INTO products (category_id, name, description, price)
				VALUES ($1, $2, $3, $4)`,
				categoryIDs[c.slug], name, description, price,
			)
			total++

			if batch.Len() >= batchSize {
				if err := flush(); err != nil {
					return 0, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return 0, err
	}

	return total, nil
}
