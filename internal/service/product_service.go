package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"order-management-service/internal/entity"
	"order-management-service/internal/repository"
)

// cacheTTL bounds how stale a cached product may get between invalidations.
const cacheTTL = 1 * time.Minute

// ProductService serves the catalog read paths with a redis cache in front
// of the product repository.
type ProductService struct {
	catalog CatalogStore
	rdb     *redis.Client
}

// NewProductService creates a new instance of ProductService. A nil redis
// client disables caching.
func NewProductService(catalog CatalogStore, rdb *redis.Client) *ProductService {
	return &ProductService{
		catalog: catalog,
		rdb:     rdb,
	}
}

// GetProduct returns an active product by id, reading through the cache.
func (p *ProductService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	if p.rdb != nil {
		cached, err := p.rdb.Get(ctx, cacheKey(id)).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				logger.Error().Err(err).Str("product_id", id).Msg("Error reading product from cache")
			}
		} else {
			var product entity.Product
			if err := json.Unmarshal([]byte(cached), &product); err == nil {
				return &product, nil
			}
			logger.Warn().Str("product_id", id).Msg("Discarding unreadable cache entry")
		}
	}

	product, err := p.catalog.GetActiveProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	p.cacheProduct(ctx, product)
	return product, nil
}

// ListProducts returns active products sorted by name, optionally filtered
// by category. Listings always hit the database; only per-id lookups are
// cached.
func (p *ProductService) ListProducts(ctx context.Context, category string) ([]*entity.Product, error) {
	return p.catalog.ListActive(ctx, category)
}

// Invalidate drops cached entries for the given products. Called after an
// order commit changes their stock.
func (p *ProductService) Invalidate(ctx context.Context, productIDs ...string) {
	if p.rdb == nil || len(productIDs) == 0 {
		return
	}
	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = cacheKey(id)
	}
	if err := p.rdb.Del(ctx, keys...).Err(); err != nil {
		logger.Error().Err(err).Msg("Error invalidating product cache")
	}
}

// PreWarmCache loads every active product into the cache.
func (p *ProductService) PreWarmCache(ctx context.Context) error {
	if p.rdb == nil {
		return nil
	}
	products, err := p.catalog.ListActive(ctx, "")
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return err
	}

	for _, product := range products {
		p.cacheProduct(ctx, product)
	}
	return nil
}

func (p *ProductService) cacheProduct(ctx context.Context, product *entity.Product) {
	if p.rdb == nil {
		return
	}
	data, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := p.rdb.Set(ctx, cacheKey(product.ID), data, cacheTTL).Err(); err != nil {
		logger.Error().Err(err).Str("product_id", product.ID).Msg("Error setting product in cache")
	}
}

func cacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}
