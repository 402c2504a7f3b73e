package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ruangkerja/backend-ruang/internal/common"
	"github.com/ruangkerja/backend-ruang/internal/store"
)

const activeListCacheKey = "catalog:products:active"

// defaultCategory is applied when a product is created without one.
const defaultCategory = "beverage"

// Store defines the database operations required for the product catalog.
type Store interface {
	CreateProduct(ctx context.Context, name string, price decimal.Decimal, category string) (store.Product, error)
	GetProductByID(ctx context.Context, id int64) (store.Product, error)
	ListProducts(ctx context.Context, activeOnly bool, limit, offset int32) ([]store.Product, error)
	CountProducts(ctx context.Context, activeOnly bool) (int64, error)
	UpdateProduct(ctx context.Context, id int64, name string, price decimal.Decimal, category string, isActive bool) (store.Product, error)
	DeactivateProduct(ctx context.Context, id int64) error
}

// Service orchestrates catalog reads and writes with a cache in front of
// the active product list.
type Service struct {
	Store  Store
	Cache  *Cache
	Logger zerolog.Logger
}

// ProductInput captures the payload for creating or updating a product.
type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Category string
	IsActive *bool
}

// Create adds a product to the catalog.
func (s *Service) Create(ctx context.Context, input ProductInput) (store.Product, error) {
	if err := validateInput(input); err != nil {
		return store.Product{}, err
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = defaultCategory
	}
	p, err := s.Store.CreateProduct(ctx, strings.TrimSpace(input.Name), input.Price, category)
	if err != nil {
		return store.Product{}, err
	}
	s.invalidate(ctx)
	return p, nil
}

// Get fetches a product by id.
func (s *Service) Get(ctx context.Context, id int64) (store.Product, error) {
	p, err := s.Store.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return store.Product{}, common.NotFound("product not found")
		}
		return store.Product{}, err
	}
	return p, nil
}

// List returns products with the total count. The active-only listing with
// default pagination is served from cache when possible.
func (s *Service) List(ctx context.Context, includeInactive bool, limit, offset int32) ([]store.Product, int64, error) {
	cacheable := !includeInactive && offset == 0
	if cacheable {
		var cached listPayload
		// Serve from cache when the snapshot covers the requested page.
		if hit, err := s.Cache.Get(ctx, activeListCacheKey, &cached); err != nil {
			s.Logger.Warn().Err(err).Msg("catalog cache read failed")
		} else if hit && (int32(len(cached.Items)) >= limit || cached.Total == int64(len(cached.Items))) {
			items := cached.Items
			if int32(len(items)) > limit {
				items = items[:limit]
			}
			return items, cached.Total, nil
		}
	}

	products, err := s.Store.ListProducts(ctx, !includeInactive, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.CountProducts(ctx, !includeInactive)
	if err != nil {
		return nil, 0, err
	}

	if cacheable {
		if err := s.Cache.Put(ctx, activeListCacheKey, listPayload{Items: products, Total: total}); err != nil {
			s.Logger.Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	return products, total, nil
}

// Update replaces the mutable fields of a product.
func (s *Service) Update(ctx context.Context, id int64, input ProductInput) (store.Product, error) {
	if err := validateInput(input); err != nil {
		return store.Product{}, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return store.Product{}, err
	}
	isActive := current.IsActive
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = current.Category
	}
	p, err := s.Store.UpdateProduct(ctx, id, strings.TrimSpace(input.Name), input.Price, category, isActive)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return store.Product{}, common.NotFound("product not found")
		}
		return store.Product{}, err
	}
	s.invalidate(ctx)
	return p, nil
}

// Deactivate soft-deletes a product so existing orders keep their reference.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if err := s.Store.DeactivateProduct(ctx, id); err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return common.NotFound("product not found")
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

type listPayload struct {
	Items []store.Product `json:"items"`
	Total int64           `json:"total"`
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.Cache.Drop(ctx, activeListCacheKey); err != nil {
		s.Logger.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

func validateInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return common.Validation("name is required")
	}
	if input.Price.IsNegative() {
		return common.Validation("price must not be negative")
	}
	return nil
}
