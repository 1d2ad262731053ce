package catalog

import (
	"errors"
	"time"

	"MiniShop/internal/cache"
	"MiniShop/internal/store"
)

const (
	// Catalog is static for the process lifetime, so the listing cache is
	// never invalidated, only expired.
	listTTL = 5 * time.Minute

	cachePrefix = "products"
)

var ErrProductNotFound = errors.New("product not found")

type Service struct {
	Store *store.Store
	Cache *cache.Cache
}

// ListProducts is cache-backed under the key "products:list" (constant: the
// operation takes no arguments).
func (s *Service) ListProducts() []store.Product {
	key := cache.Key(cachePrefix, "list")
	if v, ok := s.Cache.Get(key, listTTL); ok {
		return v.([]store.Product)
	}

	out := s.Store.ListProductsSortedByID()
	s.Cache.Set(key, out)
	return out
}

// GetProduct is a cheap keyed lookup and is not cached.
func (s *Service) GetProduct(id string) (store.Product, error) {
	p, ok := s.Store.GetProduct(id)
	if !ok {
		return store.Product{}, ErrProductNotFound
	}
	return p, nil
}
