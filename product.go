package storefront

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/smarttech/storefront/model"
)

const productCacheTTL = 5 * time.Minute

func productCacheKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

// CreateProduct stores a new catalog entry.
//
// Parameters:
// - ctx context.Context: request context.
// - p model.Product: the product to store.
//
// Returns:
// - *model.Product: the stored product with its id and timestamps.
// - error: a storage error.
func (s *Storefront) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	ctx, span := tracer.Start(ctx, "CreateProduct")
	defer span.End()
	return s.datasource.CreateProduct(ctx, p)
}

// GetProduct reads through the product cache when one is configured. Cache
// failures fall back to the database.
func (s *Storefront) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	ctx, span := tracer.Start(ctx, "GetProduct")
	defer span.End()

	key := productCacheKey(id)
	if s.cache != nil {
		var cached model.Product
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logrus.WithError(err).WithField("product_id", id).Warn("product cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	p, err := s.datasource.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, p, productCacheTTL); err != nil {
			logrus.WithError(err).WithField("product_id", id).Warn("product cache write failed")
		}
	}
	return p, nil
}

// ListProducts returns one page of active products.
func (s *Storefront) ListProducts(ctx context.Context, skip, limit int) ([]model.Product, error) {
	return s.datasource.ListActiveProducts(ctx, skip, limit)
}

// UpdateProduct applies a partial update and drops the cached copy.
func (s *Storefront) UpdateProduct(ctx context.Context, id int64, update model.ProductUpdate) (*model.Product, error) {
	ctx, span := tracer.Start(ctx, "UpdateProduct")
	defer span.End()

	p, err := s.datasource.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	update.Apply(p)
	if err := s.datasource.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateProduct(ctx, id)
	return p, nil
}

// UpdateProductMedia replaces the image list and/or the video url. A nil
// argument leaves that field alone.
func (s *Storefront) UpdateProductMedia(ctx context.Context, id int64, images []string, videoURL *string) (*model.Product, error) {
	return s.UpdateProduct(ctx, id, model.ProductUpdate{Images: images, VideoURL: videoURL})
}

func (s *Storefront) invalidateProduct(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productCacheKey(id)); err != nil {
		logrus.WithError(err).WithField("product_id", id).Warn("product cache invalidation failed")
	}
}
