package storefront

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/smarttech/storefront/internal/apierror"
	"github.com/smarttech/storefront/model"
)

// SeedCatalog stores p when the catalog has no active product yet.
func (s *Storefront) SeedCatalog(ctx context.Context, p model.Product) (bool, error) {
	existing, err := s.datasource.ListActiveProducts(ctx, 0, 1)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	if _, err := s.CreateProduct(ctx, p); err != nil {
		return false, err
	}
	logrus.WithField("product", p.Name).Info("catalog seeded")
	return true, nil
}

// SeedAdmin registers the first admin unless that username already exists.
func (s *Storefront) SeedAdmin(ctx context.Context, username, email, password string) (bool, error) {
	_, err := s.datasource.GetAdminByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if apierror.CodeOf(err) != apierror.ErrNotFound {
		return false, err
	}
	if _, err := s.RegisterAdmin(ctx, username, email, password); err != nil {
		return false, err
	}
	return true, nil
}
