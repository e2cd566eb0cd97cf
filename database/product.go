package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smarttech/storefront/internal/apierror"
	"github.com/smarttech/storefront/model"
)

const productColumns = `id, name, COALESCE(description, ''), price, specifications, images, COALESCE(video_url, ''), is_active, stock_quantity, created_at, updated_at`

// CreateProduct inserts a product; specifications and images are stored as JSON.
func (d Datasource) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	specs, images, err := encodeProductJSON(p)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Invalid product data", err)
	}

	err = d.Conn.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, specifications, images, video_url, is_active, stock_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, p.Name, p.Description, p.Price, specs, images, p.VideoURL, p.IsActive, p.StockQuantity).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, mapError(err, "Product not found", "Failed to create product")
	}
	return &p, nil
}

// GetProduct loads one product, active or not.
func (d Datasource) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	row := d.Conn.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, mapError(err, "Product not found", "Failed to retrieve product")
	}
	return p, nil
}

// ListActiveProducts returns active products ordered by id.
//
// Parameters:
// - ctx context.Context: request context.
// - skip int: rows to skip.
// - limit int: maximum rows to return.
//
// Returns:
// - []model.Product: the products, empty when none match.
// - error: a storage error.
func (d Datasource) ListActiveProducts(ctx context.Context, skip, limit int) ([]model.Product, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE is_active = TRUE
		ORDER BY id
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, mapError(err, "Product not found", "Failed to list products")
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, mapError(err, "Product not found", "Failed to scan product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "Product not found", "Failed to list products")
	}
	return products, nil
}

// UpdateProduct writes every mutable column of p.
func (d Datasource) UpdateProduct(ctx context.Context, p *model.Product) error {
	specs, images, err := encodeProductJSON(*p)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInvalidInput, "Invalid product data", err)
	}

	now := time.Now().UTC()
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, specifications = $5, images = $6,
			video_url = $7, is_active = $8, stock_quantity = $9, updated_at = $10
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Price, specs, images, p.VideoURL, p.IsActive, p.StockQuantity, now)
	if err != nil {
		return mapError(err, "Product not found", "Failed to update product")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "Product not found", nil)
	}
	p.UpdatedAt = &now
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*model.Product, error) {
	var (
		p      model.Product
		specs  []byte
		images []byte
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &specs, &images, &p.VideoURL,
		&p.IsActive, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return nil, fmt.Errorf("decode specifications: %w", err)
		}
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, fmt.Errorf("decode images: %w", err)
		}
	}
	return &p, nil
}

// encodeProductJSON renders the jsonb columns. Absent values stay NULL.
func encodeProductJSON(p model.Product) (specs, images any, err error) {
	if p.Specifications != nil {
		b, err := json.Marshal(p.Specifications)
		if err != nil {
			return nil, nil, err
		}
		specs = string(b)
	}
	if p.Images != nil {
		b, err := json.Marshal(p.Images)
		if err != nil {
			return nil, nil, err
		}
		images = string(b)
	}
	return specs, images, nil
}
