package database

import (
	"context"

	"github.com/smarttech/storefront/model"
)

// CreateAdmin inserts an admin account.
func (d Datasource) CreateAdmin(ctx context.Context, a model.Admin) (*model.Admin, error) {
	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO admins (username, email, hashed_password, is_active, is_superuser)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, a.Username, a.Email, a.HashedPassword, a.IsActive, a.IsSuperuser).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, mapError(err, "Admin not found", "Failed to create admin")
	}
	return &a, nil
}

// GetAdminByUsername loads an admin. A missing admin is a NotFound APIError.
func (d Datasource) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var a model.Admin
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, username, email, hashed_password, is_active, is_superuser, created_at
		FROM admins WHERE username = $1
	`, username).Scan(&a.ID, &a.Username, &a.Email, &a.HashedPassword, &a.IsActive, &a.IsSuperuser, &a.CreatedAt)
	if err != nil {
		return nil, mapError(err, "Admin not found", "Failed to retrieve admin")
	}
	return &a, nil
}

// AdminTaken reports which of username and email are already registered.
func (d Datasource) AdminTaken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error) {
	err = d.Conn.QueryRowContext(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM admins WHERE username = $1),
			EXISTS (SELECT 1 FROM admins WHERE email = $2)
	`, username, email).Scan(&usernameTaken, &emailTaken)
	if err != nil {
		return false, false, mapError(err, "Admin not found", "Failed to check admin")
	}
	return usernameTaken, emailTaken, nil
}
