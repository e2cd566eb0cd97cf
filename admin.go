package storefront

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/smarttech/storefront/internal/apierror"
	"github.com/smarttech/storefront/internal/auth"
	"github.com/smarttech/storefront/model"
)

const (
	msgBadLogin       = "Incorrect username or password"
	msgBadCredentials = "Could not validate credentials"
)

// RegisterAdmin creates a superuser. Username and email must both be unused.
func (s *Storefront) RegisterAdmin(ctx context.Context, username, email, password string) (*model.Admin, error) {
	usernameTaken, emailTaken, err := s.datasource.AdminTaken(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if usernameTaken {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Username already registered", nil)
	}
	if emailTaken {
		return nil, apierror.NewAPIError(apierror.ErrBadRequest, "Email already registered", nil)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to register admin", err)
	}
	admin, err := s.datasource.CreateAdmin(ctx, model.Admin{
		Username:       username,
		Email:          email,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    true,
	})
	if err != nil {
		return nil, err
	}
	logrus.WithField("username", username).Info("admin registered")
	return admin, nil
}

// Login verifies the password and issues a bearer token.
func (s *Storefront) Login(ctx context.Context, username, password string) (*model.Token, error) {
	admin, err := s.datasource.GetAdminByUsername(ctx, username)
	if err != nil {
		if apierror.CodeOf(err) == apierror.ErrNotFound {
			return nil, apierror.NewAPIError(apierror.ErrUnauthorized, msgBadLogin, nil)
		}
		return nil, err
	}
	if !admin.IsActive || !auth.CheckPassword(admin.HashedPassword, password) {
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, msgBadLogin, nil)
	}

	token, err := s.tokens.Issue(admin.Username)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to issue token", err)
	}
	return &model.Token{AccessToken: token, TokenType: "bearer"}, nil
}

// Authenticate resolves a bearer token to an active admin.
func (s *Storefront) Authenticate(ctx context.Context, token string) (*model.Admin, error) {
	username, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, msgBadCredentials, nil)
	}
	admin, err := s.datasource.GetAdminByUsername(ctx, username)
	if err != nil {
		if apierror.CodeOf(err) == apierror.ErrNotFound {
			return nil, apierror.NewAPIError(apierror.ErrUnauthorized, msgBadCredentials, nil)
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, apierror.NewAPIError(apierror.ErrUnauthorized, "Inactive admin", nil)
	}
	return admin, nil
}
