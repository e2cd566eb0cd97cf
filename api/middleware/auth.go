/*
Copyright 2025 SmartTech Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smarttech/storefront/internal/apierror"
	"github.com/smarttech/storefront/model"
)

const adminKey = "admin"

// Authenticator resolves a bearer token to an admin.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Admin, error)
}

// AuthMiddleware guards the admin routes with a bearer token.
type AuthMiddleware struct {
	service Authenticator
}

// NewAuthMiddleware creates the bearer token middleware backed by service.
func NewAuthMiddleware(service Authenticator) *AuthMiddleware {
	return &AuthMiddleware{service: service}
}

// Authenticate rejects requests without a valid admin token and stores the
// admin in the context for the handlers.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Unauthorized(c, "Not authenticated")
			return
		}

		admin, err := m.service.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := apierror.MapErrorToHTTPStatus(err)
			if status == http.StatusUnauthorized {
				Unauthorized(c, apierror.MessageOf(err))
				return
			}
			c.AbortWithStatusJSON(status, gin.H{"detail": apierror.MessageOf(err)})
			return
		}

		c.Set(adminKey, admin)
		c.Next()
	}
}

// Unauthorized aborts with a 401 carrying the bearer challenge.
func Unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

// CurrentAdmin returns the admin set by Authenticate, or nil.
func CurrentAdmin(c *gin.Context) *model.Admin {
	v, ok := c.Get(adminKey)
	if !ok {
		return nil
	}
	admin, _ := v.(*model.Admin)
	return admin
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
