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
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/smarttech/storefront"
	"github.com/smarttech/storefront/api/middleware"
	"github.com/smarttech/storefront/internal/apierror"
	"github.com/smarttech/storefront/internal/metrics"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 1000
	maxUploadMemory  = 8 << 20
)

var productFeatures = []string{
	"Android 12",
	"16GB RAM + 256GB Storage",
	"48MP AI Camera",
	"8 Microphones",
	"NFC Support",
	"Fingerprint Scanner",
	"2.1 Channel Audio",
}

// Api serves the storefront over HTTP.
type Api struct {
	storefront *storefront.Storefront
	router     *gin.Engine
	auth       *middleware.AuthMiddleware
}

// Router registers every route on the engine and returns it. Admin routes
// require a bearer token.
func (a Api) Router() *gin.Engine {
	router := a.router
	admin := a.auth.Authenticate()

	router.GET("/", a.Welcome)
	router.GET("/health", a.Health)
	router.GET("/health/ready", a.Ready)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.Static("/static", a.storefront.Media().Root())

	products := router.Group("/api/products")
	handle(products, http.MethodGet, "", a.ListProducts)
	handle(products, http.MethodPost, "", admin, a.CreateProduct)
	products.GET("/:id", a.GetProduct)
	products.PUT("/:id", admin, a.UpdateProduct)

	orders := router.Group("/api/orders")
	handle(orders, http.MethodPost, "", a.CreateOrder)
	handle(orders, http.MethodGet, "", admin, a.ListOrders)
	orders.GET("/:id", admin, a.GetOrder)
	orders.PUT("/:id", admin, a.UpdateOrder)
	orders.DELETE("/:id", admin, a.DeleteOrder)

	chat := router.Group("/api/chat")
	handle(chat, http.MethodPost, "", a.Chat)
	chat.GET("/history/:session_id", a.ChatHistory)

	admins := router.Group("/api/admin")
	admins.POST("/login", a.Login)
	admins.POST("/register", a.RegisterAdmin)
	admins.GET("/me", admin, a.CurrentAdmin)

	router.GET("/api/dashboard/stats", admin, a.DashboardStats)

	files := router.Group("/api/admin/files", admin)
	files.POST("/upload-image", a.UploadImage)
	files.POST("/upload-video", a.UploadVideo)
	files.GET("/list/:file_type", a.ListFiles)
	files.DELETE("/delete/:file_type/:filename", a.DeleteFile)
	files.PUT("/update-product-media/:product_id", a.UpdateProductMedia)

	return a.router
}

// handle registers a collection route with and without the trailing slash,
// so "/api/products" and "/api/products/" both resolve without a redirect.
func handle(g *gin.RouterGroup, method, path string, handlers ...gin.HandlerFunc) {
	g.Handle(method, path, handlers...)
	g.Handle(method, path+"/", handlers...)
}

// NewAPI builds the gin engine with logging, recovery, tracing, metrics,
// CORS and rate limiting.
//
// Parameters:
// - sf *storefront.Storefront: the service the handlers call.
//
// Returns:
// - *Api: the API; call Router to register the routes.
func NewAPI(sf *storefront.Storefront) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf := sf.Config()

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.MaxMultipartMemory = maxUploadMemory
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logrus.WithField("panic", recovered).Error("request panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}))
	r.Use(otelgin.Middleware(conf.ProjectName))
	r.Use(metrics.GinMiddleware())
	r.Use(middleware.CORS(conf.Server.AllowedOrigins))
	r.Use(middleware.RateLimitMiddleware(conf))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Resource not found"})
	})

	return &Api{storefront: sf, router: r, auth: middleware.NewAuthMiddleware(sf)}
}

func (a Api) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":  "Welcome to SmartTech E-commerce API",
		"product":  "Interactive Smart Board RK3588",
		"features": productFeatures,
		"contact":  "01678-134547",
	})
}

// Health is the liveness check. It does not touch the database.
func (a Api) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": a.storefront.Config().ProjectName})
}

// Ready reports whether the database answers.
func (a Api) Ready(c *gin.Context) {
	if err := a.storefront.Ping(c.Request.Context()); err != nil {
		logrus.WithError(err).Warn("readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// respondError writes err as {"detail": message} with the mapped status.
func respondError(c *gin.Context, err error) {
	status := apierror.MapErrorToHTTPStatus(err)
	if status == http.StatusUnauthorized {
		middleware.Unauthorized(c, apierror.MessageOf(err))
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": apierror.MessageOf(err)})
}

func invalidRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": err})
}

// bindJSON decodes the body; a malformed body is answered with a 422.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": name + " must be a positive integer"})
		return 0, false
	}
	return id, true
}

// pagination reads skip and limit, defaulting to the first hundred rows.
func pagination(c *gin.Context) (skip, limit int, ok bool) {
	skip, limit = 0, defaultPageLimit
	var err error
	if v := c.Query("skip"); v != "" {
		if skip, err = strconv.Atoi(v); err != nil || skip < 0 {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": "skip must be a non-negative integer"})
			return 0, 0, false
		}
	}
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 || limit > maxPageLimit {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": "limit must be between 1 and 1000"})
			return 0, 0, false
		}
	}
	return skip, limit, true
}
