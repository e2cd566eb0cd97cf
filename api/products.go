package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apimodel "github.com/smarttech/storefront/api/model"
)

// ListProducts handles GET /api/products.
func (a Api) ListProducts(c *gin.Context) {
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	products, err := a.storefront.ListProducts(c.Request.Context(), skip, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (a Api) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	product, err := a.storefront.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /api/products. Admin only.
func (a Api) CreateProduct(c *gin.Context) {
	var req apimodel.CreateProduct
	if !bindJSON(c, &req) {
		return
	}
	if err := req.ValidateCreateProduct(); err != nil {
		invalidRequest(c, err)
		return
	}

	product, err := a.storefront.CreateProduct(c.Request.Context(), req.ToProduct())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PUT /api/products/:id. Admin only.
func (a Api) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req apimodel.UpdateProduct
	if !bindJSON(c, &req) {
		return
	}
	if err := req.ValidateUpdateProduct(); err != nil {
		invalidRequest(c, err)
		return
	}

	product, err := a.storefront.UpdateProduct(c.Request.Context(), id, req.ToProductUpdate())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}
