package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apimodel "github.com/smarttech/storefront/api/model"
	"github.com/smarttech/storefront/model"
)

// CreateOrder is public: customers order without an account.
func (a Api) CreateOrder(c *gin.Context) {
	var req apimodel.CreateOrder
	if !bindJSON(c, &req) {
		return
	}
	if err := req.ValidateCreateOrder(); err != nil {
		invalidRequest(c, err)
		return
	}

	customer, order := req.ToOrder()
	created, err := a.storefront.CreateOrder(c.Request.Context(), customer, order)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

// ListOrders handles GET /api/orders with skip, limit and status query parameters.
func (a Api) ListOrders(c *gin.Context) {
	skip, limit, ok := pagination(c)
	if !ok {
		return
	}
	orders, err := a.storefront.ListOrders(c.Request.Context(), model.OrderFilter{
		Skip:   skip,
		Limit:  limit,
		Status: model.OrderStatus(c.Query("status")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (a Api) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := a.storefront.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrder handles PUT /api/orders/:id.
func (a Api) UpdateOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req apimodel.UpdateOrder
	if !bindJSON(c, &req) {
		return
	}
	if err := req.ValidateUpdateOrder(); err != nil {
		invalidRequest(c, err)
		return
	}

	order, err := a.storefront.UpdateOrder(c.Request.Context(), id, req.ToOrderUpdate())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/orders/:id.
func (a Api) DeleteOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := a.storefront.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Order #%d has been successfully deleted", id)})
}
