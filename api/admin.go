package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apimodel "github.com/smarttech/storefront/api/model"
	"github.com/smarttech/storefront/api/middleware"
)

// Login exchanges username and password for a bearer token.
func (a Api) Login(c *gin.Context) {
	var req apimodel.AdminLogin
	if !bindJSON(c, &req) {
		return
	}
	if err := req.ValidateAdminLogin(); err != nil {
		invalidRequest(c, err)
		return
	}

	token, err := a.storefront.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// RegisterAdmin creates an admin account.
func (a Api) RegisterAdmin(c *gin.Context) {
	var req apimodel.AdminCreate
	if !bindJSON(c, &req) {
		return
	}
	if err := req.ValidateAdminCreate(); err != nil {
		invalidRequest(c, err)
		return
	}

	admin, err := a.storefront.RegisterAdmin(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, admin)
}

func (a Api) CurrentAdmin(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentAdmin(c))
}

// DashboardStats handles GET /api/dashboard/stats.
func (a Api) DashboardStats(c *gin.Context) {
	stats, err := a.storefront.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
