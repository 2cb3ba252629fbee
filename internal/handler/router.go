package handler

import (
	"github.com/gin-gonic/gin"
)

// Middlewares are the per-group handlers installed by RegisterRoutes
type Middlewares struct {
	// Auth requires a valid token
	Auth gin.HandlerFunc
	// OptionalAuth reads a token when one is sent
	OptionalAuth gin.HandlerFunc
	// Policy gates admin routes by role
	Policy gin.HandlerFunc
}

// RegisterRoutes mounts the health probe, the admin API and the public API
func RegisterRoutes(router *gin.Engine, tenants *TenantHandler, health *HealthHandler, mw Middlewares) {
	router.GET("/health", health.Health)

	admin := router.Group("/api/v1/tenants")
	for _, m := range []gin.HandlerFunc{mw.Auth, mw.Policy} {
		if m != nil {
			admin.Use(m)
		}
	}
	{
		admin.POST("", tenants.Create)
		admin.GET("", tenants.List)
		admin.GET("/:id", tenants.GetByID)
		admin.PUT("/:id", tenants.Update)
	}

	public := router.Group("/api/v1/tenants/public")
	if mw.OptionalAuth != nil {
		public.Use(mw.OptionalAuth)
	}
	{
		public.GET("/current", tenants.GetCurrent)
		public.GET("/single", tenants.GetSingleDomain)
		public.GET("/id/:id", tenants.GetPublicByID)
		public.GET("/:subdomain", tenants.GetBySubdomain)
	}
}
