package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/crte-ams/ticket-service/api"
	"github.com/crte-ams/ticket-service/internal/handler"
	"github.com/crte-ams/ticket-service/internal/middleware"
)

const (
	PathHealth  = "/health"
	PathReady   = "/ready"
	PathMetrics = "/metrics"
	PathSwagger = "/swagger"
	PathAPIV1   = "/api/v1"
)

// Deps are the handlers and middleware the router mounts.
type Deps struct {
	Health  *handler.HealthHandler
	Tickets *handler.TicketHandler
	Profile *handler.ProfileHandler
	Stats   *handler.StatsHandler
	Auth    gin.HandlerFunc
	Log     *zap.Logger
}

func New(d Deps) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log), middleware.Metrics())

	r.GET(PathHealth, d.Health.Health)
	r.GET(PathReady, d.Health.Ready)
	r.GET(PathMetrics, gin.WrapH(promhttp.Handler()))
	r.GET(PathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, PathSwagger+"/") })
	r.GET(PathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = PathSwagger + "/index.html"
			c.Request.RequestURI = PathSwagger + "/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(PathSwagger+"/openapi.json"))(c)
	})

	v1 := r.Group(PathAPIV1, d.Auth)
	{
		v1.GET("/me", d.Profile.Me)
		v1.POST("/tickets", d.Tickets.Create)
		v1.GET("/tickets/mine", d.Tickets.Mine)
	}

	admin := v1.Group("", middleware.RequireAdmin())
	{
		admin.GET("/tickets", d.Tickets.List)
		admin.GET("/tickets/:id", d.Tickets.Get)
		admin.PATCH("/tickets/:id", d.Tickets.Update)
		admin.POST("/tickets/:id/assign", d.Tickets.Assign)
		admin.POST("/tickets/:id/cancel", d.Tickets.Cancel)

		admin.GET("/users", d.Profile.List)
		admin.PUT("/users/:id/admin", d.Profile.SetAdmin)

		admin.GET("/stats/technicians", d.Stats.Technicians)
		admin.GET("/stats/technicians/:name", d.Stats.Technician)
		admin.GET("/stats/technicians/:name/monthly", d.Stats.Monthly)
		admin.GET("/stats/me", d.Stats.Me)
		admin.GET("/stats/me/monthly", d.Stats.MeMonthly)
	}

	return r
}
