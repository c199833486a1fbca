package router

import (
	"net/http"

	"fairFin/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetReviewRoutes(api *echo.Group, handler *rest.ReviewHandler, authRequired echo.MiddlewareFunc, reviewerOnly echo.MiddlewareFunc) {
	reviews := api.Group("/reviews", authRequired, reviewerOnly)

	reviews.POST("", handler.Review)
	reviews.POST("/score", handler.Score)
	reviews.POST("/explain", handler.Explain)
	reviews.POST("/explain/chart", handler.ExplainChart)
}

func SetArtifactAdminRoutes(api *echo.Group, handler *rest.ArtifactAdminHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin/artifacts", authRequired, adminOnly)

	admin.GET("", handler.GetArtifacts)
	admin.POST("/reload", handler.Reload)
}

func SetOpsRoutes(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
