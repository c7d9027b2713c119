package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/smartcity/traffic-analytics/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, analyticsSvc *service.AnalyticsService) {
	handler := NewHandler(analyticsSvc)

	// Health check
	app.Get("/health", handler.HealthCheck)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		analytics := api.Group("/analytics")
		analytics.Get("/hotspots", handler.GetHotspots)
		analytics.Get("/zones", handler.GetZones)
		analytics.Get("/zones/geojson", handler.GetZonesGeoJSON)
		analytics.Get("/temporal", handler.GetTemporal)
		analytics.Get("/correlation", handler.GetCorrelation)
		analytics.Get("/patterns/geojson", handler.GetPatternAreasGeoJSON)
	}
}
