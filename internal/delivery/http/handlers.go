package http

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/smartcity/traffic-analytics/internal/analytics/cluster"
	"github.com/smartcity/traffic-analytics/internal/analytics/correlation"
	"github.com/smartcity/traffic-analytics/internal/analytics/temporal"
	"github.com/smartcity/traffic-analytics/internal/logging"
	"github.com/smartcity/traffic-analytics/internal/service"
)

// MIMEGeoJSON is the media type of GeoJSON responses
const MIMEGeoJSON = "application/geo+json"

// Handler contains all HTTP handlers
type Handler struct {
	analyticsSvc *service.AnalyticsService
	log          zerolog.Logger
}

// NewHandler creates a new handler
func NewHandler(analyticsSvc *service.AnalyticsService) *Handler {
	return &Handler{
		analyticsSvc: analyticsSvc,
		log:          logging.WithComponent("http"),
	}
}

type hotspotsQuery struct {
	MinThreshold int `query:"minThreshold" validate:"gte=0,lte=10000"`
	Days         int `query:"days" validate:"gte=0,lte=3650"`
}

type zonesQuery struct {
	K         int    `query:"k" validate:"gte=0,lte=100"`
	Algorithm string `query:"algorithm"`
	Days      int    `query:"days" validate:"gte=0,lte=3650"`
}

type temporalQuery struct {
	Dimensions string `query:"dimensions"`
	WindowDays int    `query:"windowDays" validate:"gte=0,lte=3650"`
}

type correlationQuery struct {
	Days int `query:"days" validate:"gte=0,lte=3650"`
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	status, code := "ok", fiber.StatusOK
	if err := h.analyticsSvc.Health(c.Context()); err != nil {
		h.log.Warn().Err(err).Msg("health check failed")
		status, code = "degraded", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"service": "traffic-analytics",
		"version": "1.0.0",
	})
}

// GetHotspots returns cameras ranked by accident risk
func (h *Handler) GetHotspots(c *fiber.Ctx) error {
	var q hotspotsQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	data, err := h.analyticsSvc.Hotspots(c.Context(), service.HotspotQuery{
		MinThreshold: q.MinThreshold,
		Days:         q.Days,
	})
	if err != nil {
		return h.fail(err, "Failed to analyze hotspots")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

// GetZones returns spatial zones clustered from station readings
func (h *Handler) GetZones(c *fiber.Ctx) error {
	var q zonesQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	data, err := h.analyticsSvc.Zones(c.Context(), q.toService())
	if err != nil {
		return h.fail(err, "Failed to cluster zones")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

// GetZonesGeoJSON returns the zones as a GeoJSON feature collection
func (h *Handler) GetZonesGeoJSON(c *fiber.Ctx) error {
	var q zonesQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	fc, err := h.analyticsSvc.ZonesGeoJSON(c.Context(), q.toService())
	if err != nil {
		return h.fail(err, "Failed to cluster zones")
	}

	return h.sendGeoJSON(c, fc)
}

// GetTemporal returns hour and day-of-week incident histograms
func (h *Handler) GetTemporal(c *fiber.Ctx) error {
	var q temporalQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	data, err := h.analyticsSvc.Temporal(c.Context(), service.TemporalQuery{
		Dimensions: splitList(q.Dimensions),
		WindowDays: q.WindowDays,
	})
	if err != nil {
		return h.fail(err, "Failed to build temporal histograms")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// GetCorrelation returns how incidents line up with recurring traffic patterns
func (h *Handler) GetCorrelation(c *fiber.Ctx) error {
	var q correlationQuery
	if err := parseQuery(c, &q); err != nil {
		return err
	}

	data, err := h.analyticsSvc.Correlation(c.Context(), q.Days)
	if err != nil {
		return h.fail(err, "Failed to correlate incidents")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// GetPatternAreasGeoJSON returns the area covered by each pattern's cameras
func (h *Handler) GetPatternAreasGeoJSON(c *fiber.Ctx) error {
	fc, err := h.analyticsSvc.PatternAreasGeoJSON(c.Context())
	if err != nil {
		return h.fail(err, "Failed to compute pattern areas")
	}

	return h.sendGeoJSON(c, fc)
}

func (h *Handler) sendGeoJSON(c *fiber.Ctx, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return h.fail(err, "Failed to encode GeoJSON")
	}
	c.Set(fiber.HeaderContentType, MIMEGeoJSON)
	return c.Send(raw)
}

// fail maps analytics errors onto HTTP errors
func (h *Handler) fail(err error, message string) error {
	switch {
	case errors.Is(err, cluster.ErrUnsupportedAlgorithm),
		errors.Is(err, cluster.ErrInvalidK),
		errors.Is(err, temporal.ErrUnknownDimension):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, correlation.ErrInvalidTimeRange):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.log.Warn().Err(err).Msg(message)
		return fiber.NewError(fiber.StatusGatewayTimeout, "Analytics timed out")
	}

	h.log.Error().Err(err).Msg(message)
	return fiber.NewError(fiber.StatusInternalServerError, message)
}

func (q zonesQuery) toService() service.ZoneQuery {
	return service.ZoneQuery{K: q.K, Algorithm: q.Algorithm, Days: q.Days}
}

// splitList splits a comma separated query value, dropping empty items
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
