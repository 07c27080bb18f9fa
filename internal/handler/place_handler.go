package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vietnam-explorer/api/internal/apperr"
	"github.com/vietnam-explorer/api/internal/dto"
	"github.com/vietnam-explorer/api/internal/middleware"
	"github.com/vietnam-explorer/api/internal/service"
)

// PlaceHandler exposes direct geocoding and POI search, bypassing the chat
// pipeline.
type PlaceHandler struct {
	geocoder service.Geocoder
	pois     service.POISearcher
	log      *zap.Logger
}

// NewPlaceHandler constructs a PlaceHandler.
func NewPlaceHandler(geocoder service.Geocoder, pois service.POISearcher, log *zap.Logger) *PlaceHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlaceHandler{geocoder: geocoder, pois: pois, log: log}
}

// Geocode handles POST /place/geocode requests.
func (h *PlaceHandler) Geocode(c echo.Context) error {
	var req dto.GeocodeRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.PlaceName = strings.TrimSpace(req.PlaceName)
	if req.PlaceName == "" {
		return Error(c, http.StatusBadRequest, "place_name is required")
	}

	location, err := h.geocoder.Geocode(c.Request().Context(), req.PlaceName)
	if err != nil {
		return h.errorResponse(c, err, "unable to geocode place")
	}

	return Success(c, http.StatusOK, "place resolved", location)
}

// Search handles POST /place/poi requests.
func (h *PlaceHandler) Search(c echo.Context) error {
	var req dto.POIRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	if req.RadiusM <= 0 {
		return Error(c, http.StatusBadRequest, "radius_m must be positive")
	}

	results, err := h.pois.FindNearby(c.Request().Context(), req)
	if err != nil {
		return h.errorResponse(c, err, "unable to search points of interest")
	}

	return Success(c, http.StatusOK, "points of interest found", results)
}

func (h *PlaceHandler) errorResponse(c echo.Context, err error, fallback string) error {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return Error(c, http.StatusNotFound, "no matching place found")
	case apperr.KindTimeout:
		return Error(c, http.StatusGatewayTimeout, "upstream service timed out")
	case apperr.KindUnavailable:
		return Error(c, http.StatusServiceUnavailable, "upstream service unavailable")
	default:
		h.log.Error("place lookup failed",
			zap.String("request_id", middleware.RequestIDFromContext(c)),
			zap.Error(err))
		return Error(c, http.StatusInternalServerError, fallback)
	}
}
