package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vietnam-explorer/api/internal/apperr"
	"github.com/vietnam-explorer/api/internal/entity"
)

const geocodeTimeout = 60 * time.Second

// NominatimClient geocodes place names against a Nominatim instance. Searches
// are scoped to Vietnam and paced to one request per second per the Nominatim
// usage policy.
type NominatimClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	log        *zap.Logger
}

// NewNominatimClient builds the geocoding client.
func NewNominatimClient(httpClient *http.Client, baseURL, userAgent string, log *zap.Logger) *NominatimClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &NominatimClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		log:        log,
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves a place name to coordinates. It fails with KindNotFound
// when the provider has no match, KindTimeout after the geocode deadline, and
// KindUnavailable on connectivity trouble.
func (c *NominatimClient) Geocode(ctx context.Context, placeName string) (entity.Location, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return entity.Location{}, apperr.Wrap(apperr.KindUnavailable, "geocoding interrupted", err)
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s, Vietnam", placeName))
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")

	ctx, cancel := context.WithTimeout(ctx, geocodeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return entity.Location{}, apperr.Wrap(apperr.KindInternal, "building geocode request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entity.Location{}, classifyTransportError("geocoding request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusGatewayTimeout:
		return entity.Location{}, apperr.New(apperr.KindUnavailable, "unable to connect to the geocoding server")
	case resp.StatusCode != http.StatusOK:
		return entity.Location{}, apperr.New(apperr.KindInternal, fmt.Sprintf("geocoding returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return entity.Location{}, classifyTransportError("reading geocode response", err)
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return entity.Location{}, apperr.Wrap(apperr.KindInternal, "malformed geocode response", err)
	}
	if len(results) == 0 {
		return entity.Location{}, apperr.New(apperr.KindNotFound, "no geocoding result for "+placeName)
	}

	item := results[0]
	lat, err := strconv.ParseFloat(item.Lat, 64)
	if err != nil {
		return entity.Location{}, apperr.Wrap(apperr.KindInternal, "malformed latitude in geocode response", err)
	}
	lng, err := strconv.ParseFloat(item.Lon, 64)
	if err != nil {
		return entity.Location{}, apperr.Wrap(apperr.KindInternal, "malformed longitude in geocode response", err)
	}

	c.log.Debug("geocoded place",
		zap.String("query", placeName),
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
		zap.String("display_name", item.DisplayName))

	return entity.Location{Name: placeName, Lat: lat, Lng: lng}, nil
}

// classifyTransportError maps timeouts to KindTimeout and everything else to
// KindUnavailable.
func classifyTransportError(message string, err error) *apperr.Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperr.Wrap(apperr.KindTimeout, message, err)
	}
	return apperr.Wrap(apperr.KindUnavailable, message, err)
}
