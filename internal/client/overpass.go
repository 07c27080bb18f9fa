package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"

	"github.com/vietnam-explorer/api/internal/apperr"
	"github.com/vietnam-explorer/api/internal/dto"
	"github.com/vietnam-explorer/api/internal/entity"
)

const (
	poiQueryTimeout = 30 * time.Second
	maxPOIResults   = 5
	// Candidates closer than this (degrees, roughly 100m) to an already
	// accepted result are duplicates; the first seen wins.
	dedupBoxDegrees = 0.001

	phoneRegion = "VN"
)

// Amenity catalog queried for nearby POIs, one sub-query per type. Result
// order follows this catalog.
var amenityTypes = []string{
	"bank", "restaurant", "cafe", "hotel", "museum", "park",
	"library", "hospital", "pharmacy", "supermarket", "shop",
	"cinema", "temple", "church", "school",
}

// OverpassClient searches OpenStreetMap data for points of interest through an
// Overpass API endpoint.
type OverpassClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	log        *zap.Logger
}

// NewOverpassClient builds the POI search client.
func NewOverpassClient(httpClient *http.Client, baseURL, userAgent string, log *zap.Logger) *OverpassClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OverpassClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		log:        log,
	}
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FindNearby accumulates POIs across the amenity catalog, deduplicates them by
// proximity, applies the optional text filter, and returns at most five
// results. It fails with KindNotFound when nothing survives. Individual
// sub-query failures are skipped, not surfaced.
func (c *OverpassClient) FindNearby(ctx context.Context, req dto.POIRequest) ([]entity.PointOfInterest, error) {
	var pois []entity.PointOfInterest

	for _, amenity := range amenityTypes {
		elements, err := c.queryAmenity(ctx, req, amenity)
		if err != nil {
			c.log.Warn("overpass sub-query failed", zap.String("amenity", amenity), zap.Error(err))
			continue
		}

		for _, el := range elements {
			lat, lng, ok := el.coordinates()
			if !ok {
				continue
			}

			name := firstNonEmpty(
				el.Tags["name"],
				el.Tags["operator"],
				el.Tags["brand"],
				el.Tags["amenity"],
				amenity,
			)
			// A name equal to the raw category label is a placeholder, not a
			// real name.
			if name == "" || name == amenity {
				continue
			}

			if isDuplicate(pois, lat, lng) {
				continue
			}

			pois = append(pois, entity.PointOfInterest{
				Name:        name,
				Lat:         lat,
				Lng:         lng,
				Description: describeElement(el.Tags, amenity),
				Type:        capitalize(amenity),
			})
		}
	}

	if req.Query != "" {
		pois = filterByQuery(pois, req.Query)
	}

	if len(pois) == 0 {
		return nil, apperr.New(apperr.KindNotFound, "no points of interest found in this area")
	}

	if len(pois) > maxPOIResults {
		pois = pois[:maxPOIResults]
	}
	return pois, nil
}

func (c *OverpassClient) queryAmenity(ctx context.Context, req dto.POIRequest, amenity string) ([]overpassElement, error) {
	query := fmt.Sprintf(
		"[out:json][timeout:30];\nnwr(around:%d,%s,%s)[\"amenity\"=\"%s\"];\nout center;",
		req.RadiusM, formatCoord(req.Lat), formatCoord(req.Lng), amenity,
	)
	form := url.Values{"data": {query}}

	ctx, cancel := context.WithTimeout(ctx, poiQueryTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError("overpass request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("overpass returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload overpassResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return payload.Elements, nil
}

func (el overpassElement) coordinates() (float64, float64, bool) {
	if el.Center != nil {
		return el.Center.Lat, el.Center.Lon, true
	}
	if el.Lat != nil && el.Lon != nil {
		return *el.Lat, *el.Lon, true
	}
	return 0, 0, false
}

func describeElement(tags map[string]string, amenity string) string {
	desc := firstNonEmpty(
		tags["addr:full"],
		tags["addr:street"],
		tags["addr:housename"],
		tags["description"],
		tags["website"],
	)
	if desc != "" {
		return desc
	}
	if phone := tags["phone"]; phone != "" {
		return formatPhone(phone)
	}
	return fmt.Sprintf("A %s in the area", amenity)
}

// formatPhone normalizes an OSM phone tag to international format; malformed
// numbers pass through as-is.
func formatPhone(raw string) string {
	number, err := phonenumbers.Parse(raw, phoneRegion)
	if err != nil {
		return raw
	}
	if !phonenumbers.IsValidNumber(number) {
		return raw
	}
	return phonenumbers.Format(number, phonenumbers.INTERNATIONAL)
}

func isDuplicate(pois []entity.PointOfInterest, lat, lng float64) bool {
	for _, p := range pois {
		if math.Abs(p.Lat-lat) < dedupBoxDegrees && math.Abs(p.Lng-lng) < dedupBoxDegrees {
			return true
		}
	}
	return false
}

func filterByQuery(pois []entity.PointOfInterest, query string) []entity.PointOfInterest {
	needle := strings.ToLower(query)
	filtered := pois[:0]
	for _, p := range pois {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
