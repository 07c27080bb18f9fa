package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/vietnam-explorer/api/internal/dto"
	"github.com/vietnam-explorer/api/internal/entity"
)

// CurrentLocationLabel is the location name reported when the caller's own
// coordinates are used.
const CurrentLocationLabel = "vị trí hiện tại"

// Missing-field names reported in ResolvedIntent.MissingFields.
const (
	MissingLocation        = "location"
	MissingCurrentLocation = "current_location"
	MissingRadius          = "radius"
)

// ResolvedIntent is a PartialIntent merged with conversation history and the
// caller's coordinates. It lives for one request only.
type ResolvedIntent struct {
	LocationName  *string
	Lat           *float64
	Lng           *float64
	RadiusKm      *float64
	Query         *string
	MissingFields []string
}

// Geocoder resolves a place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, placeName string) (entity.Location, error)
}

// Utterance fragments that refer to the speaker's current position.
var selfReferencePhrases = []string{
	"hiện tại",
	"đang ở đây",
	"vị trí hiện tại",
	"chỗ này",
	"chỗ mình",
	"địa chỉ hiện tại",
	"của mình",
	"địa chỉ của mình",
	"nơi này",
	"nơi mình đang",
	"chỗ tôi",
	"ở đây",
}

// DialogueResolver merges the current turn with prior turns and the caller's
// coordinates into a fully- or partially-resolved search intent.
type DialogueResolver struct {
	parser   *IntentParser
	geocoder Geocoder
	log      *zap.Logger
}

// NewDialogueResolver wires the resolver.
func NewDialogueResolver(parser *IntentParser, geocoder Geocoder, log *zap.Logger) *DialogueResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &DialogueResolver{parser: parser, geocoder: geocoder, log: log}
}

// Resolve fills the gaps in the current turn's intent from history
// (most-recent user turn first; the current turn always wins), then resolves
// coordinates. Fields that no source could supply are listed in
// MissingFields.
func (r *DialogueResolver) Resolve(ctx context.Context, message string, current PartialIntent, history []dto.ChatMessage, currentLat, currentLng *float64) ResolvedIntent {
	// Each field is merged independently: a turn that supplied only a radius
	// must not stop the history scan for the location.
	if current.RadiusKm == nil {
		if prev := r.radiusFromHistory(history); prev != nil {
			current.RadiusKm = prev
		}
	}
	if current.Query == nil {
		if prev := r.queryFromHistory(history); prev != nil {
			current.Query = prev
		}
	}
	if current.LocationName == nil {
		if prev := r.locationFromHistory(history); prev != nil {
			current.LocationName = prev
		}
	}

	resolved := ResolvedIntent{
		LocationName: current.LocationName,
		RadiusKm:     current.RadiusKm,
		Query:        current.Query,
	}

	hasCallerCoords := currentLat != nil && currentLng != nil

	switch {
	case current.LocationName != nil:
		location, err := r.geocoder.Geocode(ctx, *current.LocationName)
		if err == nil {
			resolved.Lat = &location.Lat
			resolved.Lng = &location.Lng
		} else if hasCallerCoords {
			r.log.Warn("geocoding failed, falling back to caller coordinates",
				zap.String("place", *current.LocationName), zap.Error(err))
			resolved.Lat = currentLat
			resolved.Lng = currentLng
		} else {
			r.log.Warn("geocoding failed with no fallback coordinates",
				zap.String("place", *current.LocationName), zap.Error(err))
			resolved.MissingFields = append(resolved.MissingFields, MissingLocation)
		}
	case matchesSelfReference(message):
		if hasCallerCoords {
			resolved.Lat = currentLat
			resolved.Lng = currentLng
			label := CurrentLocationLabel
			resolved.LocationName = &label
		} else {
			resolved.MissingFields = append(resolved.MissingFields, MissingCurrentLocation)
		}
	case hasCallerCoords:
		// Default-to-current-location policy: no place was named but we know
		// where the caller is.
		resolved.Lat = currentLat
		resolved.Lng = currentLng
		label := CurrentLocationLabel
		resolved.LocationName = &label
	default:
		resolved.MissingFields = append(resolved.MissingFields, MissingLocation)
	}

	if resolved.RadiusKm == nil {
		resolved.MissingFields = append(resolved.MissingFields, MissingRadius)
	}

	return resolved
}

func (r *DialogueResolver) radiusFromHistory(history []dto.ChatMessage) *float64 {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != "user" {
			continue
		}
		if prev := r.parser.Parse(history[i].Content, nil); prev.RadiusKm != nil {
			return prev.RadiusKm
		}
	}
	return nil
}

func (r *DialogueResolver) queryFromHistory(history []dto.ChatMessage) *string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != "user" {
			continue
		}
		if prev := r.parser.Parse(history[i].Content, nil); prev.Query != nil {
			return prev.Query
		}
	}
	return nil
}

func (r *DialogueResolver) locationFromHistory(history []dto.ChatMessage) *string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != "user" {
			continue
		}
		if prev := r.parser.Parse(history[i].Content, nil); prev.LocationName != nil {
			return prev.LocationName
		}
	}
	return nil
}

func matchesSelfReference(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range selfReferencePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
