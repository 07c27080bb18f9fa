package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/vietnam-explorer/api/internal/apperr"
	"github.com/vietnam-explorer/api/internal/dto"
	"github.com/vietnam-explorer/api/internal/entity"
)

// EntityExtractor returns labeled spans for an utterance. Extraction is
// advisory: implementations degrade to an empty slice on any failure.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) []entity.NamedEntity
}

// POISearcher finds points of interest around a coordinate.
type POISearcher interface {
	FindNearby(ctx context.Context, req dto.POIRequest) ([]entity.PointOfInterest, error)
}

// ChatService runs one conversation turn: parse, merge with history, decide,
// and either search or ask a clarifying question. All state lives in the
// request.
type ChatService struct {
	extractor EntityExtractor
	parser    *IntentParser
	resolver  *DialogueResolver
	policy    ClarificationPolicy
	pois      POISearcher
	log       *zap.Logger
}

// NewChatService wires the chat pipeline.
func NewChatService(extractor EntityExtractor, parser *IntentParser, resolver *DialogueResolver, pois POISearcher, log *zap.Logger) *ChatService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{
		extractor: extractor,
		parser:    parser,
		resolver:  resolver,
		pois:      pois,
		log:       log,
	}
}

// Chat processes one user message. Missing-information outcomes are normal
// responses with NeedsClarification set; an error is returned only for
// unexpected failures.
func (s *ChatService) Chat(ctx context.Context, req dto.ChatRequest) (dto.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)

	entities := s.extractor.Extract(ctx, message)
	parsed := s.parser.Parse(message, entities)
	intent := s.resolver.Resolve(ctx, message, parsed, req.ConversationHistory, req.CurrentLat, req.CurrentLng)

	s.log.Debug("resolved intent",
		zap.Any("location", intent.LocationName),
		zap.Any("radius_km", intent.RadiusKm),
		zap.Any("query", intent.Query),
		zap.Strings("missing_fields", intent.MissingFields))

	extracted := toExtractedEntities(intent)

	decision := s.policy.Decide(message, intent)
	if !decision.Search {
		return dto.ChatResponse{
			Message:            decision.Clarification,
			ExtractedEntities:  extracted,
			NeedsClarification: true,
		}, nil
	}

	// Invariant: the policy only approves a search with coordinates and a
	// radius in hand.
	poiReq := dto.POIRequest{
		Lat:     *intent.Lat,
		Lng:     *intent.Lng,
		RadiusM: int(*intent.RadiusKm * 1000),
	}
	if intent.Query != nil {
		poiReq.Query = *intent.Query
	}

	results, err := s.pois.FindNearby(ctx, poiReq)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return dto.ChatResponse{
				Message:            msgNothingFound,
				ExtractedEntities:  extracted,
				NeedsClarification: false,
				SearchResults:      []entity.PointOfInterest{},
			}, nil
		}
		return dto.ChatResponse{}, err
	}

	message = composeFoundMessage(intent, len(results))
	if decision.SearchAll {
		message = msgSearchAll + " " + message
	}

	return dto.ChatResponse{
		Message:            message,
		ExtractedEntities:  extracted,
		NeedsClarification: false,
		SearchResults:      results,
	}, nil
}

func composeFoundMessage(intent ResolvedIntent, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mình đã tìm thấy %d địa điểm", count)
	if intent.Query != nil {
		fmt.Fprintf(&b, " về '%s'", *intent.Query)
	}
	if intent.LocationName != nil {
		fmt.Fprintf(&b, " gần %s", *intent.LocationName)
	}
	fmt.Fprintf(&b, " trong bán kính %skm!", formatRadius(*intent.RadiusKm))
	return b.String()
}

// formatRadius renders whole-number radii with a trailing ".0" ("2.0km", not
// "2km"); the frontend matches on this form.
func formatRadius(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func toExtractedEntities(intent ResolvedIntent) *dto.ExtractedEntities {
	missing := intent.MissingFields
	if missing == nil {
		missing = []string{}
	}
	return &dto.ExtractedEntities{
		LocationName:  intent.LocationName,
		Lat:           intent.Lat,
		Lng:           intent.Lng,
		RadiusKm:      intent.RadiusKm,
		Query:         intent.Query,
		MissingFields: missing,
	}
}
