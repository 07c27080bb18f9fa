package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vietnam-explorer/api/internal/apperr"
	"github.com/vietnam-explorer/api/internal/dto"
	"github.com/vietnam-explorer/api/internal/entity"
	"github.com/vietnam-explorer/api/internal/service"
)

type extractorStub struct {
	entities []entity.NamedEntity
}

func (s *extractorStub) Extract(ctx context.Context, text string) []entity.NamedEntity {
	return s.entities
}

type geocoderStub struct {
	location entity.Location
	err      error
}

func (s *geocoderStub) Geocode(ctx context.Context, placeName string) (entity.Location, error) {
	return s.location, s.err
}

type poiStub struct {
	results []entity.PointOfInterest
	err     error
	lastReq dto.POIRequest
}

func (s *poiStub) FindNearby(ctx context.Context, req dto.POIRequest) ([]entity.PointOfInterest, error) {
	s.lastReq = req
	return s.results, s.err
}

func newChatHandler(geocoder *geocoderStub, pois *poiStub) *ChatHandler {
	parser := service.NewIntentParser()
	resolver := service.NewDialogueResolver(parser, geocoder, nil)
	chat := service.NewChatService(&extractorStub{}, parser, resolver, pois, nil)
	return NewChatHandler(chat, nil)
}

func postJSON(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/ai/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		t.Fatalf("expected handler to write response, got %v", err)
	}
	return rec
}

func TestChatHandler_EmptyMessage(t *testing.T) {
	h := newChatHandler(&geocoderStub{}, &poiStub{})
	rec := postJSON(t, h.Chat, `{"message":"   "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected empty input to flow through the pipeline, got %d", rec.Code)
	}

	var resp dto.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.NeedsClarification {
		t.Fatalf("expected a clarifying question for an empty message, got %q", resp.Message)
	}
}

func TestChatHandler_Clarification(t *testing.T) {
	h := newChatHandler(&geocoderStub{}, &poiStub{})
	rec := postJSON(t, h.Chat, `{"message":"tìm quán cà phê"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.NeedsClarification {
		t.Fatalf("expected a clarifying question, got %q", resp.Message)
	}
}

func TestChatHandler_Search(t *testing.T) {
	geocoder := &geocoderStub{location: entity.Location{Name: "Quận 5", Lat: 10.76, Lng: 106.68}}
	pois := &poiStub{results: []entity.PointOfInterest{
		{Name: "Cà phê Mười", Lat: 10.761, Lng: 106.681, Type: "cafe"},
	}}
	h := newChatHandler(geocoder, pois)

	rec := postJSON(t, h.Chat, `{"message":"tìm quán cà phê ở Quận 5, trong bán kính 2km"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.NeedsClarification {
		t.Fatalf("expected search results, got clarification %q", resp.Message)
	}
	if len(resp.SearchResults) != 1 {
		t.Fatalf("expected one result, got %d", len(resp.SearchResults))
	}
	if pois.lastReq.RadiusM != 2000 {
		t.Fatalf("expected radius 2000m, got %d", pois.lastReq.RadiusM)
	}
}

func TestChatHandler_NothingFound(t *testing.T) {
	geocoder := &geocoderStub{location: entity.Location{Name: "Quận 5", Lat: 10.76, Lng: 106.68}}
	pois := &poiStub{err: apperr.New(apperr.KindNotFound, "no places found")}
	h := newChatHandler(geocoder, pois)

	rec := postJSON(t, h.Chat, `{"message":"tìm quán cà phê ở Quận 5, trong bán kính 2km"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.NeedsClarification {
		t.Fatalf("not-found must not ask for clarification")
	}
	if len(resp.SearchResults) != 0 {
		t.Fatalf("expected empty results, got %d", len(resp.SearchResults))
	}
	// A searched-but-empty turn serializes as [], not null.
	if !strings.Contains(rec.Body.String(), `"search_results":[]`) {
		t.Fatalf("expected empty search_results array on the wire, got %s", rec.Body.String())
	}
}

func TestChatHandler_InternalError(t *testing.T) {
	geocoder := &geocoderStub{location: entity.Location{Name: "Quận 5", Lat: 10.76, Lng: 106.68}}
	pois := &poiStub{err: errors.New("boom")}
	h := newChatHandler(geocoder, pois)

	rec := postJSON(t, h.Chat, `{"message":"tìm quán cà phê ở Quận 5, trong bán kính 2km"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var envelope APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	// The envelope carries the underlying failure, not a canned string.
	if envelope.Message != "boom" {
		t.Fatalf("expected underlying error in envelope, got %q", envelope.Message)
	}
}
