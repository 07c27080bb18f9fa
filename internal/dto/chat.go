package dto

import "github.com/vietnam-explorer/api/internal/entity"

// ChatMessage is a single turn in the conversation history.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload for the chatbot endpoint. Conversation state is
// owned by the caller and replayed on every request.
type ChatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []ChatMessage `json:"conversation_history,omitempty"`
	CurrentLat          *float64      `json:"current_lat,omitempty"`
	CurrentLng          *float64      `json:"current_lng,omitempty"`
}

// ExtractedEntities echoes what the bot understood from the message.
type ExtractedEntities struct {
	LocationName  *string  `json:"location_name"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
	RadiusKm      *float64 `json:"radius_km"`
	Query         *string  `json:"query"`
	MissingFields []string `json:"missing_fields"`
}

// ChatResponse is the chatbot reply. SearchResults stays un-omitted so a
// search that matched nothing serializes as [] while a clarification turn
// serializes as null.
type ChatResponse struct {
	Message            string                   `json:"message"`
	ExtractedEntities  *ExtractedEntities       `json:"extracted_entities,omitempty"`
	NeedsClarification bool                     `json:"needs_clarification"`
	SearchResults      []entity.PointOfInterest `json:"search_results"`
}
