package service

import (
	"fmt"
	"strings"
)

// Fixed reply templates. The Vietnamese wording is part of the bot's contract
// with its frontend.
const (
	msgAskLocation        = "Bạn có muốn gần chỗ nào không hay là địa chỉ hiện tại của bạn? Vui lòng cho Mình biết tên địa điểm (ví dụ: HCMUS, Quận 5, TP.HCM)"
	msgAskCurrentLocation = "Mình cần biết vị trí hiện tại của bạn. Bạn có thể cho mình biết tên địa điểm không?"
	msgAskRadius          = "Bạn muốn tìm trong bán kính bao nhiêu? (ví dụ: 5km hoặc 500m)"
	msgAskQuery           = "Bạn có yêu cầu gì về địa điểm không hay cái nào cũng được?"
	msgSearchAll          = "Bạn không có yêu cầu cụ thể về loại địa điểm thì mình sẽ tìm tất cả các điểm đáng chú ý trong khu vực."
	msgNothingFound       = "Xin lỗi, mình không tìm thấy địa điểm nào phù hợp với yêu cầu của bạn."
)

// Utterances that mean "anything is fine" and turn a missing query into an
// explicit search-everything signal.
var indifferencePhrases = []string{
	"cái nào cũng được",
	"gì cũng được",
	"tất cả",
	"bất kỳ",
	"không có yêu cầu",
	"không yêu cầu gì",
}

// Decision is the outcome of the clarification policy for one turn.
type Decision struct {
	// Search is true when the intent is complete enough to query for POIs.
	Search bool
	// SearchAll marks an indifferent search: the query is empty on purpose
	// and the reply leads with an acknowledgment instead of a question.
	SearchAll bool
	// Clarification holds the single question to ask when Search is false.
	Clarification string
}

// ClarificationPolicy decides between searching and asking exactly one
// clarifying question.
type ClarificationPolicy struct{}

// Decide applies the fixed priority: location gap, then current-location gap,
// then radius gap, then a category question when nothing is missing but the
// user neither named a category nor signalled indifference.
func (ClarificationPolicy) Decide(message string, intent ResolvedIntent) Decision {
	ready := intent.Lat != nil && intent.Lng != nil && intent.RadiusKm != nil

	if ready {
		if intent.Query != nil {
			return Decision{Search: true}
		}
		if matchesIndifference(message) {
			return Decision{Search: true, SearchAll: true}
		}
		return Decision{Clarification: msgAskQuery}
	}

	if hasMissing(intent, MissingLocation) {
		return Decision{Clarification: msgAskLocation}
	}
	if hasMissing(intent, MissingCurrentLocation) {
		return Decision{Clarification: msgAskCurrentLocation}
	}
	if hasMissing(intent, MissingRadius) {
		msg := msgAskRadius
		if intent.Query != nil {
			msg += fmt.Sprintf(" để tìm %s", *intent.Query)
		}
		return Decision{Clarification: msg}
	}

	return Decision{Clarification: msgAskQuery}
}

func hasMissing(intent ResolvedIntent, field string) bool {
	for _, f := range intent.MissingFields {
		if f == field {
			return true
		}
	}
	return false
}

func matchesIndifference(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range indifferencePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
