package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vietnam-explorer/api/internal/entity"
)

// PartialIntent is the parse result of a single utterance. A nil field means
// the utterance said nothing about it.
type PartialIntent struct {
	LocationName *string
	RadiusKm     *float64
	Query        *string
}

// radiusRule pairs a pattern with the factor converting its captured number to
// kilometres. Rules are tried in order; the first accepted match wins.
type radiusRule struct {
	re         *regexp.Regexp
	multiplier float64
	// meterUnit marks patterns whose unit is a bare "m"; a match directly
	// followed by a kilometre unit is rejected so "5" in "5km" is never read
	// as metres.
	meterUnit bool
}

var radiusRules = []radiusRule{
	{regexp.MustCompile(`(?i)(\d+)\s*m(?:et)?(?:er)?`), 0.001, true},
	{regexp.MustCompile(`(?i)(\d+)\s*km`), 1, false},
	{regexp.MustCompile(`(?i)trong\s+(?:khoảng\s+)?(\d+)\s*m(?:et)?(?:er)?`), 0.001, true},
	{regexp.MustCompile(`(?i)trong\s+(?:khoảng\s+)?(\d+)\s*km`), 1, false},
	{regexp.MustCompile(`(?i)bán\s+kính\s+(\d+)\s*m(?:et)?(?:er)?`), 0.001, true},
	{regexp.MustCompile(`(?i)bán\s+kính\s+(\d+)\s*km`), 1, false},
	{regexp.MustCompile(`(?i)khoảng\s+(\d+)\s*m(?:et)?(?:er)?`), 0.001, true},
	{regexp.MustCompile(`(?i)khoảng\s+(\d+)\s*km`), 1, false},
	{regexp.MustCompile(`(?i)(\d+)\s*ki[lô]?[oô]?met`), 1, false},
}

var kmUnitFollows = regexp.MustCompile(`(?i)^\s*k`)

var locationRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:ở|tại|gần)\s+([^,]+?)(?:\s*,|\s+tìm|\s+có)`),
	regexp.MustCompile(`(?i)(?:đang|hiện)\s+ở\s+([^,]+?)(?:\s*,|\s+tìm)`),
}

var locationLeadingProximity = regexp.MustCompile(`(?i)^(?:quanh|gần|xung quanh|ở)\s+`)

// Proximity fillers that look like a location capture but name no place.
var locationFillers = map[string]struct{}{
	"gần đó":     {},
	"gần đây":    {},
	"xung quanh": {},
	"quanh đây":  {},
	"ở gần":      {},
	"đây":        {},
	"đó":         {},
	"quanh":      {},
	"gần":        {},
	"ở":          {},
}

var queryRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)tìm\s+(?:quán|chỗ|nơi|địa điểm|tiệm)?\s*([^,\.\?]+)`),
	regexp.MustCompile(`(?i)(?:muốn|cần|có)\s+([^,\.\?]+)`),
	regexp.MustCompile(`(?i)([^,\.\?]+?)\s+(?:gần|trong|quanh)`),
}

var (
	queryLeadingFiller     = regexp.MustCompile(`(?i)^(?:quán|chỗ|nơi|tiệm|địa điểm|ở|tại|gần|ăn|uống|dịch vụ)\s+`)
	queryTrailingProximity = regexp.MustCompile(`(?i)\s*(?:gần đây|gần đó|ở đây|ở gần|quanh đây|xung quanh)\s*$`)
	queryTrailingWord      = regexp.MustCompile(`(?i)\s+(?:gần|ở|trong|quanh|tại)\s*$`)
	radiusKmSubstring      = regexp.MustCompile(`(?i)\d+\s*km`)
)

// Phrases that describe the speaker's own position; a query capture containing
// one names a location, not a category.
var currentLocationPhrases = []string{
	"hiện tại", "địa chỉ hiện", "vị trí hiện", "đang ở đây",
	"chỗ này", "chỗ mình", "của mình", "địa chỉ của mình",
	"nơi này", "nơi mình", "chỗ tôi", "ở đây",
}

var queryRejects = map[string]struct{}{
	"gần đây":    {},
	"gần đó":     {},
	"gần":        {},
	"ở đây":      {},
	"ở gần":      {},
	"ở":          {},
	"trong":      {},
	"quanh":      {},
	"xung quanh": {},
	"tại":        {},
	"quanh đây":  {},
}

// IntentParser turns one Vietnamese utterance into a partial search intent.
// It is stateless; extractor entities are advisory and never override a rule
// match.
type IntentParser struct{}

// NewIntentParser creates the rule-based parser.
func NewIntentParser() *IntentParser {
	return &IntentParser{}
}

// Parse extracts {location, radius, query} from the utterance. Rule matches
// are filled first; entities from the extraction model only fill fields the
// rules left empty.
func (p *IntentParser) Parse(text string, entities []entity.NamedEntity) PartialIntent {
	var out PartialIntent

	out.RadiusKm = matchRadius(text)
	out.LocationName = matchLocation(text)

	if out.LocationName == nil {
		for _, ent := range entities {
			if ent.Word == "" {
				continue
			}
			if ent.Label == "location" || ent.Label == "place" {
				word := ent.Word
				out.LocationName = &word
				break
			}
		}
	}

	out.Query = matchQuery(text, out.LocationName, out.RadiusKm)

	if out.Query == nil {
		for _, ent := range entities {
			if ent.Word == "" {
				continue
			}
			if ent.Label == "food" || ent.Label == "service" || ent.Label == "amenity" {
				word := ent.Word
				out.Query = &word
				break
			}
		}
	}

	return out
}

func matchRadius(text string) *float64 {
	for _, rule := range radiusRules {
		for _, m := range rule.re.FindAllStringSubmatchIndex(text, -1) {
			if rule.meterUnit && kmUnitFollows.MatchString(text[m[1]:]) {
				continue
			}
			value, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
			if err != nil {
				continue
			}
			radius := value * rule.multiplier
			return &radius
		}
	}
	return nil
}

func matchLocation(text string) *string {
	for _, rule := range locationRules {
		m := rule.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		location := strings.TrimSpace(m[1])
		location = strings.TrimSpace(locationLeadingProximity.ReplaceAllString(location, ""))
		if location == "" {
			return nil
		}
		if _, filler := locationFillers[strings.ToLower(location)]; filler {
			return nil
		}
		return &location
	}
	return nil
}

func matchQuery(text string, locationName *string, radiusKm *float64) *string {
	// Strip the already-recognized parts so they cannot masquerade as the
	// search term.
	searchText := text
	if locationName != nil {
		searchText = strings.ReplaceAll(searchText, *locationName, "")
	}
	if radiusKm != nil {
		searchText = radiusKmSubstring.ReplaceAllString(searchText, "")
	}

	for _, rule := range queryRules {
		m := rule.FindStringSubmatch(searchText)
		if m == nil {
			continue
		}
		query := strings.TrimSpace(m[1])
		query = queryLeadingFiller.ReplaceAllString(query, "")
		query = queryTrailingProximity.ReplaceAllString(query, "")
		query = queryTrailingWord.ReplaceAllString(query, "")
		query = strings.TrimSpace(query)

		if query == "" {
			return nil
		}
		lower := strings.ToLower(query)
		for _, phrase := range currentLocationPhrases {
			if strings.Contains(lower, phrase) {
				return nil
			}
		}
		if _, reject := queryRejects[lower]; reject {
			return nil
		}
		return &query
	}
	return nil
}
