package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide_SearchWhenComplete(t *testing.T) {
	var policy ClarificationPolicy

	intent := ResolvedIntent{
		LocationName: ptr("Quận 5"),
		Lat:          ptr(10.76),
		Lng:          ptr(106.68),
		RadiusKm:     ptr(2.0),
		Query:        ptr("cà phê"),
	}

	d := policy.Decide("tìm quán cà phê", intent)
	assert.True(t, d.Search)
	assert.False(t, d.SearchAll)
}

func TestDecide_IndifferenceSearchesAll(t *testing.T) {
	var policy ClarificationPolicy

	intent := ResolvedIntent{
		Lat:      ptr(10.76),
		Lng:      ptr(106.68),
		RadiusKm: ptr(2.0),
	}

	d := policy.Decide("cái nào cũng được", intent)
	assert.True(t, d.Search)
	assert.True(t, d.SearchAll)
}

func TestDecide_AsksForCategory(t *testing.T) {
	var policy ClarificationPolicy

	intent := ResolvedIntent{
		Lat:      ptr(10.76),
		Lng:      ptr(106.68),
		RadiusKm: ptr(2.0),
	}

	d := policy.Decide("tìm quanh đây đi", intent)
	assert.False(t, d.Search)
	assert.Equal(t, msgAskQuery, d.Clarification)
}

func TestDecide_Priority(t *testing.T) {
	var policy ClarificationPolicy

	// Location outranks radius.
	d := policy.Decide("", ResolvedIntent{MissingFields: []string{MissingRadius, MissingLocation}})
	assert.Equal(t, msgAskLocation, d.Clarification)

	d = policy.Decide("", ResolvedIntent{MissingFields: []string{MissingCurrentLocation}})
	assert.Equal(t, msgAskCurrentLocation, d.Clarification)

	d = policy.Decide("", ResolvedIntent{MissingFields: []string{MissingRadius}})
	assert.Equal(t, msgAskRadius, d.Clarification)
}

func TestDecide_RadiusQuestionEchoesQuery(t *testing.T) {
	var policy ClarificationPolicy

	d := policy.Decide("", ResolvedIntent{Query: ptr("quán phở"), MissingFields: []string{MissingRadius}})
	assert.False(t, d.Search)
	assert.True(t, strings.HasSuffix(d.Clarification, "để tìm quán phở"))
}
