package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietnam-explorer/api/internal/entity"
)

func TestMatchRadius(t *testing.T) {
	tests := map[string]struct {
		text   string
		expect *float64
	}{
		"kilometres":           {"tìm quán ăn trong 2km", ptr(2.0)},
		"kilometres spelled":   {"bán kính 3 kilomet quanh đây", ptr(3.0)},
		"metres":               {"tìm quán cà phê trong bán kính 500m", ptr(0.5)},
		"metres spelled":       {"khoảng 800 met", ptr(0.8)},
		"metre match before k": {"đi bộ 300m kế bên", nil},
		"no radius":            {"tìm quán phở gần đây", nil},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := matchRadius(tt.text)
			if tt.expect == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.expect, *got, 1e-9)
		})
	}
}

func TestMatchLocation(t *testing.T) {
	tests := map[string]struct {
		text   string
		expect string
	}{
		"after o":          {"ở Quận 5, có gì ăn không", "Quận 5"},
		"after dang o":     {"tôi đang ở Thủ Đức, tìm quán ăn", "Thủ Đức"},
		"before tim":       {"tại Hà Nội tìm quán phở", "Hà Nội"},
		"proximity filler": {"ở gần đó, có quán nào không", ""},
		"no terminator":    {"quán cà phê gần đây", ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := matchLocation(tt.text)
			if tt.expect == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.expect, *got)
		})
	}
}

func TestParse_RulesFirst(t *testing.T) {
	parser := NewIntentParser()

	intent := parser.Parse("tìm quán cà phê ở Quận 5, trong bán kính 2km", nil)

	require.NotNil(t, intent.LocationName)
	assert.Equal(t, "Quận 5", *intent.LocationName)
	require.NotNil(t, intent.RadiusKm)
	assert.InDelta(t, 2.0, *intent.RadiusKm, 1e-9)
	require.NotNil(t, intent.Query)
	assert.Equal(t, "cà phê", *intent.Query)
}

func TestParse_EntityFallback(t *testing.T) {
	parser := NewIntentParser()
	entities := []entity.NamedEntity{
		{Label: "location", Word: "Chợ Bến Thành"},
		{Label: "food", Word: "bánh mì"},
	}

	intent := parser.Parse("xung quanh có gì ngon không", entities)

	require.NotNil(t, intent.LocationName)
	assert.Equal(t, "Chợ Bến Thành", *intent.LocationName)
	require.NotNil(t, intent.Query)
	// "có gì ngon không" matches the want-rule before the entity applies.
	assert.Equal(t, "gì ngon không", *intent.Query)
}

func TestParse_EntityDoesNotOverrideRule(t *testing.T) {
	parser := NewIntentParser()
	entities := []entity.NamedEntity{{Label: "location", Word: "Hà Nội"}}

	intent := parser.Parse("tìm quán phở ở Đà Nẵng, bán kính 1km", entities)

	require.NotNil(t, intent.LocationName)
	assert.Equal(t, "Đà Nẵng", *intent.LocationName)
}

func TestParse_QueryRejectsSelfReference(t *testing.T) {
	parser := NewIntentParser()

	intent := parser.Parse("tìm quanh vị trí hiện tại của tôi", nil)

	assert.Nil(t, intent.Query)
}

func TestParse_NoEntities(t *testing.T) {
	parser := NewIntentParser()

	intent := parser.Parse("xin chào", nil)

	assert.Nil(t, intent.LocationName)
	assert.Nil(t, intent.RadiusKm)
	assert.Nil(t, intent.Query)
}

func ptr[T any](v T) *T { return &v }
