package targeting

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestTargeting_IsEmpty(t *testing.T) {
	assert.True(t, Targeting{}.IsEmpty())
	assert.False(t, Targeting{ProductIDs: []uuid.UUID{uuid.New()}}.IsEmpty())
	assert.False(t, Targeting{Tags: []string{"sale"}}.IsEmpty())
}

func TestTargeting_Matches(t *testing.T) {
	productID := uuid.New()
	categoryID := uuid.New()
	brandID := uuid.New()

	facts := ProductFacts{
		ID:         productID,
		CategoryID: &categoryID,
		BrandID:    &brandID,
		Tags:       []string{"summer", "clearance"},
		Stock:      10,
		BasePrice:  decimal.NewFromInt(100),
	}

	tests := []struct {
		name      string
		targeting Targeting
		want      bool
	}{
		{
			name:      "empty targeting never matches",
			targeting: Targeting{},
			want:      false,
		},
		{
			name:      "matches by product id",
			targeting: Targeting{ProductIDs: []uuid.UUID{productID}},
			want:      true,
		},
		{
			name:      "matches by category",
			targeting: Targeting{CategoryIDs: []uuid.UUID{categoryID}},
			want:      true,
		},
		{
			name:      "matches by brand",
			targeting: Targeting{BrandIDs: []uuid.UUID{brandID}},
			want:      true,
		},
		{
			name:      "matches by tag overlap",
			targeting: Targeting{Tags: []string{"clearance", "winter"}},
			want:      true,
		},
		{
			name: "OR across sets: one hit is enough",
			targeting: Targeting{
				ProductIDs: []uuid.UUID{uuid.New()},
				Tags:       []string{"summer"},
			},
			want: true,
		},
		{
			name: "no set hits",
			targeting: Targeting{
				ProductIDs:  []uuid.UUID{uuid.New()},
				CategoryIDs: []uuid.UUID{uuid.New()},
				BrandIDs:    []uuid.UUID{uuid.New()},
				Tags:        []string{"winter"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.targeting.Matches(facts))
		})
	}
}

func TestTargeting_Matches_NilAttributes(t *testing.T) {
	// Products with no category or brand must not match category or
	// brand sets.
	facts := ProductFacts{ID: uuid.New()}

	assert.False(t, Targeting{CategoryIDs: []uuid.UUID{uuid.New()}}.Matches(facts))
	assert.False(t, Targeting{BrandIDs: []uuid.UUID{uuid.New()}}.Matches(facts))
}

func TestBounds_Contains(t *testing.T) {
	facts := ProductFacts{
		Stock:     5,
		BasePrice: decimal.NewFromInt(50),
	}

	tests := []struct {
		name   string
		bounds Bounds
		want   bool
	}{
		{"no bounds", Bounds{}, true},
		{"stock in range", Bounds{MinStock: ptr(1), MaxStock: ptr(10)}, true},
		{"stock below min", Bounds{MinStock: ptr(6)}, false},
		{"stock above max", Bounds{MaxStock: ptr(4)}, false},
		{"price in range", Bounds{MinPrice: ptr(decimal.NewFromInt(10)), MaxPrice: ptr(decimal.NewFromInt(100))}, true},
		{"price below min", Bounds{MinPrice: ptr(decimal.NewFromInt(51))}, false},
		{"price above max", Bounds{MaxPrice: ptr(decimal.NewFromInt(49))}, false},
		{"boundary values inclusive", Bounds{MinStock: ptr(5), MaxStock: ptr(5), MinPrice: ptr(decimal.NewFromInt(50)), MaxPrice: ptr(decimal.NewFromInt(50))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bounds.Contains(facts))
		})
	}
}
