package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUpsertRequest() UpsertRuleRequest {
	return UpsertRuleRequest{
		Name:          "Summer Sale",
		DiscountType:  "percentage",
		DiscountValue: decimal.NewFromInt(20),
		Tags:          []string{"summer"},
		StartsAt:      time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:        time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
}

func TestUpsertRuleRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*UpsertRuleRequest)
		wantErr bool
	}{
		{"valid", func(r *UpsertRuleRequest) {}, false},
		{"missing name", func(r *UpsertRuleRequest) { r.Name = "" }, true},
		{"unknown discount type", func(r *UpsertRuleRequest) { r.DiscountType = "bogo" }, true},
		{"negative value", func(r *UpsertRuleRequest) { r.DiscountValue = decimal.NewFromInt(-5) }, true},
		{"percentage above 100", func(r *UpsertRuleRequest) { r.DiscountValue = decimal.NewFromInt(101) }, true},
		{"percentage exactly 100", func(r *UpsertRuleRequest) { r.DiscountValue = decimal.NewFromInt(100) }, false},
		{"fixed value above 100 allowed", func(r *UpsertRuleRequest) {
			r.DiscountType = "fixed"
			r.DiscountValue = decimal.NewFromInt(500)
		}, false},
		{"ends before starts", func(r *UpsertRuleRequest) { r.EndsAt = r.StartsAt.Add(-time.Hour) }, true},
		{"negative min price", func(r *UpsertRuleRequest) {
			v := decimal.NewFromInt(-1)
			r.MinPrice = &v
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validUpsertRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDiscountRule_Project(t *testing.T) {
	notes := "do not extend past Q3"
	rule := validUpsertRequest().ToRule()
	rule.InternalNotes = &notes

	t.Run("empty request returns all safe fields", func(t *testing.T) {
		out := rule.Project(nil)

		assert.Contains(t, out, "name")
		assert.Contains(t, out, "discount_value")
		assert.NotContains(t, out, "created_by")
		assert.NotContains(t, out, "internal_notes")
	})

	t.Run("requested fields only", func(t *testing.T) {
		out := rule.Project([]string{"name", "priority"})

		require.Len(t, out, 2)
		assert.Equal(t, "Summer Sale", out["name"])
	})

	t.Run("sensitive fields stripped even when requested", func(t *testing.T) {
		out := rule.Project([]string{"name", "internal_notes", "created_by"})

		require.Len(t, out, 1)
		assert.NotContains(t, out, "internal_notes")
	})

	t.Run("unknown fields ignored", func(t *testing.T) {
		out := rule.Project([]string{"name", "password"})

		require.Len(t, out, 1)
	})
}

func TestDiscountRule_IsScheduledAt(t *testing.T) {
	rule := validUpsertRequest().ToRule()

	assert.True(t, rule.IsScheduledAt(time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, rule.IsScheduledAt(rule.StartsAt))
	assert.True(t, rule.IsScheduledAt(rule.EndsAt))
	assert.False(t, rule.IsScheduledAt(rule.StartsAt.Add(-time.Second)))
	assert.False(t, rule.IsScheduledAt(rule.EndsAt.Add(time.Second)))
}

func TestDiscountRule_CatalogApplicationStateMachine(t *testing.T) {
	rule := validUpsertRequest().ToRule()

	require.NoError(t, rule.BeginCatalogApplication())
	assert.True(t, rule.InUse)

	assert.ErrorIs(t, rule.BeginCatalogApplication(), ErrRuleAlreadyApplied)

	require.NoError(t, rule.EndCatalogApplication())
	assert.False(t, rule.InUse)

	assert.ErrorIs(t, rule.EndCatalogApplication(), ErrRuleNotApplied)
}
