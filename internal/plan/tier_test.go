// AngelaMos | 2026
// tier_test.go

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonthlyLimit(t *testing.T) {
	tests := []struct {
		tier Tier
		want int64
	}{
		{Free, 100},
		{Starter, 2500},
		{Pro, 10000},
		{Business, 100000},
		{Tier("enterprise"), 100},
		{Tier(""), 100},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tier.MonthlyLimit())
		})
	}
}

func TestCanCustomize(t *testing.T) {
	assert.False(t, Free.CanCustomize())
	assert.False(t, Starter.CanCustomize())
	assert.True(t, Pro.CanCustomize())
	assert.True(t, Business.CanCustomize())
	assert.False(t, Tier("platinum").CanCustomize())
}

func TestPricingTableCoversEveryTier(t *testing.T) {
	table := PricingTable()
	assert.Len(t, table, 4)
	for _, tier := range []Tier{Free, Starter, Pro, Business} {
		assert.NotEmpty(t, table[string(tier)], tier)
		assert.True(t, tier.Valid())
	}
	assert.False(t, Tier("enterprise").Valid())
}
