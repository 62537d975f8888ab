package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierScoreOrdering(t *testing.T) {
	assert.Greater(t, TierAdmin.Score(), TierPremium.Score())
	assert.Greater(t, TierPremium.Score(), TierRegular.Score())
	assert.Greater(t, TierRegular.Score(), TierGuest.Score())
	assert.Equal(t, 0, Tier("SOMETHING_NEW").Score())
}

func TestItemTypeSlots(t *testing.T) {
	assert.Equal(t, SlotBG, ItemDecoBG.Slot())
	assert.Equal(t, SlotFrame, ItemDecoFrame.Slot())
	assert.Equal(t, SlotNick, ItemDecoNick.Slot())
	assert.Equal(t, SlotIcon, ItemDecoIcon.Slot())

	for _, itemType := range []ItemType{ItemChangeNick, ItemHeartRecharge, ItemRandomPoint, ItemRandomIcon, ItemRandomRoulette, ItemVoucher, ItemBasic} {
		assert.Empty(t, itemType.Slot(), "type %v", itemType)
		assert.False(t, itemType.IsCosmetic(), "type %v", itemType)
	}
}

func TestPurchasable(t *testing.T) {
	assert.True(t, PointItem{Stock: 5}.Purchasable())
	assert.True(t, PointItem{Stock: StockUnlimited}.Purchasable())
	assert.False(t, PointItem{Stock: 0}.Purchasable())
	assert.False(t, PointItem{Stock: -2}.Purchasable())
}
