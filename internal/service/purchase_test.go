package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popcornhub/points-api/internal/domain"
)

func purchaseFixture() (*PurchaseService, *fakeExchangeRepo, *fakeInventoryRepo, *fakeCache) {
	members := &fakeMemberRepo{members: map[uint]domain.Member{
		1: {ID: 1, LoginID: "alice", Tier: domain.TierRegular},
		2: {ID: 2, LoginID: "bob", Tier: domain.TierGuest},
		3: {ID: 3, LoginID: "carol", Tier: domain.TierPremium},
	}}
	catalog := &fakeCatalogRepo{items: map[uint]domain.PointItem{
		10: {ID: 10, Name: "frame", Price: 300, Stock: 2, Type: domain.ItemDecoFrame, ReqTier: domain.TierRegular},
		11: {ID: 11, Name: "vip frame", Price: 500, Stock: domain.StockUnlimited, Type: domain.ItemDecoFrame, ReqTier: domain.TierPremium},
		12: {ID: 12, Name: "badge", Price: 100, Stock: domain.StockUnlimited, Type: domain.ItemBasic, ReqTier: domain.TierGuest, LimitMode: domain.LimitOnce},
	}}
	exchange := &fakeExchangeRepo{}
	inventory := &fakeInventoryRepo{records: map[uint]domain.InventoryRecord{}}
	balanceCache := newFakeCache()

	zone, _ := time.LoadLocation("Asia/Seoul")
	svc := NewPurchaseService(exchange, catalog, members, inventory, balanceCache, zone)

	return svc, exchange, inventory, balanceCache
}

func TestBuy_PassesPurchaseParams(t *testing.T) {
	svc, exchange, _, balanceCache := purchaseFixture()
	balanceCache.Set(context.Background(), 1, 500)

	_, err := svc.Buy(context.Background(), 1, 10, "key-1")
	require.NoError(t, err)

	require.Len(t, exchange.purchases, 1)
	p := exchange.purchases[0]
	assert.Equal(t, uint(1), p.PayerID)
	assert.Equal(t, uint(1), p.RecipientID)
	assert.Equal(t, uint(10), p.ItemNo)
	assert.Equal(t, domain.ReasonPurchase, p.Reason)
	assert.Equal(t, domain.SourcePurchase, p.Source)
	assert.Equal(t, "key-1", p.IdempotencyKey)
	assert.Equal(t, 24*time.Hour, p.DayEnd.Sub(p.DayStart))

	// The cached balance is stale after a debit.
	assert.Contains(t, balanceCache.invalidated, uint(1))
}

func TestBuy_TierTooLow(t *testing.T) {
	svc, exchange, _, _ := purchaseFixture()

	_, err := svc.Buy(context.Background(), 2, 10, "")
	assert.ErrorIs(t, err, ErrTierNotMet)
	assert.Empty(t, exchange.purchases)
}

func TestBuy_PremiumItemNeedsPremiumTier(t *testing.T) {
	svc, _, _, _ := purchaseFixture()

	_, err := svc.Buy(context.Background(), 1, 11, "")
	assert.ErrorIs(t, err, ErrTierNotMet)

	_, err = svc.Buy(context.Background(), 3, 11, "")
	assert.NoError(t, err)
}

func TestBuy_UnknownItem(t *testing.T) {
	svc, _, _, _ := purchaseFixture()

	_, err := svc.Buy(context.Background(), 1, 999, "")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestGift_SplitsPayerAndRecipient(t *testing.T) {
	svc, exchange, _, _ := purchaseFixture()

	_, err := svc.Gift(context.Background(), 1, "bob", 10, "")
	require.NoError(t, err)

	require.Len(t, exchange.purchases, 1)
	p := exchange.purchases[0]
	assert.Equal(t, uint(1), p.PayerID)
	assert.Equal(t, uint(2), p.RecipientID)
	assert.Equal(t, domain.ReasonGiftSent, p.Reason)
	assert.Equal(t, domain.SourceGift, p.Source)
}

func TestGift_ToSelfRejected(t *testing.T) {
	svc, exchange, _, _ := purchaseFixture()

	_, err := svc.Gift(context.Background(), 1, "alice", 10, "")
	assert.ErrorIs(t, err, ErrGiftToSelf)
	assert.Empty(t, exchange.purchases)
}

func TestGift_RecipientTierNotChecked(t *testing.T) {
	// The guest recipient cannot buy the item, but can receive it.
	svc, exchange, _, _ := purchaseFixture()

	_, err := svc.Gift(context.Background(), 3, "bob", 11, "")
	require.NoError(t, err)
	require.Len(t, exchange.purchases, 1)
	assert.Equal(t, uint(2), exchange.purchases[0].RecipientID)
}

func TestGift_UnknownRecipient(t *testing.T) {
	svc, _, _, _ := purchaseFixture()

	_, err := svc.Gift(context.Background(), 1, "nobody", 10, "")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestBuy_OncePerAccountFailsFastWhenOwned(t *testing.T) {
	svc, exchange, inventory, _ := purchaseFixture()
	itemNo := uint(12)
	inventory.records[1] = domain.InventoryRecord{ID: 1, MemberID: 1, ItemNo: &itemNo, Quantity: 1}

	_, err := svc.Buy(context.Background(), 1, 12, "")
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	// The rejection happens before any transaction is opened.
	assert.Empty(t, exchange.purchases)
}

func TestGift_OncePerAccountChecksRecipient(t *testing.T) {
	svc, exchange, inventory, _ := purchaseFixture()
	itemNo := uint(12)
	inventory.records[1] = domain.InventoryRecord{ID: 1, MemberID: 2, ItemNo: &itemNo, Quantity: 1}

	_, err := svc.Gift(context.Background(), 1, "bob", 12, "")
	assert.ErrorIs(t, err, ErrAlreadyOwned)
	assert.Empty(t, exchange.purchases)

	// The giver owning the item does not block a gift to someone else.
	inventory.records[1] = domain.InventoryRecord{ID: 1, MemberID: 1, ItemNo: &itemNo, Quantity: 1}

	_, err = svc.Gift(context.Background(), 1, "carol", 12, "")
	assert.NoError(t, err)
	assert.Len(t, exchange.purchases, 1)
}

func TestBuy_PurchaseFailureSurfaces(t *testing.T) {
	svc, exchange, _, balanceCache := purchaseFixture()
	exchange.purchaseErr = ErrOutOfStock

	_, err := svc.Buy(context.Background(), 1, 10, "")
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Empty(t, balanceCache.invalidated)
}
