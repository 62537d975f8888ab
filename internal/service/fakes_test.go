package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/popcornhub/points-api/internal/config"
	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository"
)

type fakeMemberRepo struct {
	members map[uint]domain.Member
}

func (f *fakeMemberRepo) FindByID(_ context.Context, id uint) (domain.Member, error) {
	member, ok := f.members[id]
	if !ok {
		return domain.Member{}, ErrMemberNotFound
	}

	return member, nil
}

func (f *fakeMemberRepo) FindByLoginID(_ context.Context, loginID string) (domain.Member, error) {
	for _, member := range f.members {
		if member.LoginID == loginID {
			return member, nil
		}
	}

	return domain.Member{}, ErrMemberNotFound
}

func (f *fakeMemberRepo) List(_ context.Context, _ string, _, _ int) ([]domain.Member, int64, error) {
	members := make([]domain.Member, 0, len(f.members))
	for _, member := range f.members {
		members = append(members, member)
	}

	return members, int64(len(members)), nil
}

type fakeCatalogRepo struct {
	items map[uint]domain.PointItem
}

func (f *fakeCatalogRepo) Create(_ context.Context, item domain.PointItem) (domain.PointItem, error) {
	item.ID = uint(len(f.items) + 1)
	f.items[item.ID] = item

	return item, nil
}

func (f *fakeCatalogRepo) Update(_ context.Context, item domain.PointItem) (domain.PointItem, error) {
	if _, ok := f.items[item.ID]; !ok {
		return domain.PointItem{}, ErrItemNotFound
	}
	f.items[item.ID] = item

	return item, nil
}

func (f *fakeCatalogRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.items[id]; !ok {
		return ErrItemNotFound
	}
	delete(f.items, id)

	return nil
}

func (f *fakeCatalogRepo) FindByID(_ context.Context, id uint) (domain.PointItem, error) {
	item, ok := f.items[id]
	if !ok {
		return domain.PointItem{}, ErrItemNotFound
	}

	return item, nil
}

func (f *fakeCatalogRepo) List(_ context.Context, _ repository.ItemFilter, _, _ int) ([]domain.PointItem, int64, error) {
	items := make([]domain.PointItem, 0, len(f.items))
	for _, item := range f.items {
		items = append(items, item)
	}

	return items, int64(len(items)), nil
}

type fakeWishRepo struct {
	wished map[uint]map[uint]bool
}

func (f *fakeWishRepo) Toggle(_ context.Context, memberID, itemNo uint) (bool, error) {
	if f.wished[memberID] == nil {
		f.wished[memberID] = make(map[uint]bool)
	}
	if f.wished[memberID][itemNo] {
		delete(f.wished[memberID], itemNo)
		return false, nil
	}
	f.wished[memberID][itemNo] = true

	return true, nil
}

func (f *fakeWishRepo) ListItemNos(_ context.Context, memberID uint) ([]uint, error) {
	var itemNos []uint
	for itemNo := range f.wished[memberID] {
		itemNos = append(itemNos, itemNo)
	}

	return itemNos, nil
}

// fakeExchangeRepo records calls; failure modes are injected per test.
type fakeExchangeRepo struct {
	purchaseErr error
	purchases   []repository.PurchaseParams

	consumed     []uint
	credits      []int
	nicknames    []string
	hearts       []int
	drawnIcons   []uint
	equipped     []uint
	unequipped   []uint
	cancelled    []uint
	discarded    []uint
	recalled     []uint
	grants       int
	adjustments  []int
	cancelRefund int

	purchaseResult domain.InventoryRecord
}

func (f *fakeExchangeRepo) Purchase(_ context.Context, p repository.PurchaseParams) (domain.InventoryRecord, error) {
	if f.purchaseErr != nil {
		return domain.InventoryRecord{}, f.purchaseErr
	}
	f.purchases = append(f.purchases, p)

	return f.purchaseResult, nil
}

func (f *fakeExchangeRepo) Grant(_ context.Context, memberID uint, itemNo, iconID *uint) (domain.InventoryRecord, error) {
	f.grants++

	return domain.InventoryRecord{MemberID: memberID, ItemNo: itemNo, IconID: iconID, Quantity: 1}, nil
}

func (f *fakeExchangeRepo) Recall(_ context.Context, inventoryNo uint) error {
	f.recalled = append(f.recalled, inventoryNo)

	return nil
}

func (f *fakeExchangeRepo) Consume(_ context.Context, _, inventoryNo uint) (domain.InventoryRecord, error) {
	f.consumed = append(f.consumed, inventoryNo)

	return domain.InventoryRecord{ID: inventoryNo}, nil
}

func (f *fakeExchangeRepo) ConsumeAndCredit(_ context.Context, _, inventoryNo uint, amount int, _ domain.LedgerReason, _ string) error {
	f.consumed = append(f.consumed, inventoryNo)
	f.credits = append(f.credits, amount)

	return nil
}

func (f *fakeExchangeRepo) ConsumeForNickname(_ context.Context, _, inventoryNo uint, nickname string) error {
	f.consumed = append(f.consumed, inventoryNo)
	f.nicknames = append(f.nicknames, nickname)

	return nil
}

func (f *fakeExchangeRepo) ConsumeForHearts(_ context.Context, _, inventoryNo uint, hearts int) error {
	f.consumed = append(f.consumed, inventoryNo)
	f.hearts = append(f.hearts, hearts)

	return nil
}

func (f *fakeExchangeRepo) DrawGrant(_ context.Context, memberID, ticketNo, iconID uint) (domain.InventoryRecord, error) {
	f.consumed = append(f.consumed, ticketNo)
	f.drawnIcons = append(f.drawnIcons, iconID)

	return domain.InventoryRecord{MemberID: memberID, IconID: &iconID, Quantity: 1}, nil
}

func (f *fakeExchangeRepo) CancelPurchase(_ context.Context, _, inventoryNo uint) (int, error) {
	f.cancelled = append(f.cancelled, inventoryNo)

	return f.cancelRefund, nil
}

func (f *fakeExchangeRepo) Discard(_ context.Context, _, inventoryNo uint) error {
	f.discarded = append(f.discarded, inventoryNo)

	return nil
}

func (f *fakeExchangeRepo) Equip(_ context.Context, _, inventoryNo uint) error {
	f.equipped = append(f.equipped, inventoryNo)

	return nil
}

func (f *fakeExchangeRepo) Unequip(_ context.Context, _, inventoryNo uint) error {
	f.unequipped = append(f.unequipped, inventoryNo)

	return nil
}

func (f *fakeExchangeRepo) AdjustPoints(_ context.Context, _ uint, amount int, _ string) (int, error) {
	f.adjustments = append(f.adjustments, amount)

	return amount, nil
}

type fakeInventoryRepo struct {
	records map[uint]domain.InventoryRecord
}

func (f *fakeInventoryRepo) FindByID(_ context.Context, id uint) (domain.InventoryRecord, error) {
	record, ok := f.records[id]
	if !ok {
		return domain.InventoryRecord{}, ErrRecordNotFound
	}

	return record, nil
}

func (f *fakeInventoryRepo) FindByMember(_ context.Context, memberID uint) ([]domain.InventoryRecord, error) {
	var records []domain.InventoryRecord
	for _, record := range f.records {
		if record.MemberID == memberID {
			records = append(records, record)
		}
	}

	return records, nil
}

func (f *fakeInventoryRepo) FindOwnedItem(_ context.Context, memberID, itemNo uint) (domain.InventoryRecord, error) {
	for _, record := range f.records {
		if record.MemberID == memberID && record.ItemNo != nil && *record.ItemNo == itemNo {
			return record, nil
		}
	}

	return domain.InventoryRecord{}, ErrRecordNotFound
}

func (f *fakeInventoryRepo) FindEquipped(_ context.Context, memberID uint, slot string) (domain.InventoryRecord, error) {
	for _, record := range f.records {
		if record.MemberID == memberID && record.Slot == slot && record.Equipped {
			return record, nil
		}
	}

	return domain.InventoryRecord{}, ErrRecordNotFound
}

type fakeIconRepo struct {
	icons map[domain.Rarity][]domain.Icon
}

func (f *fakeIconRepo) Create(_ context.Context, icon domain.Icon) (domain.Icon, error) {
	f.icons[icon.Rarity] = append(f.icons[icon.Rarity], icon)

	return icon, nil
}

func (f *fakeIconRepo) Update(_ context.Context, icon domain.Icon) (domain.Icon, error) {
	return icon, nil
}

func (f *fakeIconRepo) Delete(_ context.Context, _ uint) error {
	return nil
}

func (f *fakeIconRepo) FindByID(_ context.Context, id uint) (domain.Icon, error) {
	for _, icons := range f.icons {
		for _, icon := range icons {
			if icon.ID == id {
				return icon, nil
			}
		}
	}

	return domain.Icon{}, ErrIconNotFound
}

func (f *fakeIconRepo) FindByRarity(_ context.Context, rarity domain.Rarity) ([]domain.Icon, error) {
	return f.icons[rarity], nil
}

func (f *fakeIconRepo) List(_ context.Context, _ repository.IconFilter, _, _ int) ([]domain.Icon, int64, error) {
	var all []domain.Icon
	for _, icons := range f.icons {
		all = append(all, icons...)
	}

	return all, int64(len(all)), nil
}

type fakeLedgerRepo struct {
	balances    map[uint]int
	balanceHits int
}

func (f *fakeLedgerRepo) Balance(_ context.Context, memberID uint) (int, error) {
	f.balanceHits++

	return f.balances[memberID], nil
}

func (f *fakeLedgerRepo) History(_ context.Context, _ uint, _, _ int) ([]domain.LedgerEntry, int64, error) {
	return nil, 0, nil
}

func (f *fakeLedgerRepo) CountPurchasesBetween(_ context.Context, _, _ uint, _, _ time.Time) (int, error) {
	return 0, nil
}

func (f *fakeLedgerRepo) Ranking(_ context.Context, _ int) ([]domain.RankingEntry, error) {
	return nil, nil
}

type fakeCache struct {
	mu          sync.Mutex
	values      map[uint]int
	invalidated []uint
	sets        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[uint]int)}
}

func (f *fakeCache) Get(_ context.Context, memberID uint) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	balance, ok := f.values[memberID]

	return balance, ok
}

func (f *fakeCache) Set(_ context.Context, memberID uint, balance int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[memberID] = balance
	f.sets++
}

func (f *fakeCache) Invalidate(_ context.Context, memberID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.values, memberID)
	f.invalidated = append(f.invalidated, memberID)
}

func gachaConfig(weights map[string]int) *config.AppConfig {
	return &config.AppConfig{
		Gacha: &config.GachaConfig{
			Weights:  weights,
			PointBox: &config.PointBoxConfig{Min: 50, Max: 500},
			Roulette: &config.RouletteConfig{
				Prizes: []config.RoulettePrize{
					{Points: 0, Weight: 50},
					{Points: 100, Weight: 40},
					{Points: 1000, Weight: 10},
				},
			},
		},
	}
}

func seededResolver(conf *config.AppConfig, iconRepo IconRepository, seed int64) *GachaResolver {
	resolver := NewGachaResolver(conf, iconRepo)
	resolver.rng = rand.New(rand.NewSource(seed))

	return resolver
}
