package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/popcornhub/points-api/internal/cache"
	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository"
)

var (
	ErrRecordNotFound  = repository.ErrRecordNotFound
	ErrAlreadyEquipped = repository.ErrAlreadyEquipped
	ErrNotEquipped     = repository.ErrNotEquipped
	ErrInvalidState    = repository.ErrInvalidState

	ErrNotUsable       = errors.New("item cannot be used directly")
	ErrNicknameInvalid = errors.New("nickname must be 2 to 10 letters, digits or hangul")
)

const heartsPerRecharge = 5

var nicknamePattern = regexp2.MustCompile(`^[0-9a-zA-Z가-힣]{2,10}$`, regexp2.None)

type InventoryRepository interface {
	FindByID(ctx context.Context, id uint) (domain.InventoryRecord, error)
	FindByMember(ctx context.Context, memberID uint) ([]domain.InventoryRecord, error)
	FindOwnedItem(ctx context.Context, memberID, itemNo uint) (domain.InventoryRecord, error)
	FindEquipped(ctx context.Context, memberID uint, slot string) (domain.InventoryRecord, error)
}

// UseResult reports what a consumable did when used.
type UseResult struct {
	Type          domain.ItemType `json:"type"`
	PointsAwarded int             `json:"pointsAwarded,omitempty"`
	HeartsAdded   int             `json:"heartsAdded,omitempty"`
	Nickname      string          `json:"nickname,omitempty"`
	Icon          *domain.Icon    `json:"icon,omitempty"`
}

type InventoryService struct {
	inventoryRepo InventoryRepository
	exchangeRepo  ExchangeRepository
	gacha         *GachaResolver
	cache         cache.BalanceCache
}

func NewInventoryService(inventoryRepo InventoryRepository, exchangeRepo ExchangeRepository, gacha *GachaResolver, balanceCache cache.BalanceCache) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		exchangeRepo:  exchangeRepo,
		gacha:         gacha,
		cache:         balanceCache,
	}
}

func (s *InventoryService) MyInventory(ctx context.Context, memberID uint) ([]domain.InventoryRecord, error) {
	records, err := s.inventoryRepo.FindByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("s.inventoryRepo.FindByMember -> %w", err)
	}

	return records, nil
}

// EquippedLoadout returns the equipped record per cosmetic slot. Slots
// with nothing equipped are absent from the map.
func (s *InventoryService) EquippedLoadout(ctx context.Context, memberID uint) (map[string]domain.InventoryRecord, error) {
	loadout := make(map[string]domain.InventoryRecord, len(domain.Slots))
	for _, slot := range domain.Slots {
		record, err := s.inventoryRepo.FindEquipped(ctx, memberID, slot)
		if err != nil {
			if errors.Is(err, ErrRecordNotFound) {
				continue
			}

			return nil, fmt.Errorf("s.inventoryRepo.FindEquipped -> %w", err)
		}
		loadout[slot] = record
	}

	return loadout, nil
}

// ownedItemRecord loads a record and verifies the caller owns it and it
// wraps a catalog item.
func (s *InventoryService) ownedItemRecord(ctx context.Context, memberID, inventoryNo uint) (domain.InventoryRecord, error) {
	record, err := s.inventoryRepo.FindByID(ctx, inventoryNo)
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("s.inventoryRepo.FindByID -> %w", err)
	}
	if record.MemberID != memberID {
		return domain.InventoryRecord{}, ErrRecordNotFound
	}
	if record.Item == nil {
		return domain.InventoryRecord{}, ErrNotUsable
	}

	return record, nil
}

// UseItem consumes one unit of a consumable and applies its effect.
// Cosmetics are equipped, not used.
func (s *InventoryService) UseItem(ctx context.Context, memberID, inventoryNo uint, nickname string) (UseResult, error) {
	record, err := s.ownedItemRecord(ctx, memberID, inventoryNo)
	if err != nil {
		return UseResult{}, err
	}

	itemType := record.Item.Type
	switch itemType {
	case domain.ItemChangeNick:
		return s.useNicknameChange(ctx, memberID, inventoryNo, nickname)
	case domain.ItemHeartRecharge:
		return s.useHeartRecharge(ctx, memberID, inventoryNo)
	case domain.ItemRandomPoint:
		return s.usePointBox(ctx, memberID, inventoryNo)
	case domain.ItemRandomRoulette:
		return s.useRoulette(ctx, memberID, inventoryNo)
	case domain.ItemRandomIcon:
		return s.useIconDraw(ctx, memberID, inventoryNo)
	case domain.ItemVoucher, domain.ItemBasic:
		if _, err = s.exchangeRepo.Consume(ctx, memberID, inventoryNo); err != nil {
			return UseResult{}, fmt.Errorf("s.exchangeRepo.Consume -> %w", err)
		}
		return UseResult{Type: itemType}, nil
	default:
		return UseResult{}, ErrNotUsable
	}
}

func (s *InventoryService) useNicknameChange(ctx context.Context, memberID, inventoryNo uint, nickname string) (UseResult, error) {
	ok, err := nicknamePattern.MatchString(nickname)
	if err != nil || !ok {
		return UseResult{}, ErrNicknameInvalid
	}

	if err = s.exchangeRepo.ConsumeForNickname(ctx, memberID, inventoryNo, nickname); err != nil {
		return UseResult{}, fmt.Errorf("s.exchangeRepo.ConsumeForNickname -> %w", err)
	}

	return UseResult{Type: domain.ItemChangeNick, Nickname: nickname}, nil
}

func (s *InventoryService) useHeartRecharge(ctx context.Context, memberID, inventoryNo uint) (UseResult, error) {
	err := s.exchangeRepo.ConsumeForHearts(ctx, memberID, inventoryNo, heartsPerRecharge)
	if err != nil {
		return UseResult{}, fmt.Errorf("s.exchangeRepo.ConsumeForHearts -> %w", err)
	}

	return UseResult{Type: domain.ItemHeartRecharge, HeartsAdded: heartsPerRecharge}, nil
}

func (s *InventoryService) usePointBox(ctx context.Context, memberID, inventoryNo uint) (UseResult, error) {
	amount := s.gacha.RollPointBox()

	err := s.exchangeRepo.ConsumeAndCredit(ctx, memberID, inventoryNo, amount, domain.ReasonPointReward, "point box")
	if err != nil {
		return UseResult{}, fmt.Errorf("s.exchangeRepo.ConsumeAndCredit -> %w", err)
	}
	s.cache.Invalidate(ctx, memberID)

	return UseResult{Type: domain.ItemRandomPoint, PointsAwarded: amount}, nil
}

func (s *InventoryService) useRoulette(ctx context.Context, memberID, inventoryNo uint) (UseResult, error) {
	amount := s.gacha.RollRoulette()

	err := s.exchangeRepo.ConsumeAndCredit(ctx, memberID, inventoryNo, amount, domain.ReasonPointReward, "roulette")
	if err != nil {
		return UseResult{}, fmt.Errorf("s.exchangeRepo.ConsumeAndCredit -> %w", err)
	}
	s.cache.Invalidate(ctx, memberID)

	return UseResult{Type: domain.ItemRandomRoulette, PointsAwarded: amount}, nil
}

// useIconDraw rolls the prize first, then burns the ticket and grants
// the icon in one transaction. A failed transaction forfeits nothing.
func (s *InventoryService) useIconDraw(ctx context.Context, memberID, inventoryNo uint) (UseResult, error) {
	icon, err := s.gacha.DrawIcon(ctx)
	if err != nil {
		return UseResult{}, fmt.Errorf("s.gacha.DrawIcon -> %w", err)
	}

	if _, err = s.exchangeRepo.DrawGrant(ctx, memberID, inventoryNo, icon.ID); err != nil {
		return UseResult{}, fmt.Errorf("s.exchangeRepo.DrawGrant -> %w", err)
	}

	return UseResult{Type: domain.ItemRandomIcon, Icon: &icon}, nil
}

// Equip marks a cosmetic record equipped, replacing whatever occupies
// its slot. Icons and decoration items share the ICON slot rules laid
// down at acquisition time.
func (s *InventoryService) Equip(ctx context.Context, memberID, inventoryNo uint) error {
	if err := s.exchangeRepo.Equip(ctx, memberID, inventoryNo); err != nil {
		return fmt.Errorf("s.exchangeRepo.Equip -> %w", err)
	}

	return nil
}

func (s *InventoryService) Unequip(ctx context.Context, memberID, inventoryNo uint) error {
	if err := s.exchangeRepo.Unequip(ctx, memberID, inventoryNo); err != nil {
		return fmt.Errorf("s.exchangeRepo.Unequip -> %w", err)
	}

	return nil
}

// Cancel reverses a purchase: the stack shrinks by one, stock returns
// and the price is refunded. Returns the refunded amount.
func (s *InventoryService) Cancel(ctx context.Context, memberID, inventoryNo uint) (int, error) {
	refund, err := s.exchangeRepo.CancelPurchase(ctx, memberID, inventoryNo)
	if err != nil {
		return 0, fmt.Errorf("s.exchangeRepo.CancelPurchase -> %w", err)
	}
	s.cache.Invalidate(ctx, memberID)

	return refund, nil
}

// Discard drops one unit permanently, with no refund and no stock
// return.
func (s *InventoryService) Discard(ctx context.Context, memberID, inventoryNo uint) error {
	if err := s.exchangeRepo.Discard(ctx, memberID, inventoryNo); err != nil {
		return fmt.Errorf("s.exchangeRepo.Discard -> %w", err)
	}

	return nil
}
