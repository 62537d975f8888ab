package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/popcornhub/points-api/internal/cache"
	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository"
)

var (
	ErrAlreadyOwned      = repository.ErrAlreadyOwned
	ErrDailyLimitReached = repository.ErrDailyLimitReached
	ErrDuplicateRequest  = repository.ErrDuplicateRequest

	ErrTierNotMet = errors.New("member tier too low for this item")
	ErrGiftToSelf = errors.New("cannot gift an item to yourself")
)

type ExchangeRepository interface {
	Purchase(ctx context.Context, p repository.PurchaseParams) (domain.InventoryRecord, error)
	Grant(ctx context.Context, memberID uint, itemNo, iconID *uint) (domain.InventoryRecord, error)
	Recall(ctx context.Context, inventoryNo uint) error
	Consume(ctx context.Context, memberID, inventoryNo uint) (domain.InventoryRecord, error)
	ConsumeAndCredit(ctx context.Context, memberID, inventoryNo uint, amount int, reason domain.LedgerReason, note string) error
	ConsumeForNickname(ctx context.Context, memberID, inventoryNo uint, nickname string) error
	ConsumeForHearts(ctx context.Context, memberID, inventoryNo uint, hearts int) error
	DrawGrant(ctx context.Context, memberID, ticketNo, iconID uint) (domain.InventoryRecord, error)
	CancelPurchase(ctx context.Context, memberID, inventoryNo uint) (int, error)
	Discard(ctx context.Context, memberID, inventoryNo uint) error
	Equip(ctx context.Context, memberID, inventoryNo uint) error
	Unequip(ctx context.Context, memberID, inventoryNo uint) error
	AdjustPoints(ctx context.Context, memberID uint, amount int, note string) (int, error)
}

type PurchaseService struct {
	exchangeRepo  ExchangeRepository
	catalogRepo   CatalogRepository
	memberRepo    MemberRepository
	inventoryRepo InventoryRepository
	cache         cache.BalanceCache
	limitZone     *time.Location
}

func NewPurchaseService(exchangeRepo ExchangeRepository, catalogRepo CatalogRepository, memberRepo MemberRepository, inventoryRepo InventoryRepository, balanceCache cache.BalanceCache, limitZone *time.Location) *PurchaseService {
	if limitZone == nil {
		limitZone = time.UTC
	}

	return &PurchaseService{
		exchangeRepo:  exchangeRepo,
		catalogRepo:   catalogRepo,
		memberRepo:    memberRepo,
		inventoryRepo: inventoryRepo,
		cache:         balanceCache,
		limitZone:     limitZone,
	}
}

// dayWindow returns the midnight-to-midnight window holding now, in the
// configured limit timezone.
func (s *PurchaseService) dayWindow(now time.Time) (time.Time, time.Time) {
	local := now.In(s.limitZone)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.limitZone)

	return start, start.AddDate(0, 0, 1)
}

// checkEligibility validates the tier gate before the transaction. The
// transaction re-validates stock and balance; tier never changes
// mid-request.
func (s *PurchaseService) checkEligibility(ctx context.Context, memberID, itemNo uint) (domain.PointItem, error) {
	item, err := s.catalogRepo.FindByID(ctx, itemNo)
	if err != nil {
		return domain.PointItem{}, fmt.Errorf("s.catalogRepo.FindByID -> %w", err)
	}

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return domain.PointItem{}, fmt.Errorf("s.memberRepo.FindByID -> %w", err)
	}

	if member.Tier.Score() < item.ReqTier.Score() {
		return domain.PointItem{}, ErrTierNotMet
	}

	return item, nil
}

// checkNotOwned fails fast on one-per-account items the recipient
// already holds, before the transaction spends any locks. The
// transaction re-checks ownership authoritatively.
func (s *PurchaseService) checkNotOwned(ctx context.Context, recipientID uint, item domain.PointItem) error {
	if item.LimitMode != domain.LimitOnce {
		return nil
	}

	_, err := s.inventoryRepo.FindOwnedItem(ctx, recipientID, item.ID)
	switch {
	case err == nil:
		return ErrAlreadyOwned
	case errors.Is(err, ErrRecordNotFound):
		return nil
	default:
		return fmt.Errorf("s.inventoryRepo.FindOwnedItem -> %w", err)
	}
}

// Buy purchases one unit of an item for the buyer.
func (s *PurchaseService) Buy(ctx context.Context, memberID, itemNo uint, idempotencyKey string) (domain.InventoryRecord, error) {
	item, err := s.checkEligibility(ctx, memberID, itemNo)
	if err != nil {
		return domain.InventoryRecord{}, err
	}
	if err = s.checkNotOwned(ctx, memberID, item); err != nil {
		return domain.InventoryRecord{}, err
	}

	dayStart, dayEnd := s.dayWindow(time.Now())
	record, err := s.exchangeRepo.Purchase(ctx, repository.PurchaseParams{
		PayerID:        memberID,
		RecipientID:    memberID,
		ItemNo:         itemNo,
		Reason:         domain.ReasonPurchase,
		Source:         domain.SourcePurchase,
		Note:           item.Name,
		IdempotencyKey: idempotencyKey,
		DayStart:       dayStart,
		DayEnd:         dayEnd,
	})
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("s.exchangeRepo.Purchase -> %w", err)
	}
	s.cache.Invalidate(ctx, memberID)

	return record, nil
}

// Gift purchases one unit at the giver's expense and delivers it to the
// recipient. The recipient's tier is not checked; only the payer must
// qualify.
func (s *PurchaseService) Gift(ctx context.Context, giverID uint, recipientLoginID string, itemNo uint, idempotencyKey string) (domain.InventoryRecord, error) {
	recipient, err := s.memberRepo.FindByLoginID(ctx, recipientLoginID)
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("s.memberRepo.FindByLoginID -> %w", err)
	}
	if recipient.ID == giverID {
		return domain.InventoryRecord{}, ErrGiftToSelf
	}

	item, err := s.checkEligibility(ctx, giverID, itemNo)
	if err != nil {
		return domain.InventoryRecord{}, err
	}
	if err = s.checkNotOwned(ctx, recipient.ID, item); err != nil {
		return domain.InventoryRecord{}, err
	}

	dayStart, dayEnd := s.dayWindow(time.Now())
	transferRef := uuid.NewString()
	record, err := s.exchangeRepo.Purchase(ctx, repository.PurchaseParams{
		PayerID:        giverID,
		RecipientID:    recipient.ID,
		ItemNo:         itemNo,
		Reason:         domain.ReasonGiftSent,
		Source:         domain.SourceGift,
		Note:           fmt.Sprintf("%s (gift %s)", item.Name, transferRef),
		IdempotencyKey: idempotencyKey,
		DayStart:       dayStart,
		DayEnd:         dayEnd,
	})
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("s.exchangeRepo.Purchase -> %w", err)
	}
	s.cache.Invalidate(ctx, giverID)

	return record, nil
}

// AdminGrant places an item or an icon directly into a member's
// inventory, free of charge. Exactly one of itemNo/iconID must be set.
func (s *PurchaseService) AdminGrant(ctx context.Context, memberID uint, itemNo, iconID *uint) (domain.InventoryRecord, error) {
	record, err := s.exchangeRepo.Grant(ctx, memberID, itemNo, iconID)
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("s.exchangeRepo.Grant -> %w", err)
	}

	return record, nil
}

// AdminRecall removes an inventory stack without a refund.
func (s *PurchaseService) AdminRecall(ctx context.Context, inventoryNo uint) error {
	if err := s.exchangeRepo.Recall(ctx, inventoryNo); err != nil {
		return fmt.Errorf("s.exchangeRepo.Recall -> %w", err)
	}

	return nil
}
