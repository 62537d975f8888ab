package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository/dao"
)

var (
	ErrAlreadyOwned      = dao.ErrAlreadyOwned
	ErrDailyLimitReached = dao.ErrDailyLimitReached
	ErrDuplicateRequest  = dao.ErrDuplicateRequest
)

type ExchangeDAO interface {
	Purchase(ctx context.Context, p dao.PurchaseParams) (dao.Inventory, error)
	Grant(ctx context.Context, memberID uint, itemNo, iconID *uint) (dao.Inventory, error)
	Recall(ctx context.Context, inventoryNo uint) error
	Consume(ctx context.Context, memberID, inventoryNo uint) (dao.Inventory, error)
	ConsumeAndCredit(ctx context.Context, memberID, inventoryNo uint, amount int, reason, note string) error
	ConsumeForNickname(ctx context.Context, memberID, inventoryNo uint, nickname string) error
	ConsumeForHearts(ctx context.Context, memberID, inventoryNo uint, hearts int) error
	DrawGrant(ctx context.Context, memberID, ticketNo, iconID uint) (dao.Inventory, error)
	CancelPurchase(ctx context.Context, memberID, inventoryNo uint) (int, error)
	Discard(ctx context.Context, memberID, inventoryNo uint) error
	Equip(ctx context.Context, memberID, inventoryNo uint) error
	Unequip(ctx context.Context, memberID, inventoryNo uint) error
	AdjustPoints(ctx context.Context, memberID uint, amount int, note string) (int, error)
}

// PurchaseParams drives a purchase transaction. Buy sets
// PayerID == RecipientID; gift splits them.
type PurchaseParams struct {
	PayerID     uint
	RecipientID uint
	ItemNo      uint

	Reason domain.LedgerReason
	Source domain.AcquisitionSource
	Note   string

	IdempotencyKey string

	DayStart time.Time
	DayEnd   time.Time
}

type ExchangeRepository struct {
	dao ExchangeDAO
}

func NewExchangeRepository(dao ExchangeDAO) *ExchangeRepository {
	return &ExchangeRepository{
		dao: dao,
	}
}

func (r *ExchangeRepository) Purchase(ctx context.Context, p PurchaseParams) (domain.InventoryRecord, error) {
	rec, err := r.dao.Purchase(ctx, dao.PurchaseParams{
		PayerID:        p.PayerID,
		RecipientID:    p.RecipientID,
		ItemNo:         p.ItemNo,
		Reason:         string(p.Reason),
		Source:         string(p.Source),
		Note:           p.Note,
		IdempotencyKey: p.IdempotencyKey,
		DayStart:       p.DayStart,
		DayEnd:         p.DayEnd,
	})
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("r.dao.Purchase -> %w", err)
	}

	return inventoryDAOToDomain(rec), nil
}

func (r *ExchangeRepository) Grant(ctx context.Context, memberID uint, itemNo, iconID *uint) (domain.InventoryRecord, error) {
	rec, err := r.dao.Grant(ctx, memberID, itemNo, iconID)
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("r.dao.Grant -> %w", err)
	}

	return inventoryDAOToDomain(rec), nil
}

func (r *ExchangeRepository) Recall(ctx context.Context, inventoryNo uint) error {
	if err := r.dao.Recall(ctx, inventoryNo); err != nil {
		return fmt.Errorf("r.dao.Recall -> %w", err)
	}

	return nil
}

func (r *ExchangeRepository) Consume(ctx context.Context, memberID, inventoryNo uint) (domain.InventoryRecord, error) {
	rec, err := r.dao.Consume(ctx, memberID, inventoryNo)
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("r.dao.Consume -> %w", err)
	}

	return inventoryDAOToDomain(rec), nil
}

func (r *ExchangeRepository) ConsumeAndCredit(ctx context.Context, memberID, inventoryNo uint, amount int, reason domain.LedgerReason, note string) error {
	err := r.dao.ConsumeAndCredit(ctx, memberID, inventoryNo, amount, string(reason), note)
	if err != nil {
		return fmt.Errorf("r.dao.ConsumeAndCredit -> %w", err)
	}

	return nil
}

func (r *ExchangeRepository) ConsumeForNickname(ctx context.Context, memberID, inventoryNo uint, nickname string) error {
	if err := r.dao.ConsumeForNickname(ctx, memberID, inventoryNo, nickname); err != nil {
		return fmt.Errorf("r.dao.ConsumeForNickname -> %w", err)
	}

	return nil
}

func (r *ExchangeRepository) ConsumeForHearts(ctx context.Context, memberID, inventoryNo uint, hearts int) error {
	if err := r.dao.ConsumeForHearts(ctx, memberID, inventoryNo, hearts); err != nil {
		return fmt.Errorf("r.dao.ConsumeForHearts -> %w", err)
	}

	return nil
}

func (r *ExchangeRepository) DrawGrant(ctx context.Context, memberID, ticketNo, iconID uint) (domain.InventoryRecord, error) {
	rec, err := r.dao.DrawGrant(ctx, memberID, ticketNo, iconID)
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("r.dao.DrawGrant -> %w", err)
	}

	return inventoryDAOToDomain(rec), nil
}

func (r *ExchangeRepository) CancelPurchase(ctx context.Context, memberID, inventoryNo uint) (int, error) {
	refund, err := r.dao.CancelPurchase(ctx, memberID, inventoryNo)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CancelPurchase -> %w", err)
	}

	return refund, nil
}

func (r *ExchangeRepository) Discard(ctx context.Context, memberID, inventoryNo uint) error {
	if err := r.dao.Discard(ctx, memberID, inventoryNo); err != nil {
		return fmt.Errorf("r.dao.Discard -> %w", err)
	}

	return nil
}

func (r *ExchangeRepository) Equip(ctx context.Context, memberID, inventoryNo uint) error {
	if err := r.dao.Equip(ctx, memberID, inventoryNo); err != nil {
		return fmt.Errorf("r.dao.Equip -> %w", err)
	}

	return nil
}

func (r *ExchangeRepository) Unequip(ctx context.Context, memberID, inventoryNo uint) error {
	if err := r.dao.Unequip(ctx, memberID, inventoryNo); err != nil {
		return fmt.Errorf("r.dao.Unequip -> %w", err)
	}

	return nil
}

func (r *ExchangeRepository) AdjustPoints(ctx context.Context, memberID uint, amount int, note string) (int, error) {
	balance, err := r.dao.AdjustPoints(ctx, memberID, amount, note)
	if err != nil {
		return 0, fmt.Errorf("r.dao.AdjustPoints -> %w", err)
	}

	return balance, nil
}
