package repository

import (
	"context"
	"fmt"

	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository/dao"
)

var (
	ErrRecordNotFound  = dao.ErrRecordNotFound
	ErrAlreadyEquipped = dao.ErrAlreadyEquipped
	ErrNotEquipped     = dao.ErrNotEquipped
	ErrInvalidState    = dao.ErrInvalidState
)

type InventoryDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Inventory, error)
	FindByMember(ctx context.Context, memberID uint) ([]dao.Inventory, error)
	FindOwnedItem(ctx context.Context, memberID, itemNo uint) (dao.Inventory, error)
	FindEquipped(ctx context.Context, memberID uint, slot string) (dao.Inventory, error)
}

type InventoryRepository struct {
	dao InventoryDAO
}

func NewInventoryRepository(dao InventoryDAO) *InventoryRepository {
	return &InventoryRepository{
		dao: dao,
	}
}

func inventoryDAOToDomain(rec dao.Inventory) domain.InventoryRecord {
	record := domain.InventoryRecord{
		ID:        rec.ID,
		MemberID:  rec.MemberID,
		ItemNo:    rec.ItemNo,
		IconID:    rec.IconID,
		Quantity:  rec.Quantity,
		Equipped:  rec.Equipped,
		Slot:      rec.Slot,
		Source:    domain.AcquisitionSource(rec.Source),
		CreatedAt: rec.CreatedAt,
	}

	if rec.Item != nil {
		item := itemDAOToDomain(*rec.Item)
		record.Item = &item
	}
	if rec.Icon != nil {
		icon := iconDAOToDomain(*rec.Icon)
		record.Icon = &icon
	}

	return record
}

func inventoriesDAOToDomain(recs []dao.Inventory) []domain.InventoryRecord {
	result := make([]domain.InventoryRecord, len(recs))
	for i, rec := range recs {
		result[i] = inventoryDAOToDomain(rec)
	}

	return result
}

func (r *InventoryRepository) FindByID(ctx context.Context, id uint) (domain.InventoryRecord, error) {
	rec, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return inventoryDAOToDomain(rec), nil
}

func (r *InventoryRepository) FindByMember(ctx context.Context, memberID uint) ([]domain.InventoryRecord, error) {
	recs, err := r.dao.FindByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByMember -> %w", err)
	}

	return inventoriesDAOToDomain(recs), nil
}

func (r *InventoryRepository) FindOwnedItem(ctx context.Context, memberID, itemNo uint) (domain.InventoryRecord, error) {
	rec, err := r.dao.FindOwnedItem(ctx, memberID, itemNo)
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("r.dao.FindOwnedItem -> %w", err)
	}

	return inventoryDAOToDomain(rec), nil
}

func (r *InventoryRepository) FindEquipped(ctx context.Context, memberID uint, slot string) (domain.InventoryRecord, error) {
	rec, err := r.dao.FindEquipped(ctx, memberID, slot)
	if err != nil {
		return domain.InventoryRecord{}, fmt.Errorf("r.dao.FindEquipped -> %w", err)
	}

	return inventoryDAOToDomain(rec), nil
}
