package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrRecordNotFound  = errors.New("inventory record not found")
	ErrAlreadyEquipped = errors.New("item already equipped")
	ErrNotEquipped     = errors.New("item not equipped")
	ErrInvalidState    = errors.New("action not allowed in current state")
)

// Inventory is one owned stack. Exactly one of ItemNo/IconID is set;
// quantity never persists at zero.
type Inventory struct {
	ID uint `gorm:"primaryKey"`

	MemberID uint  `gorm:"not null;index"`
	ItemNo   *uint `gorm:"index"`
	IconID   *uint `gorm:"index"`

	Quantity int    `gorm:"not null;default:1"`
	Equipped bool   `gorm:"not null;default:false"`
	Slot     string `gorm:"index"`
	Source   string `gorm:"not null"`

	Item *PointItem  `gorm:"foreignKey:ItemNo"`
	Icon *MasterIcon `gorm:"foreignKey:IconID"`

	CreatedAt time.Time `gorm:"not null"`
}

func (Inventory) TableName() string {
	return "inventories"
}

type InventoryDAO struct {
	db *gorm.DB
}

func NewInventoryDAO(db *gorm.DB) *InventoryDAO {
	return &InventoryDAO{
		db: db,
	}
}

func (d *InventoryDAO) FindByID(ctx context.Context, id uint) (Inventory, error) {
	var record Inventory

	result := d.db.WithContext(ctx).Preload("Item").Preload("Icon").First(&record, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Inventory{}, ErrRecordNotFound
		}

		return Inventory{}, result.Error
	}

	return record, nil
}

func (d *InventoryDAO) FindByMember(ctx context.Context, memberID uint) ([]Inventory, error) {
	var records []Inventory

	result := d.db.WithContext(ctx).
		Preload("Item").
		Preload("Icon").
		Where("member_id = ?", memberID).
		Order("created_at DESC, id DESC").
		Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}

	return records, nil
}

// FindOwnedItem returns the member's live stack for an item, if any.
// Backs the one-per-account check outside transactions.
func (d *InventoryDAO) FindOwnedItem(ctx context.Context, memberID, itemNo uint) (Inventory, error) {
	var record Inventory

	result := d.db.WithContext(ctx).
		Where("member_id = ? AND item_no = ?", memberID, itemNo).
		First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Inventory{}, ErrRecordNotFound
		}

		return Inventory{}, result.Error
	}

	return record, nil
}

// FindEquipped returns the currently equipped record in a slot, if any.
func (d *InventoryDAO) FindEquipped(ctx context.Context, memberID uint, slot string) (Inventory, error) {
	var record Inventory

	result := d.db.WithContext(ctx).
		Preload("Item").
		Preload("Icon").
		Where("member_id = ? AND slot = ? AND equipped", memberID, slot).
		First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Inventory{}, ErrRecordNotFound
		}

		return Inventory{}, result.Error
	}

	return record, nil
}
