package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Wish struct {
	ID uint `gorm:"primaryKey"`

	MemberID uint `gorm:"not null;uniqueIndex:idx_wish_member_item"`
	ItemNo   uint `gorm:"not null;uniqueIndex:idx_wish_member_item"`

	CreatedAt time.Time `gorm:"not null"`
}

type WishDAO struct {
	db *gorm.DB
}

func NewWishDAO(db *gorm.DB) *WishDAO {
	return &WishDAO{
		db: db,
	}
}

// Toggle flips the wish state for (member, item) and reports the new
// state. The unique index makes concurrent toggles collapse to a single
// insert; the loser of the race falls through to the delete path.
func (d *WishDAO) Toggle(ctx context.Context, memberID, itemNo uint) (bool, error) {
	wish := Wish{MemberID: memberID, ItemNo: itemNo}

	result := d.db.WithContext(ctx).Create(&wish)
	if result.Error == nil {
		return true, nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(result.Error, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false, result.Error
	}

	result = d.db.WithContext(ctx).
		Where("member_id = ? AND item_no = ?", memberID, itemNo).
		Delete(&Wish{})
	if result.Error != nil {
		return false, result.Error
	}

	return false, nil
}

func (d *WishDAO) ListItemNos(ctx context.Context, memberID uint) ([]uint, error) {
	var itemNos []uint
	err := d.db.WithContext(ctx).
		Model(&Wish{}).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Pluck("item_no", &itemNos).Error
	if err != nil {
		return nil, err
	}

	return itemNos, nil
}
