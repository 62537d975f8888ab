package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrInsufficientBalance = errors.New("insufficient point balance")

// PointLedger rows are append-only. Nothing in the codebase updates or
// deletes them; the member balance is always the running sum.
type PointLedger struct {
	ID uint `gorm:"primaryKey"`

	MemberID uint   `gorm:"not null;index"`
	Amount   int    `gorm:"not null"`
	Reason   string `gorm:"not null"`
	Note     string
	ItemNo   *uint `gorm:"index"`

	CreatedAt time.Time `gorm:"not null;index"`
}

func (PointLedger) TableName() string {
	return "point_ledger"
}

type LedgerDAO struct {
	db *gorm.DB
}

func NewLedgerDAO(db *gorm.DB) *LedgerDAO {
	return &LedgerDAO{
		db: db,
	}
}

// SumByMember recomputes the balance from the ledger. This is the source
// of truth; any cached balance defers to it.
func (d *LedgerDAO) SumByMember(ctx context.Context, memberID uint) (int, error) {
	return sumByMember(d.db.WithContext(ctx), memberID)
}

func sumByMember(tx *gorm.DB, memberID uint) (int, error) {
	var balance int64
	err := tx.Model(&PointLedger{}).
		Where("member_id = ?", memberID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&balance).Error
	if err != nil {
		return 0, err
	}

	return int(balance), nil
}

// History returns entries newest-first. Total is computed at query time;
// concurrent appends may shift later pages.
func (d *LedgerDAO) History(ctx context.Context, memberID uint, page, size int) ([]PointLedger, int64, error) {
	query := d.db.WithContext(ctx).Model(&PointLedger{}).Where("member_id = ?", memberID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []PointLedger
	result := query.Order("created_at DESC, id DESC").Offset((page - 1) * size).Limit(size).Find(&entries)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return entries, total, nil
}

// CountPurchasesBetween counts purchase-sourced debits of one item by one
// member inside [from, to). Backs the N-per-day limit.
func (d *LedgerDAO) CountPurchasesBetween(ctx context.Context, memberID, itemNo uint, from, to time.Time) (int, error) {
	return countPurchasesBetween(d.db.WithContext(ctx), memberID, itemNo, from, to)
}

func countPurchasesBetween(tx *gorm.DB, memberID, itemNo uint, from, to time.Time) (int, error) {
	var count int64
	err := tx.Model(&PointLedger{}).
		Where("member_id = ? AND item_no = ? AND reason IN ? AND created_at >= ? AND created_at < ?",
			memberID, itemNo, []string{"PURCHASE", "GIFT_SENT"}, from, to).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

type RankingRow struct {
	MemberID uint
	Nickname string
	Total    int
}

func (d *LedgerDAO) Ranking(ctx context.Context, limit int) ([]RankingRow, error) {
	var rows []RankingRow
	err := d.db.WithContext(ctx).
		Table("point_ledger").
		Select("point_ledger.member_id, members.nickname, COALESCE(SUM(point_ledger.amount), 0) AS total").
		Joins("JOIN members ON members.id = point_ledger.member_id").
		Group("point_ledger.member_id, members.nickname").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// ActiveMemberIDs lists every member with at least one ledger entry.
// Used by the balance-cache reconciler.
func (d *LedgerDAO) ActiveMemberIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := d.db.WithContext(ctx).
		Model(&PointLedger{}).
		Distinct("member_id").
		Pluck("member_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
