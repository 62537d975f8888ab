package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository/dao"
)

var ErrInsufficientBalance = dao.ErrInsufficientBalance

type LedgerDAO interface {
	SumByMember(ctx context.Context, memberID uint) (int, error)
	History(ctx context.Context, memberID uint, page, size int) ([]dao.PointLedger, int64, error)
	CountPurchasesBetween(ctx context.Context, memberID, itemNo uint, from, to time.Time) (int, error)
	Ranking(ctx context.Context, limit int) ([]dao.RankingRow, error)
	ActiveMemberIDs(ctx context.Context) ([]uint, error)
}

type LedgerRepository struct {
	dao LedgerDAO
}

func NewLedgerRepository(dao LedgerDAO) *LedgerRepository {
	return &LedgerRepository{
		dao: dao,
	}
}

func ledgerDAOToDomain(e dao.PointLedger) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:        e.ID,
		MemberID:  e.MemberID,
		Amount:    e.Amount,
		Reason:    domain.LedgerReason(e.Reason),
		Note:      e.Note,
		ItemNo:    e.ItemNo,
		CreatedAt: e.CreatedAt,
	}
}

func (r *LedgerRepository) Balance(ctx context.Context, memberID uint) (int, error) {
	sum, err := r.dao.SumByMember(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.SumByMember -> %w", err)
	}

	return sum, nil
}

func (r *LedgerRepository) History(ctx context.Context, memberID uint, page, size int) ([]domain.LedgerEntry, int64, error) {
	entries, total, err := r.dao.History(ctx, memberID, page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.History -> %w", err)
	}

	result := make([]domain.LedgerEntry, len(entries))
	for i, e := range entries {
		result[i] = ledgerDAOToDomain(e)
	}

	return result, total, nil
}

func (r *LedgerRepository) CountPurchasesBetween(ctx context.Context, memberID, itemNo uint, from, to time.Time) (int, error) {
	count, err := r.dao.CountPurchasesBetween(ctx, memberID, itemNo, from, to)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountPurchasesBetween -> %w", err)
	}

	return count, nil
}

func (r *LedgerRepository) Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	rows, err := r.dao.Ranking(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("r.dao.Ranking -> %w", err)
	}

	entries := make([]domain.RankingEntry, len(rows))
	for i, row := range rows {
		entries[i] = domain.RankingEntry{
			MemberID: row.MemberID,
			Nickname: row.Nickname,
			Total:    row.Total,
		}
	}

	return entries, nil
}

func (r *LedgerRepository) ActiveMemberIDs(ctx context.Context) ([]uint, error) {
	ids, err := r.dao.ActiveMemberIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ActiveMemberIDs -> %w", err)
	}

	return ids, nil
}
