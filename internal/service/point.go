package service

import (
	"context"
	"fmt"
	"time"

	"github.com/popcornhub/points-api/internal/cache"
	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository"
)

var ErrInsufficientBalance = repository.ErrInsufficientBalance

type LedgerRepository interface {
	Balance(ctx context.Context, memberID uint) (int, error)
	History(ctx context.Context, memberID uint, page, size int) ([]domain.LedgerEntry, int64, error)
	CountPurchasesBetween(ctx context.Context, memberID, itemNo uint, from, to time.Time) (int, error)
	Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error)
}

type PointService struct {
	ledgerRepo   LedgerRepository
	exchangeRepo ExchangeRepository
	memberRepo   MemberRepository
	cache        cache.BalanceCache
}

func NewPointService(ledgerRepo LedgerRepository, exchangeRepo ExchangeRepository, memberRepo MemberRepository, balanceCache cache.BalanceCache) *PointService {
	return &PointService{
		ledgerRepo:   ledgerRepo,
		exchangeRepo: exchangeRepo,
		memberRepo:   memberRepo,
		cache:        balanceCache,
	}
}

// Balance serves from the cache when possible and repopulates it from
// the ledger on a miss.
func (s *PointService) Balance(ctx context.Context, memberID uint) (int, error) {
	if balance, ok := s.cache.Get(ctx, memberID); ok {
		return balance, nil
	}

	if _, err := s.memberRepo.FindByID(ctx, memberID); err != nil {
		return 0, fmt.Errorf("s.memberRepo.FindByID -> %w", err)
	}

	balance, err := s.ledgerRepo.Balance(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("s.ledgerRepo.Balance -> %w", err)
	}
	s.cache.Set(ctx, memberID, balance)

	return balance, nil
}

func (s *PointService) History(ctx context.Context, memberID uint, page, size int) ([]domain.LedgerEntry, int64, error) {
	entries, total, err := s.ledgerRepo.History(ctx, memberID, page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("s.ledgerRepo.History -> %w", err)
	}

	return entries, total, nil
}

func (s *PointService) Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	entries, err := s.ledgerRepo.Ranking(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("s.ledgerRepo.Ranking -> %w", err)
	}

	return entries, nil
}

// AdjustPoints applies an admin credit or debit and returns the new
// balance. A debit past zero is rejected inside the transaction.
func (s *PointService) AdjustPoints(ctx context.Context, memberID uint, amount int, note string) (int, error) {
	if _, err := s.memberRepo.FindByID(ctx, memberID); err != nil {
		return 0, fmt.Errorf("s.memberRepo.FindByID -> %w", err)
	}

	balance, err := s.exchangeRepo.AdjustPoints(ctx, memberID, amount, note)
	if err != nil {
		return 0, fmt.Errorf("s.exchangeRepo.AdjustPoints -> %w", err)
	}
	s.cache.Invalidate(ctx, memberID)

	return balance, nil
}
