package repository

import (
	"context"
	"fmt"
)

type WishDAO interface {
	Toggle(ctx context.Context, memberID, itemNo uint) (bool, error)
	ListItemNos(ctx context.Context, memberID uint) ([]uint, error)
}

type WishRepository struct {
	dao WishDAO
}

func NewWishRepository(dao WishDAO) *WishRepository {
	return &WishRepository{
		dao: dao,
	}
}

// Toggle flips the wish state for the pair and reports whether it is now
// wished.
func (r *WishRepository) Toggle(ctx context.Context, memberID, itemNo uint) (bool, error) {
	wished, err := r.dao.Toggle(ctx, memberID, itemNo)
	if err != nil {
		return false, fmt.Errorf("r.dao.Toggle -> %w", err)
	}

	return wished, nil
}

func (r *WishRepository) ListItemNos(ctx context.Context, memberID uint) ([]uint, error) {
	itemNos, err := r.dao.ListItemNos(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListItemNos -> %w", err)
	}

	return itemNos, nil
}
