package service

import (
	"context"
	"fmt"

	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository"
)

var (
	ErrItemNotFound = repository.ErrItemNotFound
	ErrOutOfStock   = repository.ErrOutOfStock
)

type CatalogRepository interface {
	Create(ctx context.Context, item domain.PointItem) (domain.PointItem, error)
	Update(ctx context.Context, item domain.PointItem) (domain.PointItem, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (domain.PointItem, error)
	List(ctx context.Context, filter repository.ItemFilter, page, size int) ([]domain.PointItem, int64, error)
}

type WishRepository interface {
	Toggle(ctx context.Context, memberID, itemNo uint) (bool, error)
	ListItemNos(ctx context.Context, memberID uint) ([]uint, error)
}

// StoreListing is a catalog page annotated with the viewer's wishes.
type StoreListing struct {
	Items   []domain.PointItem
	Wished  map[uint]bool
	Total   int64
	Page    int
	PerPage int
}

type CatalogService struct {
	repo     CatalogRepository
	wishRepo WishRepository
}

func NewCatalogService(repo CatalogRepository, wishRepo WishRepository) *CatalogService {
	return &CatalogService{
		repo:     repo,
		wishRepo: wishRepo,
	}
}

func (s *CatalogService) ListItems(ctx context.Context, memberID uint, filter repository.ItemFilter, page, size int) (StoreListing, error) {
	items, total, err := s.repo.List(ctx, filter, page, size)
	if err != nil {
		return StoreListing{}, fmt.Errorf("s.repo.List -> %w", err)
	}

	wishedNos, err := s.wishRepo.ListItemNos(ctx, memberID)
	if err != nil {
		return StoreListing{}, fmt.Errorf("s.wishRepo.ListItemNos -> %w", err)
	}

	wished := make(map[uint]bool, len(wishedNos))
	for _, no := range wishedNos {
		wished[no] = true
	}

	return StoreListing{
		Items:   items,
		Wished:  wished,
		Total:   total,
		Page:    page,
		PerPage: size,
	}, nil
}

func (s *CatalogService) GetItem(ctx context.Context, id uint) (domain.PointItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.PointItem{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return item, nil
}

func (s *CatalogService) CreateItem(ctx context.Context, item domain.PointItem) (domain.PointItem, error) {
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return domain.PointItem{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *CatalogService) UpdateItem(ctx context.Context, item domain.PointItem) (domain.PointItem, error) {
	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return domain.PointItem{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// ToggleWish flips the wish mark and reports the new state.
func (s *CatalogService) ToggleWish(ctx context.Context, memberID, itemNo uint) (bool, error) {
	if _, err := s.repo.FindByID(ctx, itemNo); err != nil {
		return false, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	wished, err := s.wishRepo.Toggle(ctx, memberID, itemNo)
	if err != nil {
		return false, fmt.Errorf("s.wishRepo.Toggle -> %w", err)
	}

	return wished, nil
}
