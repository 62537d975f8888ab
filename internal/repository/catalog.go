package repository

import (
	"context"
	"fmt"

	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository/dao"
)

var (
	ErrItemNotFound = dao.ErrItemNotFound
	ErrOutOfStock   = dao.ErrOutOfStock
)

type CatalogDAO interface {
	Insert(ctx context.Context, item dao.PointItem) (dao.PointItem, error)
	Update(ctx context.Context, item dao.PointItem) (dao.PointItem, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (dao.PointItem, error)
	List(ctx context.Context, filter dao.ItemFilter, page, size int) ([]dao.PointItem, int64, error)
}

// ItemFilter narrows catalog listings; zero values mean no filter.
type ItemFilter struct {
	Type    string
	Keyword string
}

type CatalogRepository struct {
	dao CatalogDAO
}

func NewCatalogRepository(dao CatalogDAO) *CatalogRepository {
	return &CatalogRepository{
		dao: dao,
	}
}

func itemDomainToDAO(i domain.PointItem) dao.PointItem {
	return dao.PointItem{
		ID:         i.ID,
		Name:       i.Name,
		Price:      i.Price,
		Stock:      i.Stock,
		Type:       string(i.Type),
		ReqLevel:   string(i.ReqTier),
		LimitMode:  string(i.LimitMode),
		DailyLimit: i.DailyLimit,
		ImageSrc:   i.ImageSrc,
		Contents:   i.Description,
	}
}

func itemDAOToDomain(i dao.PointItem) domain.PointItem {
	return domain.PointItem{
		ID:          i.ID,
		Name:        i.Name,
		Price:       i.Price,
		Stock:       i.Stock,
		Type:        domain.ItemType(i.Type),
		ReqTier:     domain.Tier(i.ReqLevel),
		LimitMode:   domain.LimitMode(i.LimitMode),
		DailyLimit:  i.DailyLimit,
		ImageSrc:    i.ImageSrc,
		Description: i.Contents,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func itemsDAOToDomain(items []dao.PointItem) []domain.PointItem {
	result := make([]domain.PointItem, len(items))
	for i, item := range items {
		result[i] = itemDAOToDomain(item)
	}

	return result
}

func (r *CatalogRepository) Create(ctx context.Context, item domain.PointItem) (domain.PointItem, error) {
	created, err := r.dao.Insert(ctx, itemDomainToDAO(item))
	if err != nil {
		return domain.PointItem{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return itemDAOToDomain(created), nil
}

func (r *CatalogRepository) Update(ctx context.Context, item domain.PointItem) (domain.PointItem, error) {
	updated, err := r.dao.Update(ctx, itemDomainToDAO(item))
	if err != nil {
		return domain.PointItem{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return itemDAOToDomain(updated), nil
}

func (r *CatalogRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *CatalogRepository) FindByID(ctx context.Context, id uint) (domain.PointItem, error) {
	item, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.PointItem{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return itemDAOToDomain(item), nil
}

func (r *CatalogRepository) List(ctx context.Context, filter ItemFilter, page, size int) ([]domain.PointItem, int64, error) {
	items, total, err := r.dao.List(ctx, dao.ItemFilter(filter), page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.List -> %w", err)
	}

	return itemsDAOToDomain(items), total, nil
}
