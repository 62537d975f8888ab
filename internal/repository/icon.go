package repository

import (
	"context"
	"fmt"

	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository/dao"
)

var ErrIconNotFound = dao.ErrIconNotFound

type IconDAO interface {
	Insert(ctx context.Context, icon dao.MasterIcon) (dao.MasterIcon, error)
	Update(ctx context.Context, icon dao.MasterIcon) (dao.MasterIcon, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (dao.MasterIcon, error)
	FindByRarity(ctx context.Context, rarity string) ([]dao.MasterIcon, error)
	List(ctx context.Context, filter dao.IconFilter, page, size int) ([]dao.MasterIcon, int64, error)
}

type IconFilter struct {
	Category string
	Rarity   string
	Keyword  string
}

type IconRepository struct {
	dao IconDAO
}

func NewIconRepository(dao IconDAO) *IconRepository {
	return &IconRepository{
		dao: dao,
	}
}

func iconDomainToDAO(i domain.Icon) dao.MasterIcon {
	return dao.MasterIcon{
		ID:       i.ID,
		Name:     i.Name,
		Category: string(i.Category),
		Rarity:   string(i.Rarity),
		ImageSrc: i.ImageSrc,
		Contents: i.Description,
		MovieRef: i.MovieRef,
	}
}

func iconDAOToDomain(i dao.MasterIcon) domain.Icon {
	return domain.Icon{
		ID:          i.ID,
		Name:        i.Name,
		Category:    domain.IconCategory(i.Category),
		Rarity:      domain.Rarity(i.Rarity),
		ImageSrc:    i.ImageSrc,
		Description: i.Contents,
		MovieRef:    i.MovieRef,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func iconsDAOToDomain(icons []dao.MasterIcon) []domain.Icon {
	result := make([]domain.Icon, len(icons))
	for i, icon := range icons {
		result[i] = iconDAOToDomain(icon)
	}

	return result
}

func (r *IconRepository) Create(ctx context.Context, icon domain.Icon) (domain.Icon, error) {
	created, err := r.dao.Insert(ctx, iconDomainToDAO(icon))
	if err != nil {
		return domain.Icon{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return iconDAOToDomain(created), nil
}

func (r *IconRepository) Update(ctx context.Context, icon domain.Icon) (domain.Icon, error) {
	updated, err := r.dao.Update(ctx, iconDomainToDAO(icon))
	if err != nil {
		return domain.Icon{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return iconDAOToDomain(updated), nil
}

func (r *IconRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *IconRepository) FindByID(ctx context.Context, id uint) (domain.Icon, error) {
	icon, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Icon{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return iconDAOToDomain(icon), nil
}

func (r *IconRepository) FindByRarity(ctx context.Context, rarity domain.Rarity) ([]domain.Icon, error) {
	icons, err := r.dao.FindByRarity(ctx, string(rarity))
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByRarity -> %w", err)
	}

	return iconsDAOToDomain(icons), nil
}

func (r *IconRepository) List(ctx context.Context, filter IconFilter, page, size int) ([]domain.Icon, int64, error) {
	icons, total, err := r.dao.List(ctx, dao.IconFilter(filter), page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.List -> %w", err)
	}

	return iconsDAOToDomain(icons), total, nil
}
