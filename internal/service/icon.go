package service

import (
	"context"
	"fmt"

	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository"
)

var ErrIconNotFound = repository.ErrIconNotFound

type IconRepository interface {
	Create(ctx context.Context, icon domain.Icon) (domain.Icon, error)
	Update(ctx context.Context, icon domain.Icon) (domain.Icon, error)
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (domain.Icon, error)
	FindByRarity(ctx context.Context, rarity domain.Rarity) ([]domain.Icon, error)
	List(ctx context.Context, filter repository.IconFilter, page, size int) ([]domain.Icon, int64, error)
}

type IconService struct {
	repo IconRepository
}

func NewIconService(repo IconRepository) *IconService {
	return &IconService{
		repo: repo,
	}
}

func (s *IconService) ListIcons(ctx context.Context, filter repository.IconFilter, page, size int) ([]domain.Icon, int64, error) {
	icons, total, err := s.repo.List(ctx, filter, page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.List -> %w", err)
	}

	return icons, total, nil
}

func (s *IconService) GetIcon(ctx context.Context, id uint) (domain.Icon, error) {
	icon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Icon{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return icon, nil
}

func (s *IconService) CreateIcon(ctx context.Context, icon domain.Icon) (domain.Icon, error) {
	created, err := s.repo.Create(ctx, icon)
	if err != nil {
		return domain.Icon{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *IconService) UpdateIcon(ctx context.Context, icon domain.Icon) (domain.Icon, error) {
	updated, err := s.repo.Update(ctx, icon)
	if err != nil {
		return domain.Icon{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

func (s *IconService) DeleteIcon(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
