package service

import (
	"context"
	"fmt"

	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository"
)

var ErrMemberNotFound = repository.ErrMemberNotFound

type MemberRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Member, error)
	FindByLoginID(ctx context.Context, loginID string) (domain.Member, error)
	List(ctx context.Context, keyword string, page, size int) ([]domain.Member, int64, error)
}

type MemberService struct {
	repo MemberRepository
}

func NewMemberService(repo MemberRepository) *MemberService {
	return &MemberService{
		repo: repo,
	}
}

func (s *MemberService) GetMember(ctx context.Context, id uint) (domain.Member, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Member{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return member, nil
}

func (s *MemberService) GetMemberByLoginID(ctx context.Context, loginID string) (domain.Member, error) {
	member, err := s.repo.FindByLoginID(ctx, loginID)
	if err != nil {
		return domain.Member{}, fmt.Errorf("s.repo.FindByLoginID -> %w", err)
	}

	return member, nil
}

func (s *MemberService) ListMembers(ctx context.Context, keyword string, page, size int) ([]domain.Member, int64, error) {
	members, total, err := s.repo.List(ctx, keyword, page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("s.repo.List -> %w", err)
	}

	return members, total, nil
}
