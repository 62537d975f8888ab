package repository

import (
	"context"
	"fmt"

	"github.com/popcornhub/points-api/internal/domain"
	"github.com/popcornhub/points-api/internal/repository/dao"
)

var ErrMemberNotFound = dao.ErrMemberNotFound

type MemberDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Member, error)
	FindByLoginID(ctx context.Context, loginID string) (dao.Member, error)
	List(ctx context.Context, keyword string, page, size int) ([]dao.Member, int64, error)
}

type MemberRepository struct {
	dao MemberDAO
}

func NewMemberRepository(dao MemberDAO) *MemberRepository {
	return &MemberRepository{
		dao: dao,
	}
}

func memberDAOToDomain(m dao.Member) domain.Member {
	return domain.Member{
		ID:        m.ID,
		LoginID:   m.LoginID,
		Nickname:  m.Nickname,
		Tier:      domain.Tier(m.Level),
		Hearts:    m.Hearts,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *MemberRepository) FindByID(ctx context.Context, id uint) (domain.Member, error) {
	member, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Member{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return memberDAOToDomain(member), nil
}

func (r *MemberRepository) FindByLoginID(ctx context.Context, loginID string) (domain.Member, error) {
	member, err := r.dao.FindByLoginID(ctx, loginID)
	if err != nil {
		return domain.Member{}, fmt.Errorf("r.dao.FindByLoginID -> %w", err)
	}

	return memberDAOToDomain(member), nil
}

func (r *MemberRepository) List(ctx context.Context, keyword string, page, size int) ([]domain.Member, int64, error) {
	members, total, err := r.dao.List(ctx, keyword, page, size)
	if err != nil {
		return nil, 0, fmt.Errorf("r.dao.List -> %w", err)
	}

	result := make([]domain.Member, len(members))
	for i, m := range members {
		result[i] = memberDAOToDomain(m)
	}

	return result, total, nil
}
