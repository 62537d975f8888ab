package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrMemberNotFound = errors.New("member not found")

type Member struct {
	ID uint `gorm:"primaryKey"`

	LoginID  string `gorm:"unique;not null"`
	Nickname string `gorm:"not null"`
	Level    string `gorm:"not null"`
	Hearts   int    `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type MemberDAO struct {
	db *gorm.DB
}

func NewMemberDAO(db *gorm.DB) *MemberDAO {
	return &MemberDAO{
		db: db,
	}
}

func (d *MemberDAO) FindByID(ctx context.Context, id uint) (Member, error) {
	var member Member

	result := d.db.WithContext(ctx).First(&member, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Member{}, ErrMemberNotFound
		}

		return Member{}, result.Error
	}

	return member, nil
}

func (d *MemberDAO) FindByLoginID(ctx context.Context, loginID string) (Member, error) {
	var member Member

	result := d.db.WithContext(ctx).First(&member, "login_id = ?", loginID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Member{}, ErrMemberNotFound
		}

		return Member{}, result.Error
	}

	return member, nil
}

func (d *MemberDAO) List(ctx context.Context, keyword string, page, size int) ([]Member, int64, error) {
	query := d.db.WithContext(ctx).Model(&Member{})
	if keyword != "" {
		query = query.Where("login_id ILIKE ? OR nickname ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []Member
	result := query.Order("id").Offset((page - 1) * size).Limit(size).Find(&members)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return members, total, nil
}
