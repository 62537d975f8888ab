package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrIconNotFound = errors.New("icon not found")

type MasterIcon struct {
	ID uint `gorm:"primaryKey"`

	Name     string `gorm:"not null"`
	Category string `gorm:"not null;index"`
	Rarity   string `gorm:"not null;index"`
	ImageSrc string
	Contents string
	MovieRef *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IconFilter narrows List results; conditions combine with AND.
type IconFilter struct {
	Category string
	Rarity   string
	Keyword  string
}

type IconDAO struct {
	db *gorm.DB
}

func NewIconDAO(db *gorm.DB) *IconDAO {
	return &IconDAO{
		db: db,
	}
}

func (d *IconDAO) Insert(ctx context.Context, icon MasterIcon) (MasterIcon, error) {
	result := d.db.WithContext(ctx).Create(&icon)
	if result.Error != nil {
		return MasterIcon{}, result.Error
	}

	return icon, nil
}

func (d *IconDAO) Update(ctx context.Context, icon MasterIcon) (MasterIcon, error) {
	result := d.db.WithContext(ctx).Model(&MasterIcon{ID: icon.ID}).Updates(map[string]any{
		"name":      icon.Name,
		"category":  icon.Category,
		"rarity":    icon.Rarity,
		"image_src": icon.ImageSrc,
		"contents":  icon.Contents,
		"movie_ref": icon.MovieRef,
	})
	if result.Error != nil {
		return MasterIcon{}, result.Error
	}
	if result.RowsAffected == 0 {
		return MasterIcon{}, ErrIconNotFound
	}

	return d.FindByID(ctx, icon.ID)
}

func (d *IconDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&MasterIcon{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrIconNotFound
	}

	return nil
}

func (d *IconDAO) FindByID(ctx context.Context, id uint) (MasterIcon, error) {
	var icon MasterIcon

	result := d.db.WithContext(ctx).First(&icon, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return MasterIcon{}, ErrIconNotFound
		}

		return MasterIcon{}, result.Error
	}

	return icon, nil
}

func (d *IconDAO) FindByRarity(ctx context.Context, rarity string) ([]MasterIcon, error) {
	var icons []MasterIcon

	result := d.db.WithContext(ctx).Where("rarity = ?", rarity).Order("id").Find(&icons)
	if result.Error != nil {
		return nil, result.Error
	}

	return icons, nil
}

func (d *IconDAO) List(ctx context.Context, filter IconFilter, page, size int) ([]MasterIcon, int64, error) {
	query := d.db.WithContext(ctx).Model(&MasterIcon{})
	if filter.Category != "" && filter.Category != "ALL" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Rarity != "" && filter.Rarity != "ALL" {
		query = query.Where("rarity = ?", filter.Rarity)
	}
	if filter.Keyword != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var icons []MasterIcon
	result := query.Order("id DESC").Offset((page - 1) * size).Limit(size).Find(&icons)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return icons, total, nil
}
