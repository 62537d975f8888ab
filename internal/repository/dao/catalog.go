package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrOutOfStock   = errors.New("item out of stock")
)

type PointItem struct {
	ID uint `gorm:"primaryKey"`

	Name       string `gorm:"not null"`
	Price      int    `gorm:"not null"`
	Stock      int    `gorm:"not null"`
	Type       string `gorm:"not null;index"`
	ReqLevel   string `gorm:"not null"`
	LimitMode  string `gorm:"not null;default:NONE"`
	DailyLimit int    `gorm:"not null;default:0"`
	ImageSrc   string
	Contents   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemFilter narrows List results. Zero values mean "no filter";
// conditions combine with AND.
type ItemFilter struct {
	Type    string
	Keyword string
}

type CatalogDAO struct {
	db *gorm.DB
}

func NewCatalogDAO(db *gorm.DB) *CatalogDAO {
	return &CatalogDAO{
		db: db,
	}
}

func (d *CatalogDAO) Insert(ctx context.Context, item PointItem) (PointItem, error) {
	result := d.db.WithContext(ctx).Create(&item)
	if result.Error != nil {
		return PointItem{}, result.Error
	}

	return item, nil
}

func (d *CatalogDAO) Update(ctx context.Context, item PointItem) (PointItem, error) {
	result := d.db.WithContext(ctx).Model(&PointItem{ID: item.ID}).Updates(map[string]any{
		"name":        item.Name,
		"price":       item.Price,
		"stock":       item.Stock,
		"type":        item.Type,
		"req_level":   item.ReqLevel,
		"limit_mode":  item.LimitMode,
		"daily_limit": item.DailyLimit,
		"image_src":   item.ImageSrc,
		"contents":    item.Contents,
	})
	if result.Error != nil {
		return PointItem{}, result.Error
	}
	if result.RowsAffected == 0 {
		return PointItem{}, ErrItemNotFound
	}

	return d.FindByID(ctx, item.ID)
}

func (d *CatalogDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&PointItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (d *CatalogDAO) FindByID(ctx context.Context, id uint) (PointItem, error) {
	var item PointItem

	result := d.db.WithContext(ctx).First(&item, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return PointItem{}, ErrItemNotFound
		}

		return PointItem{}, result.Error
	}

	return item, nil
}

func (d *CatalogDAO) List(ctx context.Context, filter ItemFilter, page, size int) ([]PointItem, int64, error) {
	query := d.db.WithContext(ctx).Model(&PointItem{})
	if filter.Type != "" && filter.Type != "ALL" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Keyword != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []PointItem
	result := query.Order("id DESC").Offset((page - 1) * size).Limit(size).Find(&items)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return items, total, nil
}
