package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/popcornhub/points-api/internal/domain"
)

func itemTypeValues() []any {
	values := make([]any, len(domain.ItemTypes))
	for i, t := range domain.ItemTypes {
		values[i] = string(t)
	}

	return values
}

// SaveItemRequest creates or updates a catalog item. Stock -1 means
// unlimited.
type SaveItemRequest struct {
	Name        string `json:"name" binding:"required"`
	Price       int    `json:"price"`
	Stock       int    `json:"stock"`
	Type        string `json:"type" binding:"required"`
	ReqTier     string `json:"reqTier"`
	LimitMode   string `json:"limitMode"`
	DailyLimit  int    `json:"dailyLimit"`
	ImageSrc    string `json:"imageSrc"`
	Description string `json:"description"`
}

func (req *SaveItemRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Price, validation.Min(0)),
		validation.Field(&req.Stock, validation.Min(-1)),
		validation.Field(&req.Type, validation.Required, validation.In(itemTypeValues()...)),
		validation.Field(&req.ReqTier, validation.In("GUEST", "REGULAR", "PREMIUM", "ADMIN")),
		validation.Field(&req.LimitMode, validation.In("NONE", "ONCE_PER_ACCOUNT", "PER_DAY")),
		validation.Field(&req.DailyLimit, validation.Min(0)),
	)
}

type SaveIconRequest struct {
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Rarity      string  `json:"rarity" binding:"required"`
	ImageSrc    string  `json:"imageSrc"`
	Description string  `json:"description"`
	MovieRef    *string `json:"movieRef"`
}

func (req *SaveIconRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Category, validation.Required, validation.In("DEFAULT", "MOVIE")),
		validation.Field(&req.Rarity, validation.Required,
			validation.In("COMMON", "RARE", "EPIC", "LEGENDARY", "UNIQUE")),
	)
}

// GrantRequest grants an item or an icon to a member. Exactly one of
// ItemNo/IconID must be set.
type GrantRequest struct {
	MemberID uint  `json:"memberId" binding:"required"`
	ItemNo   *uint `json:"itemNo"`
	IconID   *uint `json:"iconId"`
}

func (req *GrantRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.MemberID, validation.Required, validation.Min(uint(1))),
	)
	if err != nil {
		return err
	}

	if (req.ItemNo == nil) == (req.IconID == nil) {
		return errors.New("exactly one of itemNo and iconId must be set")
	}

	return nil
}

type AdjustPointsRequest struct {
	Amount int    `json:"amount" binding:"required"`
	Note   string `json:"note"`
}

func (req *AdjustPointsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Amount, validation.Required, validation.NotIn(0)),
		validation.Field(&req.Note, validation.Length(0, 200)),
	)
}
