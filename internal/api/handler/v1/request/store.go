package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type BuyItemRequest struct {
	ItemNo uint `json:"itemNo" binding:"required"`
}

func (req *BuyItemRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ItemNo, validation.Required, validation.Min(uint(1))),
	)
}

type GiftItemRequest struct {
	ItemNo           uint   `json:"itemNo" binding:"required"`
	RecipientLoginID string `json:"recipientLoginId" binding:"required"`
}

func (req *GiftItemRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ItemNo, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.RecipientLoginID, validation.Required, validation.Length(1, 50)),
	)
}
