package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

// UseItemRequest carries the optional payload of a use action. Nickname
// is only read for nickname-change items.
type UseItemRequest struct {
	Nickname string `json:"nickname"`
}

func (req *UseItemRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Nickname, validation.Length(0, 10)),
	)
}
