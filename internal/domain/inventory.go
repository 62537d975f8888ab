package domain

import "time"

type AcquisitionSource string

const (
	SourcePurchase   AcquisitionSource = "PURCHASE"
	SourceGift       AcquisitionSource = "GIFT"
	SourceAdminGrant AcquisitionSource = "ADMIN_GRANT"
	SourceGacha      AcquisitionSource = "GACHA"
)

// InventoryRecord is one owned stack of an item or an icon. Exactly one
// of ItemNo/IconID is set. Quantity is always >= 1; a stack that reaches
// zero is deleted, never left dangling.
type InventoryRecord struct {
	ID       uint  `json:"inventoryNo"`
	MemberID uint  `json:"memberId"`
	ItemNo   *uint `json:"inventoryItemNo,omitempty"`
	IconID   *uint `json:"inventoryIconId,omitempty"`

	Quantity int               `json:"quantity"`
	Equipped bool              `json:"equipped"`
	Slot     string            `json:"slot,omitempty"`
	Source   AcquisitionSource `json:"source"`

	Item *PointItem `json:"item,omitempty"`
	Icon *Icon      `json:"icon,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsIcon reports whether the record holds a master icon rather than a
// catalog item.
func (r InventoryRecord) IsIcon() bool {
	return r.IconID != nil
}
