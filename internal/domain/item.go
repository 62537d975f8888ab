package domain

import "time"

type ItemType string

const (
	ItemDecoBG         ItemType = "DECO_BG"
	ItemDecoFrame      ItemType = "DECO_FRAME"
	ItemDecoNick       ItemType = "DECO_NICK"
	ItemDecoIcon       ItemType = "DECO_ICON"
	ItemChangeNick     ItemType = "CHANGE_NICK"
	ItemHeartRecharge  ItemType = "HEART_RECHARGE"
	ItemRandomPoint    ItemType = "RANDOM_POINT"
	ItemRandomIcon     ItemType = "RANDOM_ICON"
	ItemRandomRoulette ItemType = "RANDOM_ROULETTE"
	ItemVoucher        ItemType = "VOUCHER"
	ItemBasic          ItemType = "BASIC"
)

// ItemTypes lists every known type, for request validation.
var ItemTypes = []ItemType{
	ItemDecoBG, ItemDecoFrame, ItemDecoNick, ItemDecoIcon,
	ItemChangeNick, ItemHeartRecharge,
	ItemRandomPoint, ItemRandomIcon, ItemRandomRoulette,
	ItemVoucher, ItemBasic,
}

// Slot names for cosmetic exclusivity. At most one record per
// (member, slot) may be equipped.
const (
	SlotBG    = "BG"
	SlotFrame = "FRAME"
	SlotNick  = "NICK"
	SlotIcon  = "ICON"
)

// Slots lists every cosmetic slot, for loadout views.
var Slots = []string{SlotBG, SlotFrame, SlotNick, SlotIcon}

func (t ItemType) IsCosmetic() bool {
	return t.Slot() != ""
}

// Slot returns the cosmetic slot for the type, or "" for non-cosmetics.
func (t ItemType) Slot() string {
	switch t {
	case ItemDecoBG:
		return SlotBG
	case ItemDecoFrame:
		return SlotFrame
	case ItemDecoNick:
		return SlotNick
	case ItemDecoIcon:
		return SlotIcon
	default:
		return ""
	}
}

type LimitMode string

const (
	LimitNone   LimitMode = "NONE"
	LimitOnce   LimitMode = "ONCE_PER_ACCOUNT"
	LimitPerDay LimitMode = "PER_DAY"
)

// StockUnlimited is the explicit sentinel for items without a stock cap.
// Any stock value <= 0 means sold out; the sentinel is never inferred.
const StockUnlimited = -1

type PointItem struct {
	ID          uint      `json:"pointItemNo"`
	Name        string    `json:"pointItemName"`
	Price       int       `json:"pointItemPrice"`
	Stock       int       `json:"pointItemStock"`
	Type        ItemType  `json:"pointItemType"`
	ReqTier     Tier      `json:"pointItemReqLevel"`
	LimitMode   LimitMode `json:"pointItemLimitMode"`
	DailyLimit  int       `json:"pointItemDailyLimit"`
	ImageSrc    string    `json:"pointItemSrc"`
	Description string    `json:"pointItemContents"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Purchasable reports whether a single unit can be taken from stock.
func (i PointItem) Purchasable() bool {
	return i.Stock == StockUnlimited || i.Stock > 0
}
