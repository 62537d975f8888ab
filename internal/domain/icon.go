package domain

import "time"

type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
	RarityUnique    Rarity = "UNIQUE"
)

// RarityOrder lists rarities most-common first. The gacha fallback walks
// this order.
var RarityOrder = []Rarity{
	RarityCommon, RarityRare, RarityEpic, RarityLegendary, RarityUnique,
}

type IconCategory string

const (
	IconCategoryDefault IconCategory = "DEFAULT"
	IconCategoryMovie   IconCategory = "MOVIE"
)

// Icon is a master icon definition, the gacha prize pool. Admin-managed;
// once referenced by inventory only name/image/rarity corrections are
// expected.
type Icon struct {
	ID          uint         `json:"iconId"`
	Name        string       `json:"iconName"`
	Category    IconCategory `json:"iconCategory"`
	Rarity      Rarity       `json:"iconRarity"`
	ImageSrc    string       `json:"iconSrc"`
	Description string       `json:"iconContents"`
	MovieRef    *string      `json:"iconMovieRef,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
