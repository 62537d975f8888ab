package domain

import "time"

// Tier is the ordered membership level gating store eligibility.
type Tier string

const (
	TierGuest   Tier = "GUEST"
	TierRegular Tier = "REGULAR"
	TierPremium Tier = "PREMIUM"
	TierAdmin   Tier = "ADMIN"
)

// Score maps a tier to its comparable rank. Unknown tiers rank lowest.
func (t Tier) Score() int {
	switch t {
	case TierAdmin:
		return 99
	case TierPremium:
		return 2
	case TierRegular:
		return 1
	default:
		return 0
	}
}

// Member is the engine's view of an account. Accounts are created by the
// membership system; this core only mutates nickname and hearts on item
// use, and the point balance indirectly through the ledger.
type Member struct {
	ID        uint      `json:"id"`
	LoginID   string    `json:"login_id"`
	Nickname  string    `json:"nickname"`
	Tier      Tier      `json:"tier"`
	Hearts    int       `json:"hearts"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m Member) IsAdmin() bool {
	return m.Tier == TierAdmin
}
