package domain

import "time"

type LedgerReason string

const (
	ReasonPurchase     LedgerReason = "PURCHASE"
	ReasonRefund       LedgerReason = "REFUND"
	ReasonGiftSent     LedgerReason = "GIFT_SENT"
	ReasonGiftReceived LedgerReason = "GIFT_RECEIVED"
	ReasonAdminAdjust  LedgerReason = "ADMIN_ADJUST"
	ReasonGachaCost    LedgerReason = "GACHA_COST"
	ReasonPointReward  LedgerReason = "POINT_REWARD"
)

// LedgerEntry is one append-only balance change. Entries are never
// updated or deleted; the balance of a member is the running sum of
// their entries.
type LedgerEntry struct {
	ID       uint         `json:"id"`
	MemberID uint         `json:"memberId"`
	Amount   int          `json:"amount"`
	Reason   LedgerReason `json:"reason"`
	Note     string       `json:"note"`
	ItemNo   *uint        `json:"itemNo,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// RankingEntry is one row of the total-points ranking.
type RankingEntry struct {
	MemberID uint   `json:"memberId"`
	Nickname string `json:"nickname"`
	Total    int    `json:"total"`
}
