package domain

import "time"

// Wish marks a (member, item) pair as wished. Presence is the whole
// state; toggling is idempotent.
type Wish struct {
	ID        uint      `json:"id"`
	MemberID  uint      `json:"memberId"`
	ItemNo    uint      `json:"itemNo"`
	CreatedAt time.Time `json:"created_at"`
}
