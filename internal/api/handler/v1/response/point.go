package response

import "github.com/popcornhub/points-api/internal/domain"

type BalanceResponse struct {
	MemberID uint `json:"memberId"`
	Balance  int  `json:"balance"`
}

type HistoryResponse struct {
	Entries []domain.LedgerEntry `json:"entries"`
	Total   int64                `json:"total"`
	Page    int                  `json:"page"`
	PerPage int                  `json:"perPage"`
}

type ListIconsResponse struct {
	Icons   []domain.Icon `json:"icons"`
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"perPage"`
}
