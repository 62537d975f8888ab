package response

import "github.com/popcornhub/points-api/internal/domain"

// StoreItem is a catalog item annotated with the viewer's wish mark.
type StoreItem struct {
	domain.PointItem
	Wished bool `json:"wished"`
}

type ListItemsResponse struct {
	Items   []StoreItem `json:"items"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"perPage"`
}

type ToggleWishResponse struct {
	ItemNo uint `json:"itemNo"`
	Wished bool `json:"wished"`
}
