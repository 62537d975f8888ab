package response

type CancelPurchaseResponse struct {
	InventoryNo uint `json:"inventoryNo"`
	Refunded    int  `json:"refunded"`
}
