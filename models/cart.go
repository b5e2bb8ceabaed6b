package models

// CartItem is the ephemeral, client-held representation of a line before an
// order exists. It is never persisted; once the order is durably created the
// cart is discarded.
type CartItem struct {
	MenuItemID uint    `json:"menu_item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	ImageURL   string  `json:"image_url,omitempty"`
}

// Subtotal is price times quantity for this line.
func (ci CartItem) Subtotal() float64 {
	return ci.Price * float64(ci.Quantity)
}
