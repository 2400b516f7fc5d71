package payloads

// UserRegisteredEvent is emitted once an account is created.
type UserRegisteredEvent struct {
	UserID uint64 `json:"user_id"`
	Email  string `json:"email"`
}

// OrderPlacedEvent is emitted when a basket is submitted as a new order.
type OrderPlacedEvent struct {
	UserID  uint64 `json:"user_id"`
	OrderID uint64 `json:"order_id"`
}

// OrderConfirmedEvent is emitted per supplier shop once staff confirms an order.
type OrderConfirmedEvent struct {
	ShopID  uint64 `json:"shop_id"`
	OrderID uint64 `json:"order_id"`
}
