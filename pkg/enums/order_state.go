package enums

// OrderState is the lifecycle state of an order. Only basket->new and
// new->confirmed are driven by the workflow; the rest are set externally.
type OrderState string

const (
	OrderStateBasket    OrderState = "basket"
	OrderStateNew       OrderState = "new"
	OrderStateConfirmed OrderState = "confirmed"
	OrderStateAssembled OrderState = "assembled"
	OrderStateSent      OrderState = "sent"
	OrderStateDelivered OrderState = "delivered"
	OrderStateCanceled  OrderState = "canceled"
)

var validOrderStates = []OrderState{
	OrderStateBasket,
	OrderStateNew,
	OrderStateConfirmed,
	OrderStateAssembled,
	OrderStateSent,
	OrderStateDelivered,
	OrderStateCanceled,
}

// String implements fmt.Stringer.
func (s OrderState) String() string {
	return string(s)
}

func (s OrderState) IsValid() bool { return oneOf(s, validOrderStates) }

// CanTransitionTo reports whether the workflow drives s -> next.
func (s OrderState) CanTransitionTo(next OrderState) bool {
	switch s {
	case OrderStateBasket:
		return next == OrderStateNew
	case OrderStateNew:
		return next == OrderStateConfirmed
	}
	return false
}

// ParseOrderState converts raw input into an OrderState.
func ParseOrderState(value string) (OrderState, error) {
	return parse("order state", value, validOrderStates)
}
