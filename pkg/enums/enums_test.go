package enums

import "testing"

func TestOrderStateTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderState
		want     bool
	}{
		{OrderStateBasket, OrderStateNew, true},
		{OrderStateNew, OrderStateConfirmed, true},
		{OrderStateBasket, OrderStateConfirmed, false},
		{OrderStateNew, OrderStateBasket, false},
		{OrderStateConfirmed, OrderStateAssembled, false},
		{OrderStateCanceled, OrderStateNew, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestParseOrderState(t *testing.T) {
	state, err := ParseOrderState("delivered")
	if err != nil || state != OrderStateDelivered {
		t.Fatalf("expected delivered, got %q err=%v", state, err)
	}
	if _, err := ParseOrderState("shipped"); err == nil {
		t.Fatal("expected error for unknown state")
	}
}

func TestParseAccountType(t *testing.T) {
	got, err := ParseAccountType("")
	if err != nil || got != AccountTypeBuyer {
		t.Fatalf("expected empty input to default to buyer, got %q err=%v", got, err)
	}
	got, err = ParseAccountType(" Shop ")
	if err != nil || got != AccountTypeShop {
		t.Fatalf("expected shop, got %q err=%v", got, err)
	}
	if _, err := ParseAccountType("admin"); err == nil {
		t.Fatal("expected error for unknown account type")
	}
}

func TestOutboxEnums(t *testing.T) {
	if !EventOrderConfirmed.IsValid() || OutboxEventType("order_created").IsValid() {
		t.Fatal("unexpected event type validity")
	}
	if _, err := ParseOutboxAggregateType("order"); err != nil {
		t.Fatalf("expected order aggregate to parse: %v", err)
	}
	if _, err := ParseNotificationType("welcome"); err != nil {
		t.Fatalf("expected welcome to parse: %v", err)
	}
}

func TestParseErrorNamesTheKind(t *testing.T) {
	_, err := ParseOutboxEventType("order_shipped")
	if err == nil || err.Error() != `invalid event type "order_shipped"` {
		t.Fatalf("unexpected error %v", err)
	}
	if !OutboxDLQReasonMaxAttempts.IsValid() || OutboxDLQErrorReason("timeout").IsValid() {
		t.Fatal("unexpected dlq reason validity")
	}
}
