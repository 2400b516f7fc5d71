package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopdesk-backend/pkg/enums"
	"github.com/angelmondragon/shopdesk-backend/pkg/outbox/payloads"
)

func TestDecoderRegistryIsVersioned(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventOrderPlaced, 2, func(payload json.RawMessage) (any, error) {
		var decoded map[string]uint64
		err := json.Unmarshal(payload, &decoded)
		return decoded, err
	})

	out, err := reg.Decode(enums.EventOrderPlaced, 2, json.RawMessage(`{"order_id":7}`))
	require.NoError(t, err)
	require.Equal(t, map[string]uint64{"order_id": 7}, out)

	_, err = reg.Decode(enums.EventOrderPlaced, 1, json.RawMessage(`{}`))
	require.EqualError(t, err, "no decoder registered for order_placed@v1")
}

func TestDomainDecoderRegistryCoversEveryEvent(t *testing.T) {
	reg := NewDomainDecoderRegistry()
	for _, desc := range domainSchemas() {
		_, err := reg.Decode(desc.EventType, 1, json.RawMessage(`{}`))
		require.NoError(t, err, desc.EventType)
	}

	out, err := reg.Decode(enums.EventOrderConfirmed, 1, json.RawMessage(`{"shop_id":3,"order_id":11}`))
	require.NoError(t, err)
	payload, ok := out.(*payloads.OrderConfirmedEvent)
	require.True(t, ok, "got %T", out)
	require.Equal(t, uint64(3), payload.ShopID)
	require.Equal(t, uint64(11), payload.OrderID)

	_, err = reg.Decode(enums.EventUserRegistered, 1, json.RawMessage(`not-json`))
	require.ErrorContains(t, err, "decode user_registered@v1")
}
