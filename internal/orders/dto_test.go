package orders

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopdesk-backend/pkg/types"
)

func uintString(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func TestItemListAcceptsArrayOrEncodedString(t *testing.T) {
	var fromArray AddItemsRequest
	require.NoError(t, json.Unmarshal([]byte(`{"items":[{"product_info":101,"quantity":"2"}]}`), &fromArray))

	var fromString AddItemsRequest
	require.NoError(t, json.Unmarshal([]byte(`{"items":"[{\"product_info\": \"101\", \"quantity\": 2}]"}`), &fromString))

	want := ItemList[AddItem]{{ProductInfo: types.LooseID("101"), Quantity: types.LooseID("2")}}
	require.Equal(t, want, fromArray.Items)
	require.Equal(t, want, fromString.Items)

	var bad AddItemsRequest
	require.Error(t, json.Unmarshal([]byte(`{"items":"not json"}`), &bad))
}

func TestUpdateItemsKeepsEntriesOfTheWrongType(t *testing.T) {
	var req UpdateItemsRequest
	body := `{"items":[{"id":1,"quantity":5},{"id":true,"quantity":2},{"id":[1],"quantity":1},{"id":"3","quantity":{}},7]}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.Len(t, req.Items, 5)

	id, ok := req.Items[0].ID.Uint64()
	require.True(t, ok)
	require.EqualValues(t, 1, id)
	quantity, ok := req.Items[0].Quantity.Uint64()
	require.True(t, ok)
	require.EqualValues(t, 5, quantity)

	for _, item := range req.Items[1:] {
		_, idOK := item.ID.Uint64()
		_, qOK := item.Quantity.Uint64()
		require.False(t, idOK && qOK, "entry %+v should be unusable", item)
	}
}
