package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLooseIDAcceptsNumbersAndStrings(t *testing.T) {
	var body struct {
		ID      LooseID `json:"id"`
		Contact LooseID `json:"contact"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id": 12, "contact": "7"}`), &body))

	id, ok := body.ID.Uint64()
	require.True(t, ok)
	require.EqualValues(t, 12, id)

	contact, ok := body.Contact.Uint64()
	require.True(t, ok)
	require.EqualValues(t, 7, contact)
}

func TestLooseIDRejectsNonNumeric(t *testing.T) {
	for _, raw := range []LooseID{"", "abc", "-1", "1.5", "0", " 3x"} {
		_, ok := raw.Uint64()
		require.False(t, ok, "expected %q to be rejected", raw)
	}

	var body struct {
		ID LooseID `json:"id"`
	}
	require.Error(t, json.Unmarshal([]byte(`{"id": true}`), &body))
}

func TestParseIDList(t *testing.T) {
	require.Equal(t, []uint64{2, 4}, ParseIDList("2,abc,4"))
	require.Equal(t, []uint64{1, 3}, ParseIDList(" 1, x ,3,1"))
	require.Empty(t, ParseIDList("a,b"))
	require.Empty(t, ParseIDList(""))
}
