package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField_UnmarshalJSON(t *testing.T) {
	var in UpdateEquipmentInput
	require.NoError(t, json.Unmarshal([]byte(`{"location":"HQ","comment":null,"purchasePrice":12.5}`), &in))

	assert.True(t, in.Location.Present())
	assert.Equal(t, "HQ", in.Location.Value)

	assert.True(t, in.Comment.Set)
	assert.True(t, in.Comment.Null)
	assert.False(t, in.Comment.Present())

	assert.False(t, in.Model.Set)
	assert.Equal(t, 12.5, in.PurchasePrice.Value)
}
