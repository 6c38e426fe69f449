package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapPayloadRoundTrip(t *testing.T) {
	type payload struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
	}

	raw := MustMarshal(payload{OrderID: "o-1", Status: "pending"})

	got, err := UnwrapPayload[payload](raw)
	require.NoError(t, err)
	assert.Equal(t, "o-1", got.OrderID)
	assert.Equal(t, "pending", got.Status)
}

func TestUnwrapPayloadRejectsGarbage(t *testing.T) {
	type payload struct {
		N int `json:"n"`
	}
	_, err := UnwrapPayload[payload]([]byte(`{"n":"not-a-number"}`))
	assert.Error(t, err)
}
