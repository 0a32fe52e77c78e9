package mykafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage("product_events", "1", map[string]any{"type": "product_created", "productId": 1})
	require.NoError(t, err)

	assert.Equal(t, "product_events", msg.Topic)
	assert.Equal(t, []byte("1"), msg.Key)
	assert.False(t, msg.Time.IsZero())

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "product_created", body["type"])
	assert.EqualValues(t, 1, body["productId"])
}

func TestNewMessage_MarshalError(t *testing.T) {
	t.Parallel()

	_, err := NewMessage("t", "k", map[string]any{"bad": make(chan int)})
	assert.ErrorContains(t, err, "json.Marshal failed")
}

func TestNewProducer_Close(t *testing.T) {
	t.Parallel()

	p := NewProducer([]string{"localhost:9092"})
	assert.NoError(t, p.Close())
}
