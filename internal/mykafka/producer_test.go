package mykafka

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg, err := newMessage("product_events", "42", map[string]any{"type": "product_created", "id": 42})
	require.NoError(t, err)
	assert.Equal(t, "product_events", msg.Topic)
	assert.Equal(t, "42", string(msg.Key))
	assert.JSONEq(t, `{"type":"product_created","id":42}`, string(msg.Value))

	_, err = newMessage("t", "k", make(chan int))
	assert.Error(t, err)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(nil)
	assert.Error(t, err)
}

func TestProducer_Integration(t *testing.T) {
	brokers := os.Getenv("TEST_KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("TEST_KAFKA_BROKERS is not set")
	}

	p, err := NewProducer(strings.Split(brokers, ","))
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.PublishEvent(context.Background(), "product_events", "1", map[string]string{"type": "ping"}))
}
