package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taldoflemis/tiffin/ordine"
)

func TestGoChannelOrderPubSubberFanOut(t *testing.T) {
	ctx := context.Background()
	pubsub := NewGoChannelOrderPubSubber(1)

	first, err := pubsub.SubLiveOrders(ctx, "first")
	require.NoError(t, err)
	second, err := pubsub.SubLiveOrders(ctx, "second")
	require.NoError(t, err)

	require.NoError(t, pubsub.PubOrder(ctx, ordine.Entry{ID: "a"}))

	assert.Equal(t, "a", (<-first).ID)
	assert.Equal(t, "a", (<-second).ID)
}

func TestGoChannelOrderPubSubberDropsForLaggingSubscriber(t *testing.T) {
	ctx := context.Background()
	pubsub := NewGoChannelOrderPubSubber(1)
	ch, err := pubsub.SubLiveOrders(ctx, "slow")
	require.NoError(t, err)

	require.NoError(t, pubsub.PubOrder(ctx, ordine.Entry{ID: "a"}))
	require.NoError(t, pubsub.PubOrder(ctx, ordine.Entry{ID: "b"}), "publishing must not block")

	assert.Equal(t, "a", (<-ch).ID)
	assert.Empty(t, ch)
}

func TestGoChannelOrderPubSubberUnsub(t *testing.T) {
	ctx := context.Background()
	pubsub := NewGoChannelOrderPubSubber(1)
	ch, err := pubsub.SubLiveOrders(ctx, "gone")
	require.NoError(t, err)

	require.NoError(t, pubsub.UnsubLiveOrders(ctx, "gone"))
	require.NoError(t, pubsub.PubOrder(ctx, ordine.Entry{ID: "a"}))

	assert.Empty(t, ch)
}
