package queue_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/queue"
)

func TestInMemoryPublishConsume(t *testing.T) {
	q := queue.NewInMemory(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	body, err := json.Marshal(map[string]string{"school_id": "lincoln", "outcome": "checked_in"})
	require.NoError(t, err)
	require.NoError(t, q.Publish(ctx, queue.Message{Type: "scan", Body: body}))

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, "scan", msg.Type)
		assert.JSONEq(t, string(body), string(msg.Body))
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestInMemoryPublishHonorsContext(t *testing.T) {
	q := queue.NewInMemory(1)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, queue.Message{Type: "scan"}))

	// Queue full: a canceled context must not block forever.
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	err := q.Publish(canceled, queue.Message{Type: "scan"})
	require.ErrorIs(t, err, context.Canceled)
}
