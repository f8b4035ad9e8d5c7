package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
)

func setupNATS(t *testing.T) *NATSClient {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping NATS container test in short mode")
	}

	ctx := context.Background()
	container, err := tcnats.Run(ctx, "nats:2.10-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate NATS container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client := NewNATSClient(url)
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, client.Connect(connectCtx))
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNATSCallbackQueue_DeliversToProcessor(t *testing.T) {
	client := setupNATS(t)

	processor := &recordingProcessor{}
	queue := NewNATSCallbackQueue(client, processor)
	require.NoError(t, queue.Start())

	require.NoError(t, queue.Enqueue(context.Background(), "tr_first"))
	require.NoError(t, queue.Enqueue(context.Background(), "tr_second"))

	require.Eventually(t, func() bool {
		return len(processor.seen()) == 2
	}, 10*time.Second, 50*time.Millisecond)
	assert.ElementsMatch(t, []string{"tr_first", "tr_second"}, processor.seen())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, queue.Close(ctx))

	assert.ErrorIs(t, queue.Enqueue(context.Background(), "tr_late"), ErrQueueClosed)
}

func TestNATSCallbackQueue_MalformedMessageIsAcked(t *testing.T) {
	client := setupNATS(t)

	processor := &recordingProcessor{}
	queue := NewNATSCallbackQueue(client, processor)
	require.NoError(t, queue.Start())

	require.NoError(t, client.Publish(context.Background(), CallbackSubject, []byte{0xff, 0xff}))
	require.NoError(t, queue.Enqueue(context.Background(), "tr_after_garbage"))

	require.Eventually(t, func() bool {
		return len(processor.seen()) == 1
	}, 10*time.Second, 50*time.Millisecond)
	assert.Equal(t, []string{"tr_after_garbage"}, processor.seen())
}
