package logbus

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go_procure_backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReceiveFIFO(t *testing.T) {
	bus := NewBus()
	bus.Register("s1")

	bus.Log("s1", models.LogLevelInfo, "first")
	bus.Log("s1", models.LogLevelDebug, "second")
	bus.Log("s1", models.LogLevelWarn, "third")

	ctx := context.Background()
	for _, want := range []string{"first", "second", "third"} {
		event, ok := bus.Receive(ctx, "s1", time.Second)
		require.True(t, ok)
		assert.Equal(t, want, event.Message)
		assert.False(t, event.IsHeartbeat())
	}
}

func TestReceiveHeartbeatOnTimeout(t *testing.T) {
	bus := NewBus()
	bus.Register("s1")

	event, ok := bus.Receive(context.Background(), "s1", 10*time.Millisecond)
	require.True(t, ok)
	assert.True(t, event.IsHeartbeat())
	assert.Empty(t, event.Message)
}

func TestReceiveRegistersLazily(t *testing.T) {
	bus := NewBus()
	assert.False(t, bus.Active("lazy"))

	done := make(chan models.LogEvent, 1)
	go func() {
		event, _ := bus.Receive(context.Background(), "lazy", time.Second)
		done <- event
	}()

	// wait for the consumer to create the channel, then publish
	require.Eventually(t, func() bool { return bus.Active("lazy") }, time.Second, time.Millisecond)
	bus.Log("lazy", models.LogLevelInfo, "hello")

	select {
	case event := <-done:
		assert.Equal(t, "hello", event.Message)
	case <-time.After(time.Second):
		t.Fatal("receive did not complete")
	}
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	bus := NewBus()
	bus.Register("s1")
	bus.Close("s1")

	// publishing alone must not resurrect the session
	bus.Log("s1", models.LogLevelInfo, "lost")
	assert.False(t, bus.Active("s1"))

	// a later Receive creates a fresh channel without the dropped event
	event, ok := bus.Receive(context.Background(), "s1", 10*time.Millisecond)
	require.True(t, ok)
	assert.True(t, event.IsHeartbeat())
}

func TestReceiveContextCancel(t *testing.T) {
	bus := NewBus()
	bus.Register("s1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := bus.Receive(ctx, "s1", time.Minute)
	assert.False(t, ok)
}

func TestSessionsAreIndependent(t *testing.T) {
	bus := NewBus()
	bus.Register("a")
	bus.Register("b")

	bus.Log("a", models.LogLevelInfo, "for a")
	bus.Log("b", models.LogLevelInfo, "for b")

	ctx := context.Background()
	eventA, _ := bus.Receive(ctx, "a", time.Second)
	eventB, _ := bus.Receive(ctx, "b", time.Second)
	assert.Equal(t, "for a", eventA.Message)
	assert.Equal(t, "for b", eventB.Message)
}

func TestConcurrentPublishers(t *testing.T) {
	bus := NewBus()
	bus.Register("s1")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			bus.Log("s1", models.LogLevelInfo, fmt.Sprintf("event %d", n))
		}(i)
	}
	wg.Wait()

	ctx := context.Background()
	seen := 0
	for {
		event, ok := bus.Receive(ctx, "s1", 10*time.Millisecond)
		require.True(t, ok)
		if event.IsHeartbeat() {
			break
		}
		seen++
	}
	assert.Equal(t, 10, seen)
}
