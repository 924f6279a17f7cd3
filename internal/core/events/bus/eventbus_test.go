package bus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObserver struct {
	mu             sync.Mutex
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.mu.Lock()
	o.publishCount++
	o.mu.Unlock()
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ time.Duration) {
	o.mu.Lock()
	o.deliveredCount += handlers
	o.lastErr = err
	o.mu.Unlock()
}

func TestPublishSubscribe(t *testing.T) {
	b := New()
	var got []any
	sub, err := b.Subscribe("litter.placed", func(e Event) error {
		got = append(got, e.Data())
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, sub.ID())
	assert.Equal(t, "litter.placed", sub.EventType())

	require.NoError(t, b.Publish(NewEvent("litter.placed", "test", 7)))
	require.NoError(t, b.Publish(NewEvent("litter.released", "test", 8)))
	assert.Equal(t, []any{7}, got)
}

func TestDeliveryOrder(t *testing.T) {
	b := New()
	var order []int
	for k := 0; k < 5; k++ {
		_, err := b.Subscribe("ev", func(Event) error {
			order = append(order, k)
			return nil
		})
		require.NoError(t, err)
	}
	require.NoError(t, b.Publish(NewEvent("ev", "test", nil)))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	sub, err := b.Subscribe("ev", func(Event) error { calls++; return nil })
	require.NoError(t, err)

	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel(), "second cancel is a no-op")
	require.NoError(t, b.Unsubscribe(nil))
	assert.False(t, sub.IsActive())

	require.NoError(t, b.Publish(NewEvent("ev", "test", nil)))
	assert.Zero(t, calls)
}

func TestCancelDuringDelivery(t *testing.T) {
	b := New()
	calls := 0
	var second Subscription
	_, err := b.Subscribe("ev", func(Event) error {
		return second.Cancel()
	})
	require.NoError(t, err)
	second, err = b.Subscribe("ev", func(Event) error { calls++; return nil })
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("ev", "test", nil)))
	assert.Zero(t, calls)
}

func TestErrorAggregation(t *testing.T) {
	b := New()
	errA := errors.New("a")
	errB := errors.New("b")
	_, _ = b.Subscribe("ev", func(Event) error { return errA })
	_, _ = b.Subscribe("ev", func(Event) error { return nil })
	_, _ = b.Subscribe("other", func(Event) error { return errB })

	err := b.Publish(NewEvent("ev", "test", nil))
	require.ErrorIs(t, err, errA)

	err = b.PublishBatch(NewEvent("ev", "test", nil), NewEvent("other", "test", nil))
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
}

func TestInvalidArguments(t *testing.T) {
	b := New()
	_, err := b.Subscribe("ev", nil)
	require.ErrorIs(t, err, ErrNilHandler)
	require.ErrorIs(t, b.Publish(nil), ErrNilEvent)
}

func TestPublishAsync(t *testing.T) {
	b := New()
	handlerErr := errors.New("fail")
	_, err := b.Subscribe("x", func(Event) error { return handlerErr })
	require.NoError(t, err)

	select {
	case e := <-b.PublishAsync(NewEvent("x", "src", nil)):
		require.ErrorIs(t, e, handlerErr)
	case <-time.After(time.Second):
		t.Fatal("async publish did not complete")
	}
}

func TestObserverMetrics(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(Event) error { return nil })

	require.NoError(t, b.Publish(NewEvent("e", "s", nil)))
	assert.Equal(t, EventBusMetrics{}, b.GetMetrics(), "no metrics without observers")

	obs := &testObserver{}
	b.AddObserver(obs)
	require.NoError(t, b.Publish(NewEvent("e", "s", nil)))

	m := b.GetMetrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(1), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.SubscribersActive)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 1, obs.deliveredCount)

	b.RemoveObserver(obs)
	require.NoError(t, b.Publish(NewEvent("e", "s", nil)))
	assert.Equal(t, 1, obs.publishCount)
}

func TestConcurrentPublish(t *testing.T) {
	b := New()
	var mu sync.Mutex
	count := 0
	_, _ = b.Subscribe("ev", func(Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				_ = b.Publish(NewEvent("ev", "test", n))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, count)
}
