package eventbus

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestPublishReachesSubscribersOfThatType(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := New(nil)
	defer b.Close()

	got := make(chan DomainEvent, 1)
	var wrongType atomic.Int32
	b.Subscribe(EventCatalogLoaded, func(e DomainEvent) { got <- e })
	b.Subscribe(EventError, func(DomainEvent) { wrongType.Add(1) })

	b.Publish(CatalogLoadStartedEvent{Sources: 4})
	b.Publish(ConfigSavedEvent{Path: "x.toml"})
	b.Publish(CatalogLoadedEvent{})

	select {
	case e := <-got:
		assert.Equal(t, EventCatalogLoaded, e.Type())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	b.Close()
	assert.Zero(t, wrongType.Load())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(nil)
	defer b.Close()

	var mu sync.Mutex
	var seen []string
	unsubscribe := b.Subscribe(EventConfigSaved, func(e DomainEvent) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.(ConfigSavedEvent).Path)
	})

	b.Publish(ConfigSavedEvent{Path: "first"})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, time.Second, 5*time.Millisecond)

	unsubscribe()
	b.Publish(ConfigSavedEvent{Path: "second"})
	b.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first"}, seen)
}

func TestHandlerPanicDoesNotStopBus(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := New(nil)
	delivered := make(chan struct{}, 1)
	b.Subscribe(EventError, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventError, func(DomainEvent) { delivered <- struct{}{} })

	b.Publish(ErrorEvent{Message: "x"})
	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("second handler not called")
	}
	b.Close()
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := New(nil)
	var calls atomic.Int32
	b.Subscribe(EventError, func(DomainEvent) { calls.Add(1) })
	b.Close()
	b.Close()

	b.Publish(ErrorEvent{Message: "late"})
	assert.Zero(t, calls.Load())
}
