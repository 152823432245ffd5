package updates

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabgroups/tabgroups/internal/domain"
)

func receive(t *testing.T, ch <-chan domain.Update) domain.Update {
	t.Helper()
	select {
	case u, ok := <-ch:
		require.True(t, ok, "channel closed")
		return u
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
		return domain.Update{}
	}
}

func TestHubDeliversToEverySubscriber(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	first, cancelFirst := hub.Subscribe()
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe()
	defer cancelSecond()
	assert.Equal(t, 2, subscriberCount(hub))

	hub.Publish(domain.ColorUpdate(false))

	for _, ch := range []<-chan domain.Update{first, second} {
		u := receive(t, ch)
		require.NotNil(t, u.Color)
		assert.False(t, *u.Color)
		assert.Nil(t, u.Mode)
		assert.Nil(t, u.Title)
	}
}

func TestHubPreservesOrder(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(domain.ModeUpdate("MAN"))
	hub.Publish(domain.ModeUpdate("AUTO"))
	hub.Publish(domain.TitleUpdate(true))

	assert.Equal(t, "MAN", *receive(t, ch).Mode)
	assert.Equal(t, "AUTO", *receive(t, ch).Mode)
	assert.True(t, *receive(t, ch).Title)
}

func TestHubSkipsEmptyUpdates(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(domain.Update{})

	select {
	case u := <-ch:
		t.Fatalf("unexpected update %+v", u)
	default:
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	cancel()
	cancel()

	assert.Equal(t, 0, subscriberCount(hub))
	hub.Publish(domain.TitleUpdate(false))

	_, ok := <-ch
	assert.False(t, ok)
}

func TestHubCancelUnblocksPublisher(t *testing.T) {
	hub := NewHubWithBuffer(0, nil)
	defer hub.Close()

	_, cancel := hub.Subscribe()

	done := make(chan struct{})
	go func() {
		hub.Publish(domain.ColorUpdate(true))
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher still blocked after cancel")
	}
}

func TestHubClose(t *testing.T) {
	hub := NewHub(nil)

	ch, cancel := hub.Subscribe()
	hub.Close()
	hub.Close()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)

	late, lateCancel := hub.Subscribe()
	defer lateCancel()
	_, ok = <-late
	assert.False(t, ok)

	hub.Publish(domain.ColorUpdate(true))
}

func TestHubConcurrentPublish(t *testing.T) {
	hub := NewHubWithBuffer(64, nil)
	defer hub.Close()

	ch, cancel := hub.Subscribe()
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hub.Publish(domain.TitleUpdate(i%2 == 0))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 32; i++ {
		receive(t, ch)
	}
}

func subscriberCount(h *Hub) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
