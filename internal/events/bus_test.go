package events

import (
	"sync"
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTopic_PublishInOrder(t *testing.T) {
	var topic Topic[int]
	var got []string

	topic.Subscribe(func(v int) { got = append(got, "a") })
	topic.Subscribe(func(v int) { got = append(got, "b") })

	topic.Publish(1)

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestTopic_Unsubscribe(t *testing.T) {
	var topic Topic[string]
	calls := 0
	unsubscribe := topic.Subscribe(func(string) { calls++ })

	topic.Publish("x")
	unsubscribe()
	unsubscribe()
	topic.Publish("y")

	assert.Equal(t, 1, calls)
}

func TestTopic_HandlerMayPublish(t *testing.T) {
	bus := NewBus()
	var sessions []*domain.Session

	bus.SessionChanged.Subscribe(func(e SessionChanged) { sessions = append(sessions, e.Session) })
	bus.Unauthorized.Subscribe(func(Unauthorized) {
		bus.SessionChanged.Publish(SessionChanged{Session: nil})
	})

	bus.Unauthorized.Publish(Unauthorized{Method: "GET", Path: "/cart"})

	assert.Len(t, sessions, 1)
	assert.Nil(t, sessions[0])
}

func TestTopic_ConcurrentPublish(t *testing.T) {
	var topic Topic[int]
	var mu sync.Mutex
	sum := 0
	topic.Subscribe(func(v int) {
		mu.Lock()
		sum += v
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			topic.Publish(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, sum)
}
