package pubsub

import (
	"context"
	"sync"

	"github.com/protocaas/protocaas/pkg/domain"
)

// Memory is an in-process broker.
//
// Each subscriber has a buffered channel. When the buffer is full, events for it are dropped.
type Memory struct {
	mu          sync.Mutex
	subscribers map[string][]chan domain.JobEvent
	buffer      int
}

func NewMemory(buffer int) *Memory {
	return &Memory{subscribers: map[string][]chan domain.JobEvent{}, buffer: buffer}
}

func (m *Memory) Name() string {
	return "memory"
}

func (m *Memory) Publish(ctx context.Context, event domain.JobEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers[event.Channel()] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *Memory) Subscription(computeResourceId string) Subscription {
	return Subscription{Backend: m.Name(), Channel: computeResourceId, User: computeResourceId}
}

// Subscribe the channel.
//
// The returned channel is closed after the returned function is called.
func (m *Memory) Subscribe(channel string) (<-chan domain.JobEvent, func()) {
	ch := make(chan domain.JobEvent, m.buffer)

	m.mu.Lock()
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	m.mu.Unlock()

	once := sync.Once{}
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			subs := m.subscribers[channel]
			for i, c := range subs {
				if c == ch {
					m.subscribers[channel] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
}
