package sse

import (
	"sync"
	"sync/atomic"
)

const subscriberBuffer = 16

// Event is one server-sent event addressed to an employee.
type Event struct {
	EmployeeID string
	Name       string
	Data       any
}

// Hub fans events out to the open streams of each employee.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	dropped     atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a stream for employeeID. The returned cleanup closes
// the channel and must be called exactly once.
func (h *Hub) Subscribe(employeeID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.subscribers[employeeID] == nil {
		h.subscribers[employeeID] = make(map[chan Event]struct{})
	}
	h.subscribers[employeeID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[employeeID], ch)
			close(ch)
			if len(h.subscribers[employeeID]) == 0 {
				delete(h.subscribers, employeeID)
			}
		})
	}
	return ch, cleanup
}

// Publish delivers event to every stream of event.EmployeeID and returns the
// number of streams that received it. Full streams are skipped.
func (h *Hub) Publish(event Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for ch := range h.subscribers[event.EmployeeID] {
		select {
		case ch <- event:
			delivered++
		default:
			h.dropped.Add(1)
		}
	}
	return delivered
}

// SubscriberCount returns the number of open streams for employeeID.
func (h *Hub) SubscriberCount(employeeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[employeeID])
}

// TotalSubscribers returns the number of open streams across all employees.
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}

// Dropped returns how many events were skipped because a stream was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
