package rules

import (
	"sync"
	"time"
)

// NotificationType categorizes what the engine reports to observers.
type NotificationType string

const (
	NotifyStackPush      NotificationType = "STACK_PUSH"
	NotifyStackResolve   NotificationType = "STACK_RESOLVE"
	NotifyPriority       NotificationType = "PRIORITY"
	NotifyEffect         NotificationType = "EFFECT"
	NotifyTrigger        NotificationType = "TRIGGER"
	NotifyDelayed        NotificationType = "DELAYED"
	NotifyBattlefield    NotificationType = "BATTLEFIELD"
	NotifyLife           NotificationType = "LIFE"
	NotifyPhase          NotificationType = "PHASE"
	NotifyCombat         NotificationType = "COMBAT"
	NotifyScenarioStatus NotificationType = "SCENARIO"
)

// Notification is an observable fact about the engine, for UIs and logs.
type Notification struct {
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Data      map[string]any   `json:"data,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// Listener receives notifications.
type Listener func(Notification)

// Bus delivers notifications synchronously to subscribed listeners.
// Subscribing is safe from any goroutine; listeners must not block.
type Bus struct {
	mu         sync.RWMutex
	listeners  map[int]Listener
	order      []int
	nextHandle int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[int]Listener)}
}

// Subscribe registers listener and returns a handle for Unsubscribe.
func (bus *Bus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	bus.order = append(bus.order, handle)
	return handle
}

// Unsubscribe removes the listener identified by handle.
func (bus *Bus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for i, h := range bus.order {
		if h == handle {
			bus.order = append(bus.order[:i], bus.order[i+1:]...)
			break
		}
	}
}

// Publish delivers n to every listener in subscription order.
func (bus *Bus) Publish(n Notification) {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}
	bus.mu.RLock()
	listeners := make([]Listener, 0, len(bus.order))
	for _, h := range bus.order {
		listeners = append(listeners, bus.listeners[h])
	}
	bus.mu.RUnlock()

	for _, l := range listeners {
		l(n)
	}
}
