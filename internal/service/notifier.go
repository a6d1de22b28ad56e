package service

import "github.com/iliyamo/cinema-pos/internal/queue"

// Notifier receives domain events for cross-terminal propagation.  The
// services call it strictly after their transaction has committed, so an
// unreachable broker can never undo a committed mutation.
type Notifier interface {
	Publish(ev queue.Event)
}

// NopNotifier discards events.  Useful in tests and tools that run the
// services without a broker.
type NopNotifier struct{}

// Publish implements Notifier.
func (NopNotifier) Publish(queue.Event) {}
