package ledger

import "sync"

// Receiver turns the platform's push callbacks into two explicit event
// streams: onReceived (a push arrived in the foreground) and onInteracted
// (the user tapped a displayed notification). Handlers are registered
// explicitly and every registration returns its own remove func, so
// teardown on shutdown is deterministic.
type Receiver struct {
	mu         sync.Mutex
	nextID     int
	received   map[int]func(Push)
	interacted map[int]func(Push)
	closed     bool
}

func NewReceiver() *Receiver {
	return &Receiver{
		received:   make(map[int]func(Push)),
		interacted: make(map[int]func(Push)),
	}
}

// OnReceived registers a foreground-receive handler
func (r *Receiver) OnReceived(fn func(Push)) (remove func()) {
	return r.add(r.received, fn)
}

// OnInteracted registers a notification-tap handler
func (r *Receiver) OnInteracted(fn func(Push)) (remove func()) {
	return r.add(r.interacted, fn)
}

func (r *Receiver) add(handlers map[int]func(Push), fn func(Push)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return func() {}
	}

	id := r.nextID
	r.nextID++
	handlers[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(handlers, id)
	}
}

// Received dispatches a foreground push to all registered handlers
func (r *Receiver) Received(p Push) {
	r.dispatch(r.received, p)
}

// Interacted dispatches a notification tap to all registered handlers
func (r *Receiver) Interacted(p Push) {
	r.dispatch(r.interacted, p)
}

func (r *Receiver) dispatch(handlers map[int]func(Push), p Push) {
	r.mu.Lock()
	fns := make([]func(Push), 0, len(handlers))
	for _, fn := range handlers {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

// Close drops all handlers; subsequent registrations are ignored
func (r *Receiver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.received = make(map[int]func(Push))
	r.interacted = make(map[int]func(Push))
}
