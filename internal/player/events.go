package player

import "sync"

// subscribers fans snapshots out to live listeners. Slow listeners miss
// intermediate snapshots rather than blocking the session.
type subscribers struct {
	mu     sync.Mutex
	subs   map[chan Snapshot]struct{}
	closed bool
}

func (b *subscribers) subscribe() chan Snapshot {
	ch := make(chan Snapshot, 8)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	if b.subs == nil {
		b.subs = make(map[chan Snapshot]struct{})
	}
	b.subs[ch] = struct{}{}
	return ch
}

func (b *subscribers) unsubscribe(ch chan Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

func (b *subscribers) broadcast(snap Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (b *subscribers) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}

// Subscribe returns a channel receiving a snapshot after every change and
// a function releasing it. The channel is closed when the session closes.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := s.subs.subscribe()
	return ch, func() { s.subs.unsubscribe(ch) }
}

func (s *Session) publishLocked() {
	s.subs.broadcast(s.snapshotLocked())
}
