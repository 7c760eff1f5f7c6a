package store

import (
	"sync"

	"github.com/google/uuid"
)

// Subscribe registers an observer. The returned channel first receives the
// current snapshot, then one snapshot per mutation in mutation order. A
// subscriber that falls behind by more than its buffer loses its oldest queued
// snapshots, so the last snapshot it reads is always the current state.
// Snapshots are shared between subscribers and must be treated as read-only.
// The returned function unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	ch := make(chan State, s.buffer)
	ch <- s.state.clone()
	s.subs[id] = ch

	s.logger.Debug("subscriber added", "subscriber_id", id, "total_subscribers", len(s.subs))

	var once sync.Once
	return ch, func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

func (s *Store) unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, ok := s.subs[id]; ok {
		close(ch)
		delete(s.subs, id)
		s.logger.Debug("subscriber removed", "subscriber_id", id, "remaining_subscribers", len(s.subs))
	}
}

// publish must be called with s.mu held.
func (s *Store) publish() {
	if len(s.subs) == 0 {
		return
	}

	snapshot := s.state.clone()
	for id, ch := range s.subs {
		select {
		case ch <- snapshot:
			continue
		default:
		}

		// Full: evict the oldest queued snapshot. publish is the only sender
		// and runs under s.mu, so the send below always finds room.
		select {
		case stale := <-ch:
			s.logger.Debug("subscriber behind, snapshot dropped",
				"subscriber_id", id,
				"version", stale.Version)
		default:
		}

		select {
		case ch <- snapshot:
		default:
		}
	}
}
