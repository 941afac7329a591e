package registry

import (
	"sync"

	"github.com/park285/samarth-chess/internal/game"
)

const subscriberBuffer = 8

type subscriber struct {
	ch   chan game.View
	once sync.Once
}

func (s *subscriber) close() { s.once.Do(func() { close(s.ch) }) }

// Subscribe returns a channel receiving the view after every visible change
// to session id. A slow reader loses the oldest pending views, never the
// latest. The channel is closed by cancel or when the session is closed.
func (m *Manager) Subscribe(id string) (<-chan game.View, func()) {
	sub := &subscriber{ch: make(chan game.View, subscriberBuffer)}
	m.subsMu.Lock()
	set, ok := m.subs[id]
	if !ok {
		set = make(map[*subscriber]struct{})
		m.subs[id] = set
	}
	set[sub] = struct{}{}
	m.subsMu.Unlock()

	cancel := func() {
		m.subsMu.Lock()
		if set, ok := m.subs[id]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(m.subs, id)
			}
		}
		m.subsMu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

// publish is called with the session lock held, which keeps views ordered.
func (m *Manager) publish(id string, v game.View) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for sub := range m.subs[id] {
		select {
		case sub.ch <- v:
			continue
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- v:
		default:
		}
	}
}

func (m *Manager) closeSubscribers(id string) {
	m.subsMu.Lock()
	set := m.subs[id]
	delete(m.subs, id)
	m.subsMu.Unlock()
	for sub := range set {
		sub.close()
	}
}

func (m *Manager) hasSubscribers(id string) bool {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	return len(m.subs[id]) > 0
}
