// Package store holds the shopper's mutable state: cart, compare set and session.
//
// Stores are explicit instances created once per storefront and passed to whoever needs them.
// Every mutation is a single critical section; subscribers run after the lock is released.
package store

import "sync"

type subscription struct {
	id int
	fn func()
}

type subscribers struct {
	mu     sync.Mutex
	nextID int
	list   []subscription
}

// add registers fn and returns a function that unregisters it.
func (s *subscribers) add(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.list = append(s.list, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.list {
				if sub.id == id {
					s.list = append(s.list[:i:i], s.list[i+1:]...)
					return
				}
			}
		})
	}
}

// notify calls every subscriber in registration order.
func (s *subscribers) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.list))
	for _, sub := range s.list {
		fns = append(fns, sub.fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
