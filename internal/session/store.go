package session

import "codenames-client/internal/game"

// Store holds the single authoritative room snapshot. Snapshots are
// installed wholesale and never patched; the generation counter lets
// callers notice a replace and drop cached derivations.
//
// The store is confined to the engine goroutine and needs no locking.
type Store struct {
	room       *game.Room
	generation uint64
}

func NewStore() *Store {
	return &Store{}
}

// Replace installs a new snapshot, fully superseding the prior one.
func (s *Store) Replace(room *game.Room) {
	s.room = room
	s.generation++
}

// Clear discards the snapshot, as when leaving a room.
func (s *Store) Clear() {
	s.room = nil
	s.generation++
}

// Current returns the latest snapshot, or false before the first push.
func (s *Store) Current() (*game.Room, bool) {
	if s.room == nil {
		return nil, false
	}
	return s.room, true
}

// Generation increments on every Replace or Clear.
func (s *Store) Generation() uint64 {
	return s.generation
}
