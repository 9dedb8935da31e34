package core

import "sync"

// Presence tracks which users are currently connected to each room. It is
// authoritative only for "who is connected right now"; history lives in
// the store. State is in-memory and lost on restart.
//
// Membership has set semantics per user: multiple simultaneous sessions of
// the same user collapse to one entry. Sessions are reference-counted
// internally so closing one of two sessions does not retract presence.
type Presence struct {
	mu    sync.RWMutex
	rooms map[string]*presenceEntry
}

// presenceEntry serializes all mutations to one room's membership.
// Entries are never removed: rooms are created once and never deleted.
type presenceEntry struct {
	mu   sync.Mutex
	refs map[int64]int // user ID -> live session count
}

// NewPresence returns an empty tracker.
func NewPresence() *Presence {
	return &Presence{rooms: make(map[string]*presenceEntry)}
}

func (p *Presence) entry(room string) *presenceEntry {
	p.mu.RLock()
	e, ok := p.rooms[room]
	p.mu.RUnlock()
	if ok {
		return e
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.rooms[room]; ok {
		return e
	}
	e = &presenceEntry{refs: make(map[int64]int)}
	p.rooms[room] = e
	return e
}

// Join records one session of user in room. Returns the distinct-user
// count after the join and whether the user was newly added (false when
// another session of the same user was already present).
func (p *Presence) Join(room string, user int64) (count int, added bool) {
	e := p.entry(room)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.refs[user]++
	return len(e.refs), e.refs[user] == 1
}

// Leave retracts one session of user from room. A user or room that was
// never joined is a silent no-op. Returns the distinct-user count after
// the leave and whether the user is now fully gone.
func (p *Presence) Leave(room string, user int64) (count int, removed bool) {
	p.mu.RLock()
	e, ok := p.rooms[room]
	p.mu.RUnlock()
	if !ok {
		return 0, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	refs, ok := e.refs[user]
	if !ok {
		return len(e.refs), false
	}
	if refs <= 1 {
		delete(e.refs, user)
		return len(e.refs), true
	}
	e.refs[user] = refs - 1
	return len(e.refs), false
}

// Count reports the number of distinct users currently present in room,
// 0 if the room has no tracked presence.
func (p *Presence) Count(room string) int {
	p.mu.RLock()
	e, ok := p.rooms[room]
	p.mu.RUnlock()
	if !ok {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.refs)
}
