package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"restochain-backend/auth"
	"restochain-backend/cart"
	"restochain-backend/docstore"
	"restochain-backend/models"
)

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Manager caches sessions by uid. Entries idle for longer than the TTL are
// swept in the background and lose their cart.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	store    docstore.Store
	policy   Policy
	ttl      time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewManager(store docstore.Store, policy Policy, ttl time.Duration) *Manager {
	m := &Manager{
		sessions: make(map[string]*entry),
		store:    store,
		policy:   policy,
		ttl:      ttl,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

func (m *Manager) sweepLoop() {
	interval := m.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				log.Printf("Expired %d idle sessions", n)
			}
		case <-m.stop:
			return
		}
	}
}

// Sweep drops sessions idle for longer than the TTL and returns how many.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for uid, e := range m.sessions {
		if now.Sub(e.lastSeen) > m.ttl {
			delete(m.sessions, uid)
			n++
		}
	}
	return n
}

// Establish returns the cached session for the identity, or resolves a new
// one from the user's profile.
func (m *Manager) Establish(ctx context.Context, id auth.Identity) (*Session, error) {
	if s, ok := m.Get(id.UID); ok {
		return s, nil
	}

	var profile models.User
	err := m.store.Get(ctx, docstore.Doc(docstore.Users, id.UID), &profile)
	var p *models.User
	if err == nil {
		p = &profile
	} else if !errors.Is(err, docstore.ErrNotFound) {
		log.Printf("Error loading profile for %s: %v", id.UID, err)
	}

	state, err := Resolve(&id, p, err, m.policy)
	if err != nil {
		return nil, err
	}

	s := &Session{
		UID:   id.UID,
		Email: id.Email,
		Role:  models.RoleCustomer,
		State: state,
		Cart:  cart.New(),
	}
	if p != nil && p.Role.Valid() {
		s.Role = p.Role
		s.BranchID = p.BranchID
		s.FullName = p.FullName
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// A concurrent request may have won the race; keep its cart.
	if e, ok := m.sessions[id.UID]; ok {
		e.lastSeen = m.now()
		return e.session, nil
	}
	m.sessions[id.UID] = &entry{session: s, lastSeen: m.now()}
	return s, nil
}

// Get returns a live session and refreshes its idle timer.
func (m *Manager) Get(uid string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[uid]
	if !ok {
		return nil, false
	}
	now := m.now()
	if now.Sub(e.lastSeen) > m.ttl {
		delete(m.sessions, uid)
		return nil, false
	}
	e.lastSeen = now
	return e.session, true
}

// Drop forgets the session for uid, discarding its cart.
func (m *Manager) Drop(uid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, uid)
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the background sweeper.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}
