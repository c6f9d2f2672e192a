package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"sync"
	"time"

	domainauth "github.com/starter-squad/lms/internal/domain/auth"
	"github.com/starter-squad/lms/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.SessionStore    = (*MemorySessionStore)(nil)
	_ ports.CredentialStore = (*StaticCredentialStore)(nil)
)

type memoryEntry struct {
	sess    domainauth.Session
	expires time.Time
}

// MemorySessionStore is an in-memory session store for unit tests. Records
// expire against Now, which defaults to time.Now and can be replaced by a
// test clock.
type MemorySessionStore struct {
	Now func() time.Time

	mu       sync.Mutex
	sessions map[string]memoryEntry
	// Saves counts successful Save calls.
	Saves int
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		Now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

func (m *MemorySessionStore) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// live returns the entry for id if it has not expired. Callers hold mu.
func (m *MemorySessionStore) live(id string) (memoryEntry, bool) {
	e, ok := m.sessions[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !m.now().Before(e.expires) {
		delete(m.sessions, id)
		return memoryEntry{}, false
	}
	return e, true
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session, ttl time.Duration) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if ttl <= 0 {
		return domainauth.ErrSessionExpired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.live(sess.ID); exists {
		return errors.New("session already exists")
	}
	m.sessions[sess.ID] = memoryEntry{sess: sess, expires: m.now().Add(ttl)}
	m.Saves++
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(id)
	if !ok {
		return domainauth.Session{}, domainauth.ErrSessionNotFound
	}
	return e.sess, nil
}

func (m *MemorySessionStore) Touch(_ context.Context, id string, seenAt time.Time, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(id)
	if !ok {
		return domainauth.ErrSessionNotFound
	}
	e.sess.LastSeenAt = seenAt
	e.expires = m.now().Add(ttl)
	m.sessions[id] = e
	return nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessionStore) DeleteByUser(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.sess.UserID == userID {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of live sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id := range m.sessions {
		if _, ok := m.live(id); ok {
			n++
		}
	}
	return n
}

// StaticCredentialStore serves identities from memory. Passwords are compared
// in plaintext, so Identity.PasswordHash holds the clear password in tests.
type StaticCredentialStore struct {
	mu         sync.RWMutex
	identities map[string]domainauth.Identity
	// Lookups counts FindByEmail calls.
	Lookups int
}

// NewStaticCredentialStore seeds the store with ids.
func NewStaticCredentialStore(ids ...domainauth.Identity) *StaticCredentialStore {
	s := &StaticCredentialStore{identities: make(map[string]domainauth.Identity)}
	for _, id := range ids {
		s.Put(id)
	}
	return s
}

// Put adds or replaces an identity.
func (s *StaticCredentialStore) Put(id domainauth.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[domainauth.NormalizeEmail(id.Email)] = id
}

// Remove deletes the identity for email.
func (s *StaticCredentialStore) Remove(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.identities, domainauth.NormalizeEmail(email))
}

func (s *StaticCredentialStore) FindByEmail(_ context.Context, email string) (domainauth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lookups++
	id, ok := s.identities[domainauth.NormalizeEmail(email)]
	if !ok {
		return domainauth.Identity{}, domainauth.ErrIdentityNotFound
	}
	return id, nil
}

func (s *StaticCredentialStore) VerifyPassword(_ context.Context, id domainauth.Identity, plaintext string) bool {
	return id.PasswordHash != "" && id.PasswordHash == plaintext
}
