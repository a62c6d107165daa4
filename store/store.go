// Package store defines the two external collaborators the core treats
// as abstract (Non-goal: local persistent storage): a Profile Store for
// profiles and their sessions, and a Secure Key Store for long-term
// private keys. It also ships reference in-memory implementations for
// tests and small deployments.
package store

import (
	"sync"

	"github.com/pkg/errors"

	"go.nostrconnect.dev/core/session"
)

// ErrNotFound is returned by either store when the requested key is
// absent.
var ErrNotFound = errors.New("store: not found")

// ProfileWithSessions is the unit of persistence: a profile's pubkey
// plus every session it owns, keyed by session id.
type ProfileWithSessions struct {
	Pubkey   string
	Sessions map[string]*session.T
}

// ProfileStore persists profiles and cascades profile deletion to their
// sessions, per spec §6.
type ProfileStore interface {
	GetProfileByPubkey(pubkey string) (*ProfileWithSessions, error)
	ListProfiles() ([]*ProfileWithSessions, error)
	UpsertProfile(p *ProfileWithSessions) error
	DeleteProfile(pubkey string) error
}

// SecureKeyStore reads and writes a long-term private key, keyed by
// "userkeypair_" + pubkey per spec §6. Implementations must not persist
// the key anywhere the platform's secure storage doesn't already cover.
type SecureKeyStore interface {
	GetPrivateKey(pubkey string) (privHex string, err error)
	SetPrivateKey(pubkey, privHex string) error
	DeletePrivateKey(pubkey string) error
}

const keyPrefix = "userkeypair_"

// KeyFor renders the secure-key-store key for a pubkey.
func KeyFor(pubkey string) string { return keyPrefix + pubkey }

// MemoryProfileStore is a reference ProfileStore backed by a guarded map,
// suitable for tests and single-process deployments.
type MemoryProfileStore struct {
	mx       sync.RWMutex
	profiles map[string]*ProfileWithSessions
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]*ProfileWithSessions)}
}

func (s *MemoryProfileStore) GetProfileByPubkey(pubkey string) (*ProfileWithSessions, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()
	p, ok := s.profiles[pubkey]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "profile %s", pubkey)
	}
	return p, nil
}

func (s *MemoryProfileStore) ListProfiles() ([]*ProfileWithSessions, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()
	out := make([]*ProfileWithSessions, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (s *MemoryProfileStore) UpsertProfile(p *ProfileWithSessions) error {
	if p == nil || p.Pubkey == "" {
		return errors.New("store: profile must have a pubkey")
	}
	s.mx.Lock()
	defer s.mx.Unlock()
	s.profiles[p.Pubkey] = p
	return nil
}

// DeleteProfile removes a profile and, implicitly, every session it
// owns (sessions are stored inline on ProfileWithSessions, so there is
// nothing else to cascade to).
func (s *MemoryProfileStore) DeleteProfile(pubkey string) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if _, ok := s.profiles[pubkey]; !ok {
		return errors.Wrapf(ErrNotFound, "profile %s", pubkey)
	}
	delete(s.profiles, pubkey)
	return nil
}

// MemoryKeyStore is a reference SecureKeyStore backed by a guarded map.
// Production use should back this with the platform keychain; this
// implementation exists for tests only.
type MemoryKeyStore struct {
	mx   sync.RWMutex
	keys map[string]string
}

func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[string]string)}
}

func (s *MemoryKeyStore) GetPrivateKey(pubkey string) (string, error) {
	s.mx.RLock()
	defer s.mx.RUnlock()
	v, ok := s.keys[KeyFor(pubkey)]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "key for %s", pubkey)
	}
	return v, nil
}

func (s *MemoryKeyStore) SetPrivateKey(pubkey, privHex string) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.keys[KeyFor(pubkey)] = privHex
	return nil
}

func (s *MemoryKeyStore) DeletePrivateKey(pubkey string) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	delete(s.keys, KeyFor(pubkey))
	return nil
}
