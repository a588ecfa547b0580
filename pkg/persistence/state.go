package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// ControllerState contains the runtime state of a bearer controller.
type ControllerState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// LastPeer is the address of the most recently connected peer.
	LastPeer string `json:"last_peer,omitempty"`

	// Peers contains one record per peer ever connected.
	Peers []PeerRecord `json:"peers,omitempty"`
}

// PeerRecord is the connection history of one peer address.
type PeerRecord struct {
	// Address is the peer address as entered by the user.
	Address string `json:"address"`

	// FirstSeenAt is when the peer was first connected.
	FirstSeenAt time.Time `json:"first_seen_at"`

	// LastSeenAt is when the peer was last connected.
	LastSeenAt time.Time `json:"last_seen_at"`

	// Connects counts established bearer sessions.
	Connects int `json:"connects"`

	// Disconnects counts lost links.
	Disconnects int `json:"disconnects"`
}

// Peer returns the record for addr, or nil.
func (s *ControllerState) Peer(addr string) *PeerRecord {
	for i := range s.Peers {
		if s.Peers[i].Address == addr {
			return &s.Peers[i]
		}
	}
	return nil
}

// RecordConnect updates the record for addr after a session became ready.
func (s *ControllerState) RecordConnect(addr string, at time.Time) {
	rec := s.Peer(addr)
	if rec == nil {
		s.Peers = append(s.Peers, PeerRecord{Address: addr, FirstSeenAt: at})
		rec = &s.Peers[len(s.Peers)-1]
	}
	rec.LastSeenAt = at
	rec.Connects++
	s.LastPeer = addr
}

// RecordDisconnect counts a lost link for addr. Unknown peers are ignored.
func (s *ControllerState) RecordDisconnect(addr string) {
	if rec := s.Peer(addr); rec != nil {
		rec.Disconnects++
	}
}

// Forget removes the record for addr. It reports whether one existed.
func (s *ControllerState) Forget(addr string) bool {
	for i := range s.Peers {
		if s.Peers[i].Address == addr {
			s.Peers = append(s.Peers[:i], s.Peers[i+1:]...)
			if s.LastPeer == addr {
				s.LastPeer = ""
			}
			return true
		}
	}
	return false
}

// SortedPeers returns the peer records, most recently seen first.
func (s *ControllerState) SortedPeers() []PeerRecord {
	peers := make([]PeerRecord, len(s.Peers))
	copy(peers, s.Peers)
	sort.SliceStable(peers, func(i, j int) bool {
		return peers[i].LastSeenAt.After(peers[j].LastSeenAt)
	})
	return peers
}

// StateStore manages persistence of controller state to a JSON file.
type StateStore struct {
	mu   sync.Mutex
	path string
}

// NewStateStore creates a new state store.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Path returns the state file path.
func (s *StateStore) Path() string {
	return s.path
}

// Save persists the state to disk.
func (s *StateStore) Save(state *ControllerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	state.SavedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	// Write through a temp file so a crash never leaves a truncated state.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the state from disk.
// Returns an empty state if the file doesn't exist.
func (s *StateStore) Load() (*ControllerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &ControllerState{Version: StateVersion}, nil
	}
	if err != nil {
		return nil, err
	}

	state := &ControllerState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parse state %s: %w", s.path, err)
	}
	if state.Version > StateVersion {
		return nil, fmt.Errorf("state %s: unsupported version %d", s.path, state.Version)
	}

	return state, nil
}

// Clear removes the state file.
func (s *StateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
