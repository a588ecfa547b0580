package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStateStore(t *testing.T) {
	t.Run("LoadNonExistent", func(t *testing.T) {
		store := NewStateStore(filepath.Join(t.TempDir(), "nonexistent.json"))

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got == nil {
			t.Fatal("Load() = nil, want empty state")
		}
		if len(got.Peers) != 0 || got.LastPeer != "" {
			t.Errorf("Load() = %+v, want empty state", got)
		}
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		store := NewStateStore(filepath.Join(t.TempDir(), "nested", "state.json"))
		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		state := &ControllerState{}
		state.RecordConnect("C4:7F:51:00:00:01", at)

		if err := store.Save(state); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Version != StateVersion {
			t.Errorf("Version = %d, want %d", got.Version, StateVersion)
		}
		if got.SavedAt.IsZero() {
			t.Error("SavedAt not set")
		}
		if got.LastPeer != "C4:7F:51:00:00:01" {
			t.Errorf("LastPeer = %q", got.LastPeer)
		}
		rec := got.Peer("C4:7F:51:00:00:01")
		if rec == nil {
			t.Fatal("Peer() = nil")
		}
		if rec.Connects != 1 || !rec.FirstSeenAt.Equal(at) {
			t.Errorf("record = %+v", rec)
		}
		if !rec.LastSeenAt.Equal(at) {
			t.Errorf("LastSeenAt = %v, want %v", rec.LastSeenAt, at)
		}
	})

	t.Run("LoadCorrupt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewStateStore(path).Load(); err == nil {
			t.Error("Load() error = nil, want parse error")
		}
	})

	t.Run("LoadFutureVersion", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewStateStore(path).Load(); err == nil {
			t.Error("Load() error = nil, want version error")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		store := NewStateStore(filepath.Join(t.TempDir(), "state.json"))
		if err := store.Save(&ControllerState{}); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
			t.Errorf("state file still exists: %v", err)
		}
		// Clearing twice is fine.
		if err := store.Clear(); err != nil {
			t.Errorf("second Clear() error = %v", err)
		}
	})
}

func TestControllerStateRecords(t *testing.T) {
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	state := &ControllerState{}
	state.RecordConnect("A", first)
	state.RecordConnect("B", first.Add(time.Minute))
	state.RecordDisconnect("A")
	state.RecordDisconnect("unknown")
	state.RecordConnect("A", later)

	if state.LastPeer != "A" {
		t.Errorf("LastPeer = %q, want A", state.LastPeer)
	}
	if len(state.Peers) != 2 {
		t.Fatalf("len(Peers) = %d, want 2", len(state.Peers))
	}

	a := state.Peer("A")
	if a.Connects != 2 || a.Disconnects != 1 {
		t.Errorf("A counters = %d/%d, want 2/1", a.Connects, a.Disconnects)
	}
	if !a.FirstSeenAt.Equal(first) || !a.LastSeenAt.Equal(later) {
		t.Errorf("A seen = %v..%v", a.FirstSeenAt, a.LastSeenAt)
	}

	sorted := state.SortedPeers()
	if sorted[0].Address != "A" || sorted[1].Address != "B" {
		t.Errorf("SortedPeers order = %s, %s", sorted[0].Address, sorted[1].Address)
	}

	if !state.Forget("A") {
		t.Error("Forget(A) = false")
	}
	if state.Forget("A") {
		t.Error("second Forget(A) = true")
	}
	if state.LastPeer != "" {
		t.Errorf("LastPeer = %q after Forget, want empty", state.LastPeer)
	}
	if state.Peer("B") == nil {
		t.Error("Forget(A) removed B")
	}
}
