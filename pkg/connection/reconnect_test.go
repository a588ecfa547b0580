package connection

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitForState(t *testing.T, m *Manager, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("State() = %v, want %v", m.State(), want)
}

func TestManager(t *testing.T) {
	t.Run("InitialState", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil }, fastRetry(3))
		defer m.Close()

		if m.State() != StateDisconnected {
			t.Errorf("Initial state = %v, want StateDisconnected", m.State())
		}
		if m.IsConnected() {
			t.Error("IsConnected() = true, want false")
		}
	})

	t.Run("SuccessfulConnect", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil }, fastRetry(3))
		defer m.Close()

		var connectedCalled bool
		m.OnConnected(func() { connectedCalled = true })

		if err := m.Connect(context.Background()); err != nil {
			t.Fatalf("Connect() error = %v", err)
		}
		if !connectedCalled {
			t.Error("OnConnected callback was not called")
		}
		if !m.IsConnected() {
			t.Errorf("State() = %v, want StateConnected", m.State())
		}
	})

	t.Run("RetriesThenConnects", func(t *testing.T) {
		var calls atomic.Int32
		m := NewManager(func(ctx context.Context) error {
			if calls.Add(1) < 3 {
				return errors.New("connection failed to be established")
			}
			return nil
		}, fastRetry(3))
		defer m.Close()

		if err := m.Connect(context.Background()); err != nil {
			t.Fatalf("Connect() error = %v", err)
		}
		if calls.Load() != 3 {
			t.Errorf("connect called %d times, want 3", calls.Load())
		}
	})

	t.Run("FailedConnect", func(t *testing.T) {
		expectedErr := errors.New("connection failed")
		m := NewManager(func(ctx context.Context) error { return expectedErr }, fastRetry(2))
		defer m.Close()

		err := m.Connect(context.Background())
		if !errors.Is(err, expectedErr) || !errors.Is(err, ErrRetriesExhausted) {
			t.Errorf("Connect() error = %v, want exhausted wrapping %v", err, expectedErr)
		}
		if m.State() != StateDisconnected {
			t.Errorf("State() = %v, want StateDisconnected", m.State())
		}
	})

	t.Run("AlreadyConnected", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil }, fastRetry(1))
		defer m.Close()

		_ = m.Connect(context.Background())
		if err := m.Connect(context.Background()); err != ErrAlreadyConnected {
			t.Errorf("Second Connect() error = %v, want ErrAlreadyConnected", err)
		}
	})

	t.Run("Closed", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil }, fastRetry(1))
		m.Close()
		m.Close()

		if err := m.Connect(context.Background()); err != ErrManagerClosed {
			t.Errorf("Connect() after Close error = %v, want ErrManagerClosed", err)
		}
	})

	t.Run("StateChangeCallback", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil }, fastRetry(1))
		m.SetAutoReconnect(false)
		defer m.Close()

		type transition struct{ from, to State }
		var transitions []transition
		m.OnStateChange(func(oldState, newState State) {
			transitions = append(transitions, transition{oldState, newState})
		})

		var disconnectedCalled bool
		m.OnDisconnected(func() { disconnectedCalled = true })

		_ = m.Connect(context.Background())
		m.NotifyConnectionLost()

		expected := []transition{
			{StateDisconnected, StateConnecting},
			{StateConnecting, StateConnected},
			{StateConnected, StateDisconnected},
		}
		if len(transitions) != len(expected) {
			t.Fatalf("Got %d transitions, want %d", len(transitions), len(expected))
		}
		for i, exp := range expected {
			if transitions[i] != exp {
				t.Errorf("Transition %d: got %v→%v, want %v→%v",
					i, transitions[i].from, transitions[i].to, exp.from, exp.to)
			}
		}
		if !disconnectedCalled {
			t.Error("OnDisconnected callback was not called")
		}
	})
}

func TestManagerReconnect(t *testing.T) {
	t.Run("AutoReconnectOnLinkLoss", func(t *testing.T) {
		var calls atomic.Int32
		m := NewManager(func(ctx context.Context) error {
			calls.Add(1)
			return nil
		}, fastRetry(3))
		m.StartReconnectLoop()
		defer m.Close()

		if err := m.Connect(context.Background()); err != nil {
			t.Fatalf("Initial Connect() error = %v", err)
		}

		var rounds atomic.Int32
		m.OnReconnecting(func(round int, delay time.Duration) { rounds.Add(1) })

		m.NotifyConnectionLost()
		waitForState(t, m, StateConnected)

		if calls.Load() != 2 {
			t.Errorf("connect called %d times, want 2", calls.Load())
		}
		if rounds.Load() != 1 {
			t.Errorf("OnReconnecting called %d times, want 1", rounds.Load())
		}
	})

	t.Run("RoundsRepeatUntilSuccess", func(t *testing.T) {
		var calls atomic.Int32
		var mu sync.Mutex
		var roundErrors []error

		m := NewManager(func(ctx context.Context) error {
			n := calls.Add(1)
			if n == 1 {
				return nil // initial connect
			}
			if n < 6 {
				return errors.New("not yet")
			}
			return nil
		}, fastRetry(2))
		m.roundBackoff = NewBackoff(RetryConfig{Initial: time.Millisecond, Max: 5 * time.Millisecond, Multiplier: 2})
		m.OnError(func(err error) {
			mu.Lock()
			roundErrors = append(roundErrors, err)
			mu.Unlock()
		})
		m.StartReconnectLoop()
		defer m.Close()

		_ = m.Connect(context.Background())
		m.NotifyConnectionLost()
		waitForState(t, m, StateConnected)

		mu.Lock()
		defer mu.Unlock()
		// Attempts 2-3 and 4-5 fail as two rounds; attempt 6 succeeds.
		if len(roundErrors) != 2 {
			t.Errorf("got %d failed rounds, want 2", len(roundErrors))
		}
		for _, err := range roundErrors {
			if !errors.Is(err, ErrRetriesExhausted) {
				t.Errorf("round error = %v, want ErrRetriesExhausted", err)
			}
		}
	})

	t.Run("PermanentErrorStops", func(t *testing.T) {
		var calls atomic.Int32
		unsupported := errors.New("unsupported peer")
		m := NewManager(func(ctx context.Context) error {
			if calls.Add(1) == 1 {
				return nil
			}
			return Permanent(unsupported)
		}, fastRetry(3))
		m.roundBackoff = NewBackoff(RetryConfig{Initial: time.Millisecond, Multiplier: 1})

		errCh := make(chan error, 1)
		m.OnError(func(err error) { errCh <- err })
		m.StartReconnectLoop()
		defer m.Close()

		_ = m.Connect(context.Background())
		m.NotifyConnectionLost()

		select {
		case err := <-errCh:
			if !errors.Is(err, unsupported) {
				t.Errorf("error = %v, want unsupported peer", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("OnError not called")
		}
		waitForState(t, m, StateDisconnected)
		if calls.Load() != 2 {
			t.Errorf("connect called %d times, want 2", calls.Load())
		}
	})

	t.Run("DisabledAutoReconnect", func(t *testing.T) {
		var calls atomic.Int32
		m := NewManager(func(ctx context.Context) error {
			calls.Add(1)
			return nil
		}, fastRetry(3))
		m.SetAutoReconnect(false)
		m.StartReconnectLoop()
		defer m.Close()

		_ = m.Connect(context.Background())
		m.NotifyConnectionLost()

		time.Sleep(50 * time.Millisecond)

		if m.State() != StateDisconnected {
			t.Errorf("State() = %v, want StateDisconnected (no auto-reconnect)", m.State())
		}
		if calls.Load() != 1 {
			t.Errorf("Connect called %d times, want 1 (no reconnection)", calls.Load())
		}
	})

	t.Run("CloseStopsReconnect", func(t *testing.T) {
		m := NewManager(func(ctx context.Context) error { return nil }, fastRetry(1))
		m.roundBackoff = NewBackoff(RetryConfig{Initial: time.Hour, Multiplier: 1})
		m.StartReconnectLoop()

		_ = m.Connect(context.Background())
		m.NotifyConnectionLost()

		done := make(chan struct{})
		go func() {
			m.Close()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Close blocked on the reconnect loop")
		}
		if m.State() != StateClosed {
			t.Errorf("State() = %v, want StateClosed", m.State())
		}
	})
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDisconnected, "DISCONNECTED"},
		{StateConnecting, "CONNECTING"},
		{StateConnected, "CONNECTED"},
		{StateReconnecting, "RECONNECTING"},
		{StateClosed, "CLOSED"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
