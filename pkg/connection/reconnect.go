package connection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Manager errors.
var (
	ErrManagerClosed    = errors.New("connection manager closed")
	ErrAlreadyConnected = errors.New("already connected")
)

// State represents the connection state.
type State uint8

const (
	// StateDisconnected indicates no active connection.
	StateDisconnected State = iota

	// StateConnecting indicates a connection attempt is in progress.
	StateConnecting

	// StateConnected indicates an active connection.
	StateConnected

	// StateReconnecting indicates automatic reconnection is in progress.
	StateReconnecting

	// StateClosed indicates the connection manager has been closed.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateReconnecting:
		return "RECONNECTING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ConnectFunc performs one connection attempt: dial the peer and establish
// the bearer session. Wrap errors with Permanent to stop retrying.
type ConnectFunc func(ctx context.Context) error

// Manager runs connect attempts with retry and reconnects after link loss.
type Manager struct {
	mu sync.RWMutex

	state         State
	config        RetryConfig
	connectFn     ConnectFunc
	autoReconnect bool
	roundBackoff  *Backoff
	logger        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	reconnectCh chan struct{}

	onStateChange  func(oldState, newState State)
	onConnected    func()
	onDisconnected func()
	onReconnecting func(round int, delay time.Duration)
	onError        func(err error)
}

// NewManager creates a connection manager. Zero fields in config take the
// package defaults.
func NewManager(connectFn ConnectFunc, config RetryConfig) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	config = config.withDefaults()

	return &Manager{
		state:         StateDisconnected,
		config:        config,
		connectFn:     connectFn,
		autoReconnect: true,
		roundBackoff: NewBackoff(RetryConfig{
			Initial:    config.Initial,
			Max:        MaxBackoff,
			Multiplier: BackoffMultiplier,
			Jitter:     JitterFactor,
		}),
		ctx:         ctx,
		cancel:      cancel,
		reconnectCh: make(chan struct{}, 1),
	}
}

// SetLogger sets the logger for debug output.
func (m *Manager) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsConnected returns true if currently connected.
func (m *Manager) IsConnected() bool {
	return m.State() == StateConnected
}

// SetAutoReconnect enables or disables automatic reconnection.
func (m *Manager) SetAutoReconnect(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.autoReconnect = enabled
}

// Connect runs one retry round. It returns ErrRetriesExhausted (wrapping the
// last attempt's error) when every attempt failed.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case StateConnected:
		m.mu.Unlock()
		return ErrAlreadyConnected
	case StateClosed:
		m.mu.Unlock()
		return ErrManagerClosed
	}
	oldState := m.state
	m.state = StateConnecting
	m.mu.Unlock()
	m.notifyState(oldState, StateConnecting)

	err := m.round(ctx)

	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return ErrManagerClosed
	}
	if err != nil {
		m.state = StateDisconnected
		m.mu.Unlock()
		m.notifyState(StateConnecting, StateDisconnected)
		return err
	}
	m.state = StateConnected
	m.roundBackoff.Reset()
	onConnected := m.onConnected
	m.mu.Unlock()

	m.notifyState(StateConnecting, StateConnected)
	if onConnected != nil {
		onConnected()
	}
	return nil
}

// NotifyConnectionLost reports that the link dropped. With auto-reconnect
// enabled the background loop starts a new retry round.
func (m *Manager) NotifyConnectionLost() {
	m.mu.Lock()
	if m.state != StateConnected {
		m.mu.Unlock()
		return
	}

	autoReconnect := m.autoReconnect
	newState := StateDisconnected
	if autoReconnect {
		newState = StateReconnecting
	}
	m.state = newState
	onDisconnected := m.onDisconnected
	m.mu.Unlock()

	m.notifyState(StateConnected, newState)
	if onDisconnected != nil {
		onDisconnected()
	}

	if autoReconnect {
		m.triggerReconnect()
	}
}

// StartReconnectLoop starts the background reconnection loop.
// Must be called once before reconnection will work.
func (m *Manager) StartReconnectLoop() {
	m.wg.Add(1)
	go m.reconnectLoop()
}

// Close shuts down the manager and waits for the reconnect loop to exit.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return
	}
	oldState := m.state
	m.state = StateClosed
	m.mu.Unlock()

	m.notifyState(oldState, StateClosed)

	m.cancel()
	m.wg.Wait()
}

func (m *Manager) round(ctx context.Context) error {
	return Retry(ctx, m.config, func(ctx context.Context, attempt int) error {
		err := m.connectFn(ctx)
		if err != nil {
			m.debugLog("connect attempt failed", "attempt", attempt, "error", err)
		}
		return err
	})
}

func (m *Manager) triggerReconnect() {
	select {
	case m.reconnectCh <- struct{}{}:
	default:
		// Already pending
	}
}

func (m *Manager) reconnectLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-m.reconnectCh:
			m.reconnect()
		}
	}
}

// reconnect runs retry rounds separated by backoff until one succeeds.
func (m *Manager) reconnect() {
	for {
		if m.State() != StateReconnecting {
			return
		}

		delay := m.roundBackoff.Next()
		m.mu.RLock()
		onReconnecting := m.onReconnecting
		m.mu.RUnlock()
		if onReconnecting != nil {
			onReconnecting(m.roundBackoff.Attempts(), delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-m.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		err := m.round(m.ctx)

		m.mu.Lock()
		if m.state != StateReconnecting {
			m.mu.Unlock()
			return
		}
		if err == nil {
			m.state = StateConnected
			m.roundBackoff.Reset()
			onConnected := m.onConnected
			m.mu.Unlock()

			m.notifyState(StateReconnecting, StateConnected)
			if onConnected != nil {
				onConnected()
			}
			return
		}
		if IsPermanent(err) {
			m.state = StateDisconnected
			onError := m.onError
			m.mu.Unlock()

			m.notifyState(StateReconnecting, StateDisconnected)
			if onError != nil {
				onError(err)
			}
			return
		}
		onError := m.onError
		m.mu.Unlock()

		if onError != nil {
			onError(err)
		}
	}
}

func (m *Manager) notifyState(oldState, newState State) {
	m.mu.RLock()
	fn := m.onStateChange
	m.mu.RUnlock()
	if fn != nil {
		fn(oldState, newState)
	}
}

func (m *Manager) debugLog(msg string, args ...any) {
	m.mu.RLock()
	logger := m.logger
	m.mu.RUnlock()
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// OnStateChange sets a callback for state changes.
func (m *Manager) OnStateChange(fn func(oldState, newState State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

// OnConnected sets a callback for successful connection.
func (m *Manager) OnConnected(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onConnected = fn
}

// OnDisconnected sets a callback for disconnection.
func (m *Manager) OnDisconnected(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisconnected = fn
}

// OnReconnecting sets a callback invoked before each reconnect round.
func (m *Manager) OnReconnecting(fn func(round int, delay time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReconnecting = fn
}

// OnError sets a callback for failed reconnect rounds.
func (m *Manager) OnError(fn func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = fn
}
