package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/meshgatt/meshgatt-go/pkg/bearer"
	"github.com/meshgatt/meshgatt-go/pkg/connection"
	"github.com/meshgatt/meshgatt-go/pkg/gatt"
	"github.com/meshgatt/meshgatt-go/pkg/persistence"
)

var (
	errNotConnected = errors.New("not connected")
	errNoPeer       = errors.New("no peer address")
)

// peerLink is a connected GATT link. *gatt.Link implements it.
type peerLink interface {
	bearer.Link
	Watch(ctx context.Context, d gatt.Disconnecter) (clearCache bool, err error)
	ForgetProfile()
	Close() error
}

// dialFunc connects to the peer at addr.
type dialFunc func(ctx context.Context, addr string) (peerLink, error)

// peerConn is one established connection.
type peerConn struct {
	link    peerLink
	session *bearer.Session
	stop    context.CancelFunc
	done    chan struct{}
}

// Controller dials a mesh node, establishes the bearer session and keeps it
// connected.
type Controller struct {
	mu sync.Mutex

	dial          dialFunc
	sessionConfig bearer.SessionConfig
	manager       *connection.Manager
	autoReconnect bool
	logger        *slog.Logger

	peer string
	conn *peerConn

	stateMu sync.Mutex
	store   *persistence.StateStore
	state   *persistence.ControllerState

	onPDUReceived func(peer bearer.PeerID, pdu []byte)
	onPDUSent     func(peer bearer.PeerID, pdu []byte)
	onLinkLost    func(peer bearer.PeerID, clearCache bool)
}

// NewController creates a controller. logger may be nil.
func NewController(dial dialFunc, sessionConfig bearer.SessionConfig,
	retry connection.RetryConfig, autoReconnect bool, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Controller{
		dial:          dial,
		sessionConfig: sessionConfig,
		autoReconnect: autoReconnect,
		logger:        logger,
	}
	c.manager = connection.NewManager(c.connectOnce, retry)
	c.manager.SetLogger(logger)
	c.manager.SetAutoReconnect(autoReconnect)
	c.manager.StartReconnectLoop()
	return c
}

// Manager returns the connection manager driving the retry rounds.
func (c *Controller) Manager() *connection.Manager {
	return c.manager
}

// Connect dials addr and establishes a bearer session, retrying per the
// configured round. An empty addr reuses the previous peer.
func (c *Controller) Connect(ctx context.Context, addr string) error {
	c.mu.Lock()
	if addr != "" {
		c.peer = addr
	}
	peer := c.peer
	c.mu.Unlock()

	if peer == "" {
		return errNoPeer
	}
	return c.manager.Connect(ctx)
}

// UseStateStore loads the known peers from store and records every
// connection into it. The last peer becomes the default for Connect.
func (c *Controller) UseStateStore(store *persistence.StateStore) error {
	state, err := store.Load()
	if err != nil {
		return err
	}

	c.stateMu.Lock()
	c.store = store
	c.state = state
	c.stateMu.Unlock()

	c.mu.Lock()
	if c.peer == "" {
		c.peer = state.LastPeer
	}
	c.mu.Unlock()
	return nil
}

// Peer returns the address Connect uses when called without one.
func (c *Controller) Peer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peer
}

// Peers returns the known peers, most recently seen first.
func (c *Controller) Peers() []persistence.PeerRecord {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.state == nil {
		return nil
	}
	return c.state.SortedPeers()
}

// ForgetPeer drops the stored record for addr.
func (c *Controller) ForgetPeer(addr string) (bool, error) {
	var found bool
	err := c.updateState(func(s *persistence.ControllerState) {
		found = s.Forget(addr)
	})
	return found, err
}

// Send transmits a PDU over the current session.
func (c *Controller) Send(ctx context.Context, pdu []byte) error {
	conn := c.current()
	if conn == nil {
		return errNotConnected
	}
	return conn.session.Send(ctx, pdu)
}

// Status returns the connection state and, while connected, the session status.
func (c *Controller) Status() (connection.State, *bearer.Status) {
	state := c.manager.State()
	conn := c.current()
	if conn == nil {
		return state, nil
	}
	st := conn.session.Status()
	return state, &st
}

// RequireCacheClear marks the peer's GATT metadata for removal on the next
// disconnect.
func (c *Controller) RequireCacheClear() error {
	conn := c.current()
	if conn == nil {
		return errNotConnected
	}
	conn.session.RequireCacheClear()
	return nil
}

// Rediscover drops the cached GATT metadata of the peer and binds the
// session again.
func (c *Controller) Rediscover(ctx context.Context) error {
	conn := c.current()
	if conn == nil {
		return errNotConnected
	}
	conn.link.ForgetProfile()
	return conn.session.Rediscover(ctx)
}

// Disconnect closes the link without triggering a reconnect. It waits until
// the link reports the disconnect or ctx is done.
func (c *Controller) Disconnect(ctx context.Context) error {
	conn := c.current()
	if conn == nil {
		return errNotConnected
	}

	c.manager.SetAutoReconnect(false)
	defer c.manager.SetAutoReconnect(c.autoReconnect)

	if err := conn.link.Close(); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	select {
	case <-conn.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops reconnecting and releases the current connection.
func (c *Controller) Close() {
	c.manager.Close()

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.stop()
		conn.session.Close()
		conn.link.Close()
	}
}

// OnPDUReceived sets a callback for PDUs received from the peer.
func (c *Controller) OnPDUReceived(fn func(peer bearer.PeerID, pdu []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPDUReceived = fn
}

// OnPDUSent sets a callback for PDUs fully written to the peer.
func (c *Controller) OnPDUSent(fn func(peer bearer.PeerID, pdu []byte)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPDUSent = fn
}

// OnLinkLost sets a callback for link loss, including Disconnect.
func (c *Controller) OnLinkLost(fn func(peer bearer.PeerID, clearCache bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onLinkLost = fn
}

func (c *Controller) current() *peerConn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// connectOnce is one connection attempt for the manager.
func (c *Controller) connectOnce(ctx context.Context) error {
	c.mu.Lock()
	peer := c.peer
	c.mu.Unlock()

	link, err := c.dial(ctx, peer)
	if err != nil {
		return err
	}

	handler := bearer.HandlerFuncs{Sent: c.pduSent, Received: c.pduReceived}
	session := bearer.NewSession(bearer.PeerID(peer), link, handler, c.sessionConfig)
	if err := session.Establish(ctx); err != nil {
		// The link is torn down, so the disconnect cache decision applies.
		if session.HandleDisconnected() {
			link.ForgetProfile()
		}
		session.Close()
		link.Close()
		if errors.Is(err, bearer.ErrUnsupportedPeer) {
			return connection.Permanent(err)
		}
		return err
	}

	watchCtx, stop := context.WithCancel(context.Background())
	conn := &peerConn{
		link:    link,
		session: session,
		stop:    stop,
		done:    make(chan struct{}),
	}

	c.mu.Lock()
	old := c.conn
	c.conn = conn
	c.mu.Unlock()
	if old != nil {
		old.stop()
		old.session.Close()
	}

	go c.watch(watchCtx, conn)

	st := session.Status()
	c.logger.Info("bearer ready", "peer", peer, "profile", st.Profile, "mtu", st.MTU, "conn_id", session.ConnectionID())
	if err := c.updateState(func(s *persistence.ControllerState) {
		s.RecordConnect(peer, time.Now())
	}); err != nil {
		c.logger.Warn("failed to save state", "error", err)
	}
	return nil
}

// updateState applies fn to the stored state and saves it. It is a no-op
// without a state store.
func (c *Controller) updateState(fn func(*persistence.ControllerState)) error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.state == nil {
		return nil
	}
	fn(c.state)
	return c.store.Save(c.state)
}

// watch waits for link loss and hands the connection back to the manager.
func (c *Controller) watch(ctx context.Context, conn *peerConn) {
	defer close(conn.done)

	clearCache, err := conn.link.Watch(ctx, conn.session)
	if err != nil {
		return
	}

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	onLinkLost := c.onLinkLost
	c.mu.Unlock()

	conn.stop()
	conn.session.Close()
	if err := c.updateState(func(s *persistence.ControllerState) {
		s.RecordDisconnect(string(conn.session.Peer()))
	}); err != nil {
		c.logger.Warn("failed to save state", "error", err)
	}
	c.logger.Info("link lost", "peer", conn.session.Peer(), "clear_cache", clearCache)
	if onLinkLost != nil {
		onLinkLost(conn.session.Peer(), clearCache)
	}
	c.manager.NotifyConnectionLost()
}

func (c *Controller) pduSent(peer bearer.PeerID, _ int, pdu []byte) {
	c.mu.Lock()
	fn := c.onPDUSent
	c.mu.Unlock()
	if fn != nil {
		fn(peer, pdu)
	}
}

func (c *Controller) pduReceived(peer bearer.PeerID, _ int, pdu []byte) {
	c.mu.Lock()
	fn := c.onPDUReceived
	c.mu.Unlock()
	if fn != nil {
		fn(peer, pdu)
	}
}
