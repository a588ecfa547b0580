package bearer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meshgatt/meshgatt-go/pkg/log"
)

// State is the session lifecycle state.
type State int

const (
	// StateIdle means no profile is bound.
	StateIdle State = iota

	// StateDiscovering means service discovery is running.
	StateDiscovering

	// StateBound means a profile is selected but notifications are not enabled.
	StateBound

	// StateReady means PDUs can flow in both directions.
	StateReady

	// StateClosed means the owner discarded the session.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateDiscovering:
		return "DISCOVERING"
	case StateBound:
		return "BOUND"
	case StateReady:
		return "READY"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Status is a point-in-time snapshot of a session.
type Status struct {
	ConnectionID      string
	Peer              PeerID
	State             State
	Profile           Profile
	MTU               int
	PacketSize        int
	Ready             bool
	PendingCacheClear bool
}

// ProvisioningComplete reports whether the peer is a provisioned node,
// i.e. it is reached through the Proxy profile.
func (s Status) ProvisioningComplete() bool {
	return s.Profile == ProfileProxy
}

// Session is the GATT bearer for one connected peer.
//
// Establish and Send are serialized by an operation lock, so the segments
// of two PDUs never interleave. Inbound notifications and the Handle*
// events do not take that lock and may arrive at any time.
type Session struct {
	peer    PeerID
	link    Link
	handler Handler
	config  SessionConfig
	connID  string

	// opSem serializes Establish and Send. Waiting on it honours the
	// caller's context.
	opSem chan struct{}

	// mu protects the fields below.
	mu                sync.Mutex
	state             State
	binding           Binding
	mtu               int
	ready             bool
	pendingCacheClear bool
	onStateChange     func(oldState, newState State)

	// gen is bumped on every reset. Work started under an older generation
	// is discarded.
	gen uint64

	// linkCtx is cancelled when the current generation ends.
	linkCtx    context.Context
	linkCancel context.CancelCauseFunc
}

// NewSession creates a session for peer over link. A nil handler discards
// PDUs.
func NewSession(peer PeerID, link Link, handler Handler, config SessionConfig) *Session {
	if config.RequestedMTU == 0 {
		config.RequestedMTU = MaxMTU
	}
	config.RequestedMTU = ClampMTU(config.RequestedMTU)
	if config.ProtocolLogger == nil {
		config.ProtocolLogger = log.NoopLogger{}
	}
	if handler == nil {
		handler = HandlerFuncs{}
	}

	s := &Session{
		peer:    peer,
		link:    link,
		handler: handler,
		config:  config,
		connID:  uuid.New().String(),
		state:   StateIdle,
		mtu:     DefaultMTU,
		opSem:   make(chan struct{}, 1),
	}
	s.linkCtx, s.linkCancel = context.WithCancelCause(context.Background())
	return s
}

// Peer returns the peer this session is bound to.
func (s *Session) Peer() PeerID {
	return s.peer
}

// ConnectionID returns the identifier stamped on protocol log events.
func (s *Session) ConnectionID() string {
	return s.connID
}

// OnStateChange registers a callback for state transitions. It is called
// without session locks held.
func (s *Session) OnStateChange(fn func(oldState, newState State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStateChange = fn
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		ConnectionID:      s.connID,
		Peer:              s.peer,
		State:             s.state,
		Profile:           s.binding.Profile,
		MTU:               s.mtu,
		PacketSize:        PacketSize(s.mtu),
		Ready:             s.ready,
		PendingCacheClear: s.pendingCacheClear,
	}
}

// Establish discovers the peer's services, selects the profile, negotiates
// the MTU and enables notifications on Data Out.
//
// Discovery and selection failures leave the session idle. MTU or
// notification failures keep the selected profile so that the cache
// decision at the next disconnect still reflects it.
func (s *Session) Establish(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrNegotiationFailed, err)
	}
	defer s.release()

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.ready {
		s.mu.Unlock()
		return ErrAlreadyEstablished
	}
	if s.binding.Bound() {
		// Leftover from a failed negotiation; start over.
		s.resetLocked()
	}
	old := s.setStateLocked(StateDiscovering)
	gen := s.gen
	s.mu.Unlock()
	s.notifyState(old, StateDiscovering, "establish")

	opCtx, done := s.opContext(ctx)
	defer done()

	s.debugLog("Establish: discovering services", "peer", s.peer)
	cat, err := s.link.DiscoverServices(opCtx)
	if err != nil {
		err = fmt.Errorf("%w: service discovery: %w", ErrNegotiationFailed, causeOf(opCtx, err))
		s.failIdle(gen, err, "discovery")
		return err
	}

	binding, err := SelectProfile(cat)
	if err != nil {
		s.failIdle(gen, err, "profile selection")
		return err
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrNegotiationFailed, errLinkLost)
	}
	s.binding = binding
	old = s.setStateLocked(StateBound)
	s.mu.Unlock()
	s.notifyState(old, StateBound, "profile selected")
	s.logProfile(ProfileNone, binding.Profile)

	s.debugLog("Establish: requesting MTU", "peer", s.peer, "profile", binding.Profile, "mtu", s.config.RequestedMTU)
	granted, err := s.link.RequestMTU(opCtx, s.config.RequestedMTU)
	if err != nil {
		err = fmt.Errorf("%w: MTU exchange: %w", ErrNegotiationFailed, causeOf(opCtx, err))
		s.logError(log.LayerLink, err, "NEGOTIATION_FAILED", "mtu exchange")
		return err
	}
	mtu := ClampMTU(granted)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrNegotiationFailed, errLinkLost)
	}
	s.mtu = mtu
	s.mu.Unlock()
	s.logEvent(log.Event{
		Layer:       log.LayerLink,
		Category:    log.CategoryNegotiation,
		Profile:     binding.Profile.String(),
		Negotiation: &log.NegotiationEvent{Requested: s.config.RequestedMTU, Granted: mtu, PacketSize: PacketSize(mtu)},
	})

	s.debugLog("Establish: enabling notifications", "peer", s.peer, "mtu", mtu)
	if err := s.link.EnableNotifications(opCtx, binding.DataOut, func(data []byte) {
		s.deliver(gen, data)
	}); err != nil {
		err = fmt.Errorf("%w: enable notifications: %w", ErrNegotiationFailed, causeOf(opCtx, err))
		s.logError(log.LayerLink, err, "NEGOTIATION_FAILED", "enable notifications")
		return err
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrNegotiationFailed, errLinkLost)
	}
	s.ready = true
	old = s.setStateLocked(StateReady)
	s.mu.Unlock()
	s.notifyState(old, StateReady, "notifications enabled")

	s.debugLog("Establish: ready", "peer", s.peer, "profile", binding.Profile, "packet_size", PacketSize(mtu))
	return nil
}

// acquire takes the operation slot or gives up when ctx ends first.
func (s *Session) acquire(ctx context.Context) error {
	select {
	case s.opSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) release() { <-s.opSem }

// Rediscover handles a services-changed indication: the session is reset
// and established again.
func (s *Session) Rediscover(ctx context.Context) error {
	s.HandleServicesInvalidated()
	return s.Establish(ctx)
}

// Send writes pdu to the peer as consecutive segments of at most
// PacketSize bytes. It returns after the last segment was written and the
// handler was told. A failed segment fails the whole PDU with ErrSendFailed.
func (s *Session) Send(ctx context.Context, pdu []byte) error {
	if len(pdu) == 0 {
		return ErrEmptyPDU
	}

	if err := s.acquire(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	defer s.release()

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if !s.ready {
		drop := s.config.DropWhenNotReady
		s.mu.Unlock()
		if drop {
			s.debugLog("Send: dropping PDU, session not ready", "peer", s.peer, "size", len(pdu))
			return nil
		}
		return ErrNotReady
	}
	binding := s.binding
	packetSize := PacketSize(s.mtu)
	gen := s.gen
	s.mu.Unlock()

	opCtx, done := s.opContext(ctx)
	defer done()

	segments := Segment(pdu, packetSize)
	for i, seg := range segments {
		err := opCtx.Err()
		if err == nil {
			err = s.link.WriteWithoutResponse(opCtx, binding.DataIn, seg)
		}
		if err == nil && !s.current(gen) {
			err = errLinkLost
		}
		if err != nil {
			err = fmt.Errorf("%w: segment %d/%d: %w", ErrSendFailed, i+1, len(segments), causeOf(opCtx, err))
			s.logError(log.LayerLink, err, "SEND_FAILED", fmt.Sprintf("segment %d/%d", i+1, len(segments)))
			return err
		}

		data, truncated := log.TruncateData(seg)
		s.logEvent(log.Event{
			Direction: log.DirectionOut,
			Layer:     log.LayerLink,
			Category:  log.CategoryMessage,
			Profile:   binding.Profile.String(),
			Segment: &log.SegmentEvent{
				Index:     i,
				Count:     len(segments),
				Size:      len(seg),
				Data:      data,
				Truncated: truncated,
			},
		})
	}

	data, truncated := log.TruncateData(pdu)
	s.logEvent(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerBearer,
		Category:  log.CategoryMessage,
		Profile:   binding.Profile.String(),
		PDU: &log.PDUEvent{
			Size:       len(pdu),
			PacketSize: packetSize,
			Segments:   len(segments),
			Data:       data,
			Truncated:  truncated,
		},
	})

	s.handler.OnPDUSent(s.peer, packetSize, pdu)
	return nil
}

// HandleDisconnected resets the session after the link dropped and reports
// whether cached GATT metadata for the peer must be discarded. That is the
// case when the peer was provisioning or when RequireCacheClear was called
// since the last disconnect.
func (s *Session) HandleDisconnected() (clearCache bool) {
	s.mu.Lock()
	profile := s.binding.Profile
	clearCache = profile == ProfileProvisioning || s.pendingCacheClear
	s.pendingCacheClear = false
	old, changed := s.resetLocked()
	s.mu.Unlock()

	if changed {
		s.notifyState(old, StateIdle, "disconnected")
	}
	s.logProfile(profile, ProfileNone)
	s.logCache(clearCache, "disconnected")
	s.debugLog("HandleDisconnected", "peer", s.peer, "profile", profile, "clear_cache", clearCache)
	return clearCache
}

// HandleServicesInvalidated resets the session after the peer signalled a
// change in its GATT database. The pending cache flag is left untouched.
func (s *Session) HandleServicesInvalidated() {
	s.mu.Lock()
	profile := s.binding.Profile
	old, changed := s.resetLocked()
	s.mu.Unlock()

	if changed {
		s.notifyState(old, StateIdle, "services invalidated")
	}
	s.logProfile(profile, ProfileNone)
	s.debugLog("HandleServicesInvalidated", "peer", s.peer, "profile", profile)
}

// RequireCacheClear makes the next HandleDisconnected report that cached GATT
// metadata must be discarded, e.g. after a node reset was sent.
func (s *Session) RequireCacheClear() {
	s.mu.Lock()
	s.pendingCacheClear = true
	profile := s.binding.Profile
	s.mu.Unlock()

	s.logEvent(log.Event{
		Layer:    log.LayerBearer,
		Category: log.CategoryState,
		Profile:  profile.String(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityCache,
			NewState: "CLEAR_PENDING",
			Reason:   "requested",
		},
	})
}

// Close resets the session and rejects further operations. Close does not
// disconnect the link.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	prev := s.state
	s.resetLocked()
	s.setStateLocked(StateClosed)
	s.mu.Unlock()

	s.notifyState(prev, StateClosed, "closed")
	return nil
}

// deliver forwards one notification received under generation gen.
func (s *Session) deliver(gen uint64, data []byte) {
	s.mu.Lock()
	if gen != s.gen || !s.binding.Bound() {
		s.mu.Unlock()
		return
	}
	packetSize := PacketSize(s.mtu)
	profile := s.binding.Profile
	s.mu.Unlock()

	payload := make([]byte, len(data))
	copy(payload, data)

	logged, truncated := log.TruncateData(payload)
	s.logEvent(log.Event{
		Direction: log.DirectionIn,
		Layer:     log.LayerLink,
		Category:  log.CategoryMessage,
		Profile:   profile.String(),
		Segment: &log.SegmentEvent{
			Count:     1,
			Size:      len(payload),
			Data:      logged,
			Truncated: truncated,
		},
	})

	s.handler.OnPDUReceived(s.peer, packetSize, payload)
}

// resetLocked clears all profile state and ends the current generation.
// Must be called with s.mu held. A closed session stays closed.
func (s *Session) resetLocked() (old State, changed bool) {
	s.gen++
	s.linkCancel(errLinkLost)
	s.linkCtx, s.linkCancel = context.WithCancelCause(context.Background())

	s.binding = Binding{}
	s.mtu = DefaultMTU
	s.ready = false

	if s.state == StateClosed || s.state == StateIdle {
		return s.state, false
	}
	return s.setStateLocked(StateIdle), true
}

// failIdle resets the session after a failed discovery cycle, unless a
// disconnect already did.
func (s *Session) failIdle(gen uint64, err error, op string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	old, changed := s.resetLocked()
	s.mu.Unlock()

	if changed {
		s.notifyState(old, StateIdle, op+" failed")
	}
	s.logError(log.LayerBearer, err, errorKind(err), op)
}

func (s *Session) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

// opContext derives a context for one operation that is also cancelled when
// the current generation ends.
func (s *Session) opContext(ctx context.Context) (context.Context, func()) {
	s.mu.Lock()
	linkCtx := s.linkCtx
	s.mu.Unlock()

	opCtx, cancel := context.WithCancelCause(ctx)
	stop := context.AfterFunc(linkCtx, func() {
		cancel(context.Cause(linkCtx))
	})
	return opCtx, func() {
		stop()
		cancel(nil)
	}
}

// causeOf prefers the cancellation cause of ctx over err when ctx is done.
func causeOf(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		if cause := context.Cause(ctx); cause != nil {
			return cause
		}
	}
	return err
}

// setStateLocked must be called with s.mu held.
func (s *Session) setStateLocked(st State) State {
	old := s.state
	s.state = st
	return old
}

func (s *Session) notifyState(oldState, newState State, reason string) {
	s.mu.Lock()
	fn := s.onStateChange
	profile := s.binding.Profile
	s.mu.Unlock()

	s.logEvent(log.Event{
		Layer:    log.LayerBearer,
		Category: log.CategoryState,
		Profile:  profile.String(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: oldState.String(),
			NewState: newState.String(),
			Reason:   reason,
		},
	})

	if fn != nil {
		fn(oldState, newState)
	}
}

func (s *Session) logProfile(from, to Profile) {
	if from == to {
		return
	}
	s.logEvent(log.Event{
		Layer:    log.LayerBearer,
		Category: log.CategoryState,
		Profile:  to.String(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityProfile,
			OldState: from.String(),
			NewState: to.String(),
		},
	})
}

func (s *Session) logCache(clearCache bool, reason string) {
	state := "KEEP"
	if clearCache {
		state = "CLEAR"
	}
	s.logEvent(log.Event{
		Layer:    log.LayerBearer,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityCache,
			NewState: state,
			Reason:   reason,
		},
	})
}

func (s *Session) logError(layer log.Layer, err error, kind, op string) {
	s.debugLog("bearer error", "peer", s.peer, "error", err)
	s.logEvent(log.Event{
		Layer:    layer,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Kind:    kind,
			Context: op,
		},
	})
}

// logEvent stamps the session identity on event and hands it to the
// protocol logger.
func (s *Session) logEvent(event log.Event) {
	event.Timestamp = time.Now()
	event.ConnectionID = s.connID
	event.PeerID = string(s.peer)
	s.config.ProtocolLogger.Log(event)
}

func (s *Session) debugLog(msg string, args ...any) {
	if s.config.Logger != nil {
		s.config.Logger.Debug(msg, args...)
	}
}
