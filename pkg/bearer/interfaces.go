package bearer

import "context"

// PeerID identifies the mesh node, normally its link-layer address.
type PeerID string

// Link is the GATT connection the session drives. Implementations must be
// safe for use from the session's goroutine while notifications arrive on
// another.
type Link interface {
	// DiscoverServices returns the peer's service catalog.
	DiscoverServices(ctx context.Context) (Catalog, error)

	// RequestMTU asks for mtu and returns the MTU granted by the peer.
	RequestMTU(ctx context.Context, mtu int) (int, error)

	// EnableNotifications subscribes to ch and calls fn for each notification.
	// fn may be called from any goroutine, but not concurrently with itself.
	EnableNotifications(ctx context.Context, ch Characteristic, fn func(data []byte)) error

	// WriteWithoutResponse writes data to ch without waiting for an ATT
	// response. It returns once the link has accepted the write.
	WriteWithoutResponse(ctx context.Context, ch Characteristic, data []byte) error
}

// Handler receives PDUs from a session. Calls are made without session locks
// held; a Handler must not block for long.
type Handler interface {
	// OnPDUSent is called after every segment of pdu was written.
	OnPDUSent(peer PeerID, packetSize int, pdu []byte)

	// OnPDUReceived is called for each notification on Data Out. payload is
	// owned by the handler.
	OnPDUReceived(peer PeerID, packetSize int, payload []byte)
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are ignored.
type HandlerFuncs struct {
	Sent     func(peer PeerID, packetSize int, pdu []byte)
	Received func(peer PeerID, packetSize int, payload []byte)
}

// OnPDUSent calls h.Sent if set.
func (h HandlerFuncs) OnPDUSent(peer PeerID, packetSize int, pdu []byte) {
	if h.Sent != nil {
		h.Sent(peer, packetSize, pdu)
	}
}

// OnPDUReceived calls h.Received if set.
func (h HandlerFuncs) OnPDUReceived(peer PeerID, packetSize int, payload []byte) {
	if h.Received != nil {
		h.Received(peer, packetSize, payload)
	}
}

var _ Handler = HandlerFuncs{}
