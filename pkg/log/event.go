package log

import (
	"time"
)

// MaxEventDataSize is the maximum payload size copied into an event (4 KB).
// Larger payloads are truncated and flagged.
const MaxEventDataSize = 4096

// Event represents a protocol log event captured at either layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the session (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates data flow relative to the local host.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// PeerID is the link address of the mesh node.
	PeerID string `cbor:"6,keyasint,omitempty"`

	// Profile is the GATT profile active when the event was captured.
	Profile string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Segment     *SegmentEvent     `cbor:"10,keyasint,omitempty"` // Link layer
	PDU         *PDUEvent         `cbor:"11,keyasint,omitempty"` // Bearer layer
	Negotiation *NegotiationEvent `cbor:"12,keyasint,omitempty"` // MTU exchange
	StateChange *StateChangeEvent `cbor:"13,keyasint,omitempty"` // Session lifecycle
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the peer.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the peer.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerLink is the GATT characteristic layer (segments, notifications).
	LayerLink Layer = 0
	// LayerBearer is the PDU layer facing the mesh stack.
	LayerBearer Layer = 1
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerLink:
		return "LINK"
	case LayerBearer:
		return "BEARER"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates data movement (segments and PDUs).
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryNegotiation indicates link parameter negotiation.
	CategoryNegotiation Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryNegotiation:
		return "NEGOTIATION"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SegmentEvent captures one characteristic write or notification.
type SegmentEvent struct {
	// Index is the zero-based segment position within its PDU.
	// Always 0 for notifications.
	Index int `cbor:"1,keyasint"`

	// Count is the number of segments the PDU was split into.
	Count int `cbor:"2,keyasint"`

	// Size is the segment size in bytes.
	Size int `cbor:"3,keyasint"`

	// Data is the raw segment (may be truncated).
	Data []byte `cbor:"4,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"5,keyasint,omitempty"`
}

// PDUEvent captures a complete PDU at the bearer layer.
type PDUEvent struct {
	// Size is the PDU size in bytes.
	Size int `cbor:"1,keyasint"`

	// PacketSize is the effective packet size (transport unit minus ATT overhead).
	PacketSize int `cbor:"2,keyasint"`

	// Segments is the number of link writes used (outbound only).
	Segments int `cbor:"3,keyasint,omitempty"`

	// Data is the raw PDU (may be truncated).
	Data []byte `cbor:"4,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"5,keyasint,omitempty"`
}

// NegotiationEvent captures an MTU exchange.
type NegotiationEvent struct {
	// Requested is the transport unit asked for.
	Requested int `cbor:"1,keyasint"`

	// Granted is the transport unit in effect after clamping.
	Granted int `cbor:"2,keyasint"`

	// PacketSize is Granted minus the ATT write overhead.
	PacketSize int `cbor:"3,keyasint"`
}

// StateChangeEvent captures session lifecycle transitions.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntitySession indicates a session state change.
	StateEntitySession StateEntity = 0
	// StateEntityProfile indicates the active GATT profile changed.
	StateEntityProfile StateEntity = 1
	// StateEntityCache indicates a GATT cache decision.
	StateEntityCache StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntitySession:
		return "SESSION"
	case StateEntityProfile:
		return "PROFILE"
	case StateEntityCache:
		return "CACHE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Kind is the error classification (e.g. "SEND_FAILED").
	Kind string `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}

// TruncateData returns data limited to MaxEventDataSize and whether it was cut.
// The returned slice is a copy.
func TruncateData(data []byte) ([]byte, bool) {
	truncated := false
	if len(data) > MaxEventDataSize {
		data = data[:MaxEventDataSize]
		truncated = true
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, truncated
}
