package bearer

import "errors"

// Bearer errors.
var (
	// ErrUnsupportedPeer indicates the peer exposes no usable mesh profile.
	// The caller should disconnect.
	ErrUnsupportedPeer = errors.New("unsupported peer")

	// ErrNegotiationFailed indicates discovery, MTU exchange or notification
	// setup failed. The caller may retry the connection.
	ErrNegotiationFailed = errors.New("negotiation failed")

	// ErrSendFailed indicates a segment write failed. The whole PDU must be
	// resent.
	ErrSendFailed = errors.New("send failed")

	// ErrNotReady indicates a send before the session became ready.
	ErrNotReady = errors.New("session not ready")

	// ErrEmptyPDU indicates an attempt to send a zero-length PDU.
	ErrEmptyPDU = errors.New("empty PDU")

	// ErrAlreadyEstablished indicates Establish on a ready session.
	ErrAlreadyEstablished = errors.New("session already established")

	// ErrSessionClosed indicates the session was closed by its owner.
	ErrSessionClosed = errors.New("session closed")
)

// errLinkLost is the cancellation cause for operations interrupted by a
// disconnect or service invalidation.
var errLinkLost = errors.New("link lost")

// errorKind classifies err for protocol log events.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedPeer):
		return "UNSUPPORTED_PEER"
	case errors.Is(err, ErrNegotiationFailed):
		return "NEGOTIATION_FAILED"
	case errors.Is(err, ErrSendFailed):
		return "SEND_FAILED"
	default:
		return ""
	}
}
