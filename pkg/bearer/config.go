package bearer

import (
	"log/slog"

	"github.com/meshgatt/meshgatt-go/pkg/log"
)

// SessionConfig configures a Session.
type SessionConfig struct {
	// RequestedMTU is the MTU asked for during negotiation (default: MaxMTU).
	// Values outside [MinMTU, MaxMTU] are clamped.
	RequestedMTU int

	// DropWhenNotReady makes Send discard PDUs silently while the session is
	// not ready instead of returning ErrNotReady.
	DropWhenNotReady bool

	// ProtocolLogger receives bearer events (optional).
	ProtocolLogger log.Logger

	// Logger receives debug messages (optional).
	Logger *slog.Logger
}

// DefaultSessionConfig returns the default session configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		RequestedMTU: MaxMTU,
	}
}
