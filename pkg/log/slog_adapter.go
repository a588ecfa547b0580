package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger at Debug level.
// Useful during development to see bearer traffic on the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.PeerID != "" {
		attrs = append(attrs, slog.String("peer", event.PeerID))
	}
	if event.Profile != "" {
		attrs = append(attrs, slog.String("profile", event.Profile))
	}

	switch {
	case event.Segment != nil:
		attrs = append(attrs,
			slog.Int("segment", event.Segment.Index),
			slog.Int("segments", event.Segment.Count),
			slog.Int("size", event.Segment.Size),
		)
	case event.PDU != nil:
		attrs = append(attrs,
			slog.Int("pdu_size", event.PDU.Size),
			slog.Int("packet_size", event.PDU.PacketSize),
		)
		if event.PDU.Segments > 0 {
			attrs = append(attrs, slog.Int("segments", event.PDU.Segments))
		}
	case event.Negotiation != nil:
		attrs = append(attrs,
			slog.Int("mtu_requested", event.Negotiation.Requested),
			slog.Int("mtu_granted", event.Negotiation.Granted),
			slog.Int("packet_size", event.Negotiation.PacketSize),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Kind != "" {
			attrs = append(attrs, slog.String("error_kind", event.Error.Kind))
		}
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "bearer", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
