// Package commands implements the bearer-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/meshgatt/meshgatt-go/pkg/log"
)

// eventType returns the label for the populated payload of an event.
func eventType(event log.Event) string {
	switch {
	case event.Segment != nil:
		return "Segment"
	case event.PDU != nil:
		return "PDU"
	case event.Negotiation != nil:
		return "MTU"
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [conn:id] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	connID := shortenConnID(event.ConnectionID)

	fmt.Fprintf(w, "%s [conn:%s] %-3s %s %s", ts, connID, event.Direction.String(), event.Layer.String(), eventType(event))
	if event.Profile != "" {
		fmt.Fprintf(w, " (%s)", event.Profile)
	}
	fmt.Fprintln(w)
	if event.PeerID != "" {
		fmt.Fprintf(w, "  Peer: %s\n", event.PeerID)
	}

	switch {
	case event.Segment != nil:
		formatSegmentDetails(w, event.Segment)
	case event.PDU != nil:
		formatPDUDetails(w, event.PDU)
	case event.Negotiation != nil:
		formatNegotiationDetails(w, event.Negotiation)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatData(w io.Writer, data []byte, truncated bool) {
	if len(data) == 0 {
		return
	}
	fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(data))
	if truncated {
		fmt.Fprintf(w, " (truncated)")
	}
	fmt.Fprintln(w)
}

func formatSegmentDetails(w io.Writer, seg *log.SegmentEvent) {
	fmt.Fprintf(w, "  Segment: %d/%d  Size: %d bytes\n", seg.Index+1, seg.Count, seg.Size)
	formatData(w, seg.Data, seg.Truncated)
}

func formatPDUDetails(w io.Writer, pdu *log.PDUEvent) {
	fmt.Fprintf(w, "  Size: %d bytes  PacketSize: %d\n", pdu.Size, pdu.PacketSize)
	if pdu.Segments > 0 {
		fmt.Fprintf(w, "  Segments: %d\n", pdu.Segments)
	}
	formatData(w, pdu.Data, pdu.Truncated)
}

func formatNegotiationDetails(w io.Writer, n *log.NegotiationEvent) {
	fmt.Fprintf(w, "  MTU: requested %d, granted %d\n", n.Requested, n.Granted)
	fmt.Fprintf(w, "  PacketSize: %d\n", n.PacketSize)
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Kind != "" {
		fmt.Fprintf(w, "  Kind: %s\n", err.Kind)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// RunView prints the events of the log at path that match opts.
func RunView(path string, opts Options, w io.Writer) error {
	truncated, err := scan(path, opts, func(event log.Event) error {
		formatEvent(w, event)
		return nil
	})
	if err != nil {
		return err
	}
	if truncated {
		fmt.Fprintf(w, "warning: %v\n", log.ErrTruncated)
	}
	return nil
}
