package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/meshgatt/meshgatt-go/pkg/log"
)

const testConnID = "abc12345-6789-0123-4567-890abcdef012"

func format(event log.Event) string {
	var buf bytes.Buffer
	formatEvent(&buf, event)
	return buf.String()
}

func assertContains(t *testing.T, output string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestFormatSegmentEvent(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	output := format(log.Event{
		Timestamp:    ts,
		ConnectionID: testConnID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerLink,
		Category:     log.CategoryMessage,
		PeerID:       "AA:BB:CC:DD:EE:FF",
		Profile:      "PROXY",
		Segment: &log.SegmentEvent{
			Index: 1,
			Count: 3,
			Size:  4,
			Data:  []byte{0xa1, 0x01, 0x02, 0x03},
		},
	})

	assertContains(t, output,
		"2026-01-28T10:15:32.123456Z",
		"[conn:abc12345]",
		"OUT LINK Segment (PROXY)",
		"Peer: AA:BB:CC:DD:EE:FF",
		"Segment: 2/3  Size: 4 bytes",
		"Data: a1010203",
	)
	if strings.Contains(output, "truncated") {
		t.Errorf("did not expect truncated marker:\n%s", output)
	}
}

func TestFormatPDUEvent(t *testing.T) {
	output := format(log.Event{
		ConnectionID: testConnID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerBearer,
		PDU: &log.PDUEvent{
			Size:       4096,
			PacketSize: 20,
			Data:       []byte{0xff},
			Truncated:  true,
		},
	})

	assertContains(t, output, "IN  BEARER PDU", "Size: 4096 bytes  PacketSize: 20", "Data: ff (truncated)")
	if strings.Contains(output, "Segments:") {
		t.Errorf("inbound PDU should not list segments:\n%s", output)
	}
}

func TestFormatNegotiationEvent(t *testing.T) {
	output := format(log.Event{
		ConnectionID: testConnID,
		Layer:        log.LayerBearer,
		Category:     log.CategoryNegotiation,
		Negotiation:  &log.NegotiationEvent{Requested: 517, Granted: 104, PacketSize: 101},
	})

	assertContains(t, output, "BEARER MTU", "MTU: requested 517, granted 104", "PacketSize: 101")
}

func TestFormatStateChangeEvent(t *testing.T) {
	output := format(log.Event{
		ConnectionID: testConnID,
		Layer:        log.LayerBearer,
		Category:     log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: "READY",
			NewState: "IDLE",
			Reason:   "disconnected",
		},
	})

	assertContains(t, output, "State", "Entity: SESSION", "READY -> IDLE", "Reason: disconnected")
}

func TestFormatStateChangeWithoutOldState(t *testing.T) {
	output := format(log.Event{
		StateChange: &log.StateChangeEvent{Entity: log.StateEntityCache, NewState: "CLEAR_PENDING"},
	})

	assertContains(t, output, "Entity: CACHE", "  -> CLEAR_PENDING")
}

func TestFormatErrorEvent(t *testing.T) {
	output := format(log.Event{
		ConnectionID: "short",
		Layer:        log.LayerLink,
		Category:     log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerLink,
			Message: "write failed",
			Kind:    "SEND_FAILED",
			Context: "segment 2/3",
		},
	})

	assertContains(t, output, "[conn:short]", "Error", "Message: write failed", "Kind: SEND_FAILED", "Context: segment 2/3")
}

func TestRunViewAppliesFilter(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, []log.Event{
		{Timestamp: ts, ConnectionID: testConnID, Layer: log.LayerLink, Segment: &log.SegmentEvent{Count: 1, Size: 5}},
		{Timestamp: ts, ConnectionID: testConnID, Layer: log.LayerBearer, PDU: &log.PDUEvent{Size: 5, PacketSize: 20}},
	})

	var buf bytes.Buffer
	if err := RunView(path, Options{Layer: "bearer"}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "Segment") {
		t.Errorf("link events should be filtered out:\n%s", output)
	}
	assertContains(t, output, "BEARER PDU")
}
