package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func newJSONAdapter(buf *bytes.Buffer) *SlogAdapter {
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogAdapter(slog.New(handler))
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	if buf.Len() == 0 {
		t.Fatal("no output produced")
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestSlogAdapterLogsSegmentEvent(t *testing.T) {
	var buf bytes.Buffer
	adapter := newJSONAdapter(&buf)

	adapter.Log(Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionOut,
		Layer:        LayerLink,
		Category:     CategoryMessage,
		PeerID:       "AA:BB:CC:DD:EE:FF",
		Profile:      "PROXY",
		Segment:      &SegmentEvent{Index: 1, Count: 3, Size: 20},
	})

	entry := decodeEntry(t, &buf)
	if entry["msg"] != "bearer" {
		t.Errorf("msg: got %v, want %q", entry["msg"], "bearer")
	}
	if entry["conn_id"] != "conn-123" {
		t.Errorf("conn_id: got %v", entry["conn_id"])
	}
	if entry["direction"] != "OUT" {
		t.Errorf("direction: got %v", entry["direction"])
	}
	if entry["layer"] != "LINK" {
		t.Errorf("layer: got %v", entry["layer"])
	}
	if entry["peer"] != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("peer: got %v", entry["peer"])
	}
	if entry["profile"] != "PROXY" {
		t.Errorf("profile: got %v", entry["profile"])
	}
	if entry["segment"] != float64(1) || entry["segments"] != float64(3) {
		t.Errorf("segment/segments: got %v/%v", entry["segment"], entry["segments"])
	}
}

func TestSlogAdapterLogsNegotiationEvent(t *testing.T) {
	var buf bytes.Buffer
	adapter := newJSONAdapter(&buf)

	adapter.Log(Event{
		Category:    CategoryNegotiation,
		Layer:       LayerBearer,
		Negotiation: &NegotiationEvent{Requested: 517, Granted: 185, PacketSize: 182},
	})

	entry := decodeEntry(t, &buf)
	if entry["mtu_requested"] != float64(517) {
		t.Errorf("mtu_requested: got %v", entry["mtu_requested"])
	}
	if entry["mtu_granted"] != float64(185) {
		t.Errorf("mtu_granted: got %v", entry["mtu_granted"])
	}
	if entry["packet_size"] != float64(182) {
		t.Errorf("packet_size: got %v", entry["packet_size"])
	}
}

func TestSlogAdapterLogsStateChange(t *testing.T) {
	var buf bytes.Buffer
	adapter := newJSONAdapter(&buf)

	adapter.Log(Event{
		Category: CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntityCache,
			NewState: "CLEAR",
			Reason:   "disconnected",
		},
	})

	entry := decodeEntry(t, &buf)
	if entry["entity"] != "CACHE" {
		t.Errorf("entity: got %v", entry["entity"])
	}
	if entry["new_state"] != "CLEAR" {
		t.Errorf("new_state: got %v", entry["new_state"])
	}
	if entry["reason"] != "disconnected" {
		t.Errorf("reason: got %v", entry["reason"])
	}
}

func TestSlogAdapterLogsError(t *testing.T) {
	var buf bytes.Buffer
	adapter := newJSONAdapter(&buf)

	adapter.Log(Event{
		Category: CategoryError,
		Error: &ErrorEventData{
			Layer:   LayerLink,
			Message: "write failed",
			Kind:    "SEND_FAILED",
		},
	})

	entry := decodeEntry(t, &buf)
	if entry["error_layer"] != "LINK" {
		t.Errorf("error_layer: got %v", entry["error_layer"])
	}
	if entry["error_msg"] != "write failed" {
		t.Errorf("error_msg: got %v", entry["error_msg"])
	}
	if entry["error_kind"] != "SEND_FAILED" {
		t.Errorf("error_kind: got %v", entry["error_kind"])
	}
	if _, ok := entry["error_context"]; ok {
		t.Error("error_context should be omitted when empty")
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	adapter := NewSlogAdapter(slog.New(handler))

	adapter.Log(Event{PDU: &PDUEvent{Size: 10}})

	if buf.Len() != 0 {
		t.Errorf("expected no output at Info level, got %q", buf.String())
	}
}
