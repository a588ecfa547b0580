package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshgatt/meshgatt-go/pkg/persistence"
)

// syncBuffer is a bytes.Buffer safe for the callback goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// take returns and clears the buffered output.
func (b *syncBuffer) take() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.buf.String()
	b.buf.Reset()
	return s
}

func newTestShell(t *testing.T, radio *fakeRadio) (*Shell, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	s := &Shell{ctrl: newTestController(t, radio, false), out: out}
	s.attach()
	return s, out
}

func TestShellSession(t *testing.T) {
	s, out := newTestShell(t, newFakeRadio(proxyProfile()))
	ctx := context.Background()

	require.NoError(t, s.execute(ctx, "status"))
	assert.Contains(t, out.take(), "Connection:     DISCONNECTED")

	require.NoError(t, s.execute(ctx, "connect "+nodeAddr))
	output := out.take()
	assert.Contains(t, output, "Connection:     CONNECTED")
	assert.Contains(t, output, "Profile:        PROXY")
	assert.Contains(t, output, "MTU:            104 (packet size 101)")
	assert.Contains(t, output, "Provisioned:    true")

	require.NoError(t, s.execute(ctx, "send 0x0300:0102"))
	assert.Contains(t, out.take(), "-> "+nodeAddr+" [4 bytes]")

	require.NoError(t, s.execute(ctx, "reset-cache"))
	assert.Contains(t, out.take(), "discarded at the next disconnect")

	require.NoError(t, s.execute(ctx, "status"))
	assert.Contains(t, out.take(), "clear on disconnect")

	require.NoError(t, s.execute(ctx, "rediscover"))
	assert.Contains(t, out.take(), "Ready:          true")

	require.NoError(t, s.execute(ctx, "disconnect"))
	output = out.take()
	assert.Contains(t, output, "cache cleared: true")
	assert.Contains(t, output, "Disconnected")
}

func TestShellReceivePrintsHex(t *testing.T) {
	radio := newFakeRadio(provisioningProfile())
	s, out := newTestShell(t, radio)

	require.NoError(t, s.execute(context.Background(), "c "+nodeAddr))
	out.take()

	radio.lastNode().notify([]byte{0xde, 0xad})
	assert.Eventually(t, func() bool {
		return strings.Contains(out.take(), "<- "+nodeAddr+" [2 bytes] dead")
	}, time.Second, 5*time.Millisecond)
}

func TestShellErrors(t *testing.T) {
	s, out := newTestShell(t, newFakeRadio(proxyProfile()))
	ctx := context.Background()

	tests := []struct {
		line string
		want string
	}{
		{"connect", "Usage: connect <address>"},
		{"send", "Usage: send <hex>"},
		{"send zz", "Invalid PDU"},
		{"send 01", "Send failed: not connected"},
		{"reset-cache", "Error: not connected"},
		{"rediscover", "Rediscover failed: not connected"},
		{"disconnect", "Error: not connected"},
		{"peers", "No known peers"},
		{"forget", "Usage: forget <address>"},
		{"frobnicate", "Unknown command: frobnicate"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			require.NoError(t, s.execute(ctx, tt.line))
			assert.Contains(t, out.take(), tt.want)
		})
	}
}

func TestShellPeers(t *testing.T) {
	s, out := newTestShell(t, newFakeRadio(proxyProfile()))
	require.NoError(t, s.ctrl.UseStateStore(persistence.NewStateStore(filepath.Join(t.TempDir(), "state.json"))))
	ctx := context.Background()

	require.NoError(t, s.execute(ctx, "connect "+nodeAddr))
	out.take()

	require.NoError(t, s.execute(ctx, "peers"))
	output := out.take()
	assert.Contains(t, output, "Known Peers")
	assert.Contains(t, output, nodeAddr)

	require.NoError(t, s.execute(ctx, "forget "+nodeAddr))
	assert.Contains(t, out.take(), "Forgot "+nodeAddr)

	require.NoError(t, s.execute(ctx, "forget "+nodeAddr))
	assert.Contains(t, out.take(), "Unknown peer: "+nodeAddr)
}

func TestShellUnsupportedPeer(t *testing.T) {
	s, out := newTestShell(t, newFakeRadio(meshProfile(0x180F, 0x2A19, 0x2A1A)))

	require.NoError(t, s.execute(context.Background(), "connect "+nodeAddr))
	assert.Contains(t, out.take(), "Peer is not a mesh node")
}

func TestShellQuitAndBlank(t *testing.T) {
	s, out := newTestShell(t, newFakeRadio(proxyProfile()))
	ctx := context.Background()

	assert.NoError(t, s.execute(ctx, "   "))
	assert.Empty(t, out.take())

	assert.ErrorIs(t, s.execute(ctx, "quit"), errQuit)
	assert.ErrorIs(t, s.execute(ctx, "EXIT"), errQuit)

	require.NoError(t, s.execute(ctx, "help"))
	assert.Contains(t, out.take(), "Mesh GATT Bearer Commands")
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		input   string
		want    []byte
		wantErr bool
	}{
		{"0a0b", []byte{0x0a, 0x0b}, false},
		{"0x0A0B", []byte{0x0a, 0x0b}, false},
		{"0a:0b:0c", []byte{0x0a, 0x0b, 0x0c}, false},
		{"abc", nil, true},
		{"xyz0", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseHex(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
