package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/meshgatt/meshgatt-go/pkg/bearer"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bearer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
peer:
  address: "C4:7F:51:00:00:01"
bearer:
  requested_mtu: 185
  drop_when_not_ready: true
retry:
  attempts: 5
  initial: 100ms
  max: 2s
  attempt_timeout: 10s
  auto_reconnect: false
logging:
  level: debug
  protocol_log: /tmp/bearer.blog
state:
  file: /tmp/bearer-state.json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "C4:7F:51:00:00:01", cfg.Peer.Address)
	assert.Equal(t, "/tmp/bearer.blog", cfg.Logging.ProtocolLog)
	assert.Equal(t, "/tmp/bearer-state.json", cfg.State.File)
	assert.False(t, cfg.AutoReconnect())

	sess := cfg.SessionConfig()
	assert.Equal(t, 185, sess.RequestedMTU)
	assert.True(t, sess.DropWhenNotReady)

	retry := cfg.RetryConfig()
	assert.Equal(t, 5, retry.Attempts)
	assert.Equal(t, 100*time.Millisecond, retry.Initial)
	assert.Equal(t, 2*time.Second, retry.Max)
	assert.Equal(t, 10*time.Second, retry.AttemptTimeout)
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
peer:
  address: "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, bearer.MaxMTU, cfg.SessionConfig().RequestedMTU)
	assert.True(t, cfg.AutoReconnect())

	retry := cfg.RetryConfig()
	assert.Equal(t, 3, retry.Attempts)
	assert.Equal(t, 200*time.Millisecond, retry.Initial)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad duration", "retry:\n  initial: soon\n"},
		{"mtu too small", "bearer:\n  requested_mtu: 20\n"},
		{"mtu too large", "bearer:\n  requested_mtu: 600\n"},
		{"negative attempts", "retry:\n  attempts: -1\n"},
		{"max below initial", "retry:\n  initial: 2s\n  max: 1s\n"},
		{"bad level", "logging:\n  level: verbose\n"},
		{"bad address", "peer:\n  address: kitchen-light\n"},
		{"not yaml", "peer: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDurationMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "initial: 200ms")

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, cfg.Retry.Initial, back.Retry.Initial)
}

func TestParseLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "WARN"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "WARN", cfg.SlogLevel().String())
}
