package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/sentinel/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.File.Enabled)
	assert.Equal(t, ResolveAutoBackend(), cfg.Capture.Backend)
	assert.Empty(t, cfg.Capture.Interface)
	assert.Equal(t, 65535, cfg.Capture.SnapLen)
	assert.Equal(t, 100*time.Millisecond, cfg.Capture.PollTimeout)
	assert.Equal(t, time.Duration(0), cfg.Capture.Timeout)
	assert.Equal(t, 0, cfg.Capture.ReadRetry.MaxConsecutive)
	assert.Equal(t, 5*time.Millisecond, cfg.Capture.ReadRetry.Backoff)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
sentinel:
  log:
    level: debug
    file:
      enabled: true
      path: /tmp/sentinel-test.log
  capture:
    backend: file
    file_path: /tmp/trace.pcap
    interface: eth1
    snap_len: 1500
    poll_timeout: 250ms
    timeout: 30s
    read_retry:
      max_consecutive: 50
      backoff: 1ms
  metrics:
    enabled: true
    listen: 127.0.0.1:9100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.File.Enabled)
	assert.Equal(t, "/tmp/sentinel-test.log", cfg.Log.File.Path)
	assert.Equal(t, 100, cfg.Log.File.MaxSizeMB, "unset keys keep defaults")
	assert.Equal(t, BackendFile, cfg.Capture.Backend)
	assert.Equal(t, "/tmp/trace.pcap", cfg.Capture.FilePath)
	assert.Equal(t, "eth1", cfg.Capture.Interface)
	assert.Equal(t, 1500, cfg.Capture.SnapLen)
	assert.Equal(t, 250*time.Millisecond, cfg.Capture.PollTimeout)
	assert.Equal(t, 30*time.Second, cfg.Capture.Timeout)
	assert.Equal(t, 50, cfg.Capture.ReadRetry.MaxConsecutive)
	assert.Equal(t, time.Millisecond, cfg.Capture.ReadRetry.Backoff)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Listen)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SENTINEL_CAPTURE_BACKEND", "pcap")
	t.Setenv("SENTINEL_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendPcap, cfg.Capture.Backend)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown log level",
			content: `
sentinel:
  log:
    level: loud
`,
		},
		{
			name: "unknown backend",
			content: `
sentinel:
  capture:
    backend: xdp
`,
		},
		{
			name: "file backend without path",
			content: `
sentinel:
  capture:
    backend: file
`,
		},
		{
			name: "snap_len too small",
			content: `
sentinel:
  capture:
    snap_len: 10
`,
		},
		{
			name: "negative retry cap",
			content: `
sentinel:
  capture:
    read_retry:
      max_consecutive: -1
`,
		},
		{
			name: "zero poll timeout",
			content: `
sentinel:
  capture:
    poll_timeout: 0s
`,
		},
		{
			name: "metrics enabled without listen",
			content: `
sentinel:
  metrics:
    enabled: true
    listen: ""
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrConfigInvalid), "expected ErrConfigInvalid, got %v", err)
		})
	}
}

func TestResolveAutoBackend(t *testing.T) {
	backend := ResolveAutoBackend()
	assert.Contains(t, []string{BackendAFPacket, BackendPcap}, backend)
}

func TestAutoBackendWithFilePath(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
sentinel:
  capture:
    backend: auto
    file_path: /tmp/trace.pcap
`))
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Capture.Backend)
	assert.Equal(t, "/tmp/trace.pcap", cfg.Capture.FilePath)
}
