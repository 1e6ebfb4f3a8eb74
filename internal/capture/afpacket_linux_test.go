//go:build linux

package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/google/gopacket/afpacket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"firestige.xyz/sentinel/internal/config"
	"firestige.xyz/sentinel/internal/core"
)

func TestClassifyAFPacketError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		timeout   bool
		transient bool
	}{
		{"poll timeout", afpacket.ErrTimeout, true, false},
		{"poll failed", afpacket.ErrPoll, false, true},
		{"eintr", unix.EINTR, false, true},
		{"eagain", fmt.Errorf("recv: %w", unix.EAGAIN), false, true},
		{"enobufs", unix.ENOBUFS, false, true},
		{"ebadf", unix.EBADF, false, false},
		{"eof", io.EOF, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyAFPacketError(tt.err)
			assert.Equal(t, tt.timeout, IsTimeout(got))
			assert.Equal(t, tt.transient, IsTransient(got))
			if !tt.timeout {
				assert.True(t, errors.Is(got, tt.err))
			}
		})
	}
}

func TestOpenAFPacketRequiresEthernet(t *testing.T) {
	for _, hw := range []string{"", "00:00:00:00:00:00:00:e0", "garbage"} {
		_, err := Open(core.InterfaceInfo{Name: "tun0", HardwareAddr: hw}, Options{Backend: config.BackendAFPacket})
		require.Error(t, err, "hardware address %q", hw)
		assert.True(t, errors.Is(err, core.ErrChannelOpen))
		assert.Contains(t, err.Error(), "hardware address")
	}
}

var snapLens = []int{config.MinSnapLen, 100, 200, 1500, 4000, 9000, 65535, config.MaxSnapLen}

func TestComputeFrameSizeAndBlocks(t *testing.T) {
	pageSize := os.Getpagesize()
	for _, snapLen := range append(snapLens, pageSize) {
		frame, block, num := computeFrameSizeAndBlocks(snapLen)
		assert.GreaterOrEqual(t, frame, snapLen+tpacket3HdrLen, "snap %d", snapLen)
		assert.Zero(t, frame%unix.TPACKET_ALIGNMENT, "frame size must be tpacket aligned (snap %d)", snapLen)
		assert.Zero(t, block%pageSize, "block size must be page aligned (snap %d)", snapLen)
		assert.Zero(t, block%frame, "block must hold whole frames (snap %d)", snapLen)
		assert.LessOrEqual(t, block, max(maxBlockSize, frame), "snap %d", snapLen)
		assert.Positive(t, num)
	}
}

func TestNewTPacketAcceptsRingSizes(t *testing.T) {
	for _, snapLen := range snapLens {
		frame, block, num := computeFrameSizeAndBlocks(snapLen)
		tp, err := afpacket.NewTPacket(
			afpacket.OptInterface("lo"),
			afpacket.OptFrameSize(frame),
			afpacket.OptBlockSize(block),
			afpacket.OptNumBlocks(num),
			afpacket.SocketRaw,
			afpacket.TPacketVersion3,
		)
		if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
			t.Skip("AF_PACKET sockets need CAP_NET_RAW")
		}
		require.NoError(t, err, "snap %d frame %d block %d", snapLen, frame, block)
		tp.Close()
	}
}
