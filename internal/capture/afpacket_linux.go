//go:build linux

package capture

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/afpacket"
	"golang.org/x/sys/unix"

	"firestige.xyz/sentinel/internal/core"
	"firestige.xyz/sentinel/internal/log"
)

// afpacketChannel reads from an AF_PACKET TPACKET_V3 ring.
type afpacketChannel struct {
	name    string
	tpacket *afpacket.TPacket
	once    sync.Once
}

func openAFPacket(iface core.InterfaceInfo, opts Options) (Channel, error) {
	// AF_PACKET delivers whatever the link carries; only an Ethernet
	// (6-byte MAC) link gives frames the decoder understands.
	hw, err := net.ParseMAC(iface.HardwareAddr)
	if err != nil || len(hw) != 6 {
		return nil, fmt.Errorf("interface has no Ethernet hardware address (%q)", iface.HardwareAddr)
	}

	frameSize, blockSize, numBlocks := computeFrameSizeAndBlocks(opts.SnapLen)

	log.GetLogger().WithFields(map[string]interface{}{
		"interface":    iface.Name,
		"frame_size":   frameSize,
		"block_size":   blockSize,
		"num_blocks":   numBlocks,
		"poll_timeout": opts.PollTimeout,
	}).Debug("tpacket configuration")

	tpacket, err := afpacket.NewTPacket(
		afpacket.OptInterface(iface.Name),
		afpacket.OptFrameSize(frameSize),
		afpacket.OptBlockSize(blockSize),
		afpacket.OptNumBlocks(numBlocks),
		afpacket.OptPollTimeout(opts.PollTimeout),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create TPacket: %w", err)
	}

	return &afpacketChannel{name: iface.Name, tpacket: tpacket}, nil
}

// tpacket3HdrLen is the per-frame overhead the kernel reserves in front of
// the packet data (TPACKET3_HDRLEN).
var tpacket3HdrLen = tpacketAlign(unix.SizeofTpacket3Hdr) + unix.SizeofSockaddrLinklayer

const (
	framesPerBlock = 128
	maxBlockSize   = 4 << 20
	ringBlocks     = 8
)

func tpacketAlign(n int) int {
	return (n + unix.TPACKET_ALIGNMENT - 1) &^ (unix.TPACKET_ALIGNMENT - 1)
}

// computeFrameSizeAndBlocks sizes the ring from the snap length. The frame
// is the smallest power of two holding the snap length plus the tpacket
// header, so it divides the page size or is a multiple of it; the block is
// a power of two of at least one page and one frame.
func computeFrameSizeAndBlocks(snapLen int) (frameSize, blockSize, numBlocks int) {
	pageSize := os.Getpagesize()

	need := tpacketAlign(snapLen + tpacket3HdrLen)
	frameSize = unix.TPACKET_ALIGNMENT
	for frameSize < need {
		frameSize <<= 1
	}

	blockSize = frameSize * framesPerBlock
	if blockSize > maxBlockSize {
		blockSize = max(maxBlockSize, frameSize)
	}
	blockSize = max(blockSize, pageSize)
	return frameSize, blockSize, ringBlocks
}

func (c *afpacketChannel) ReadFrame() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := c.tpacket.ZeroCopyReadPacketData()
	if err != nil {
		return nil, ci, classifyAFPacketError(err)
	}
	return data, ci, nil
}

func classifyAFPacketError(err error) error {
	switch {
	case errors.Is(err, afpacket.ErrTimeout):
		return ErrReadTimeout
	case errors.Is(err, afpacket.ErrPoll), isTransientErrno(err):
		return transient(err)
	default:
		return err
	}
}

func (c *afpacketChannel) Interface() string { return c.name }

func (c *afpacketChannel) Close() error {
	c.once.Do(func() {
		c.tpacket.Close()
	})
	return nil
}
