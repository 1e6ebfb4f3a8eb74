// Package decoder turns raw link-layer frames into decoded records.
package decoder

import (
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"firestige.xyz/sentinel/internal/core"
)

// Offsets into the fixed part of an IPv4 header.
const (
	ipv4HeaderLen   = 20
	ipv4ProtocolOff = 9
	ipv4SrcOff      = 12
	ipv4DstOff      = 16
)

// Decoder parses Ethernet with a reusable layer parser and reads the fixed
// IPv4 header fields. A Decoder holds parser state and must not be shared
// between goroutines.
type Decoder struct {
	parser *gopacket.DecodingLayerParser

	eth layers.Ethernet

	decoded []gopacket.LayerType
}

// New creates a Decoder.
func New() *Decoder {
	d := &Decoder{
		decoded: make([]gopacket.LayerType, 0, 1),
	}
	d.parser = gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet, &d.eth)
	d.parser.IgnoreUnsupported = true
	return d
}

// Decode returns the record for an Ethernet/IPv4 frame. ok is false for
// frames that are too short or not IPv4. Only the fixed 20-byte IPv4
// header is read; version, IHL, total length and options are not checked.
func (d *Decoder) Decode(frame []byte) (core.Record, bool) {
	return d.DecodeWithInfo(frame, gopacket.CaptureInfo{})
}

// DecodeWithInfo is Decode plus the capture timestamp from ci.
func (d *Decoder) DecodeWithInfo(frame []byte, ci gopacket.CaptureInfo) (core.Record, bool) {
	d.decoded = d.decoded[:0]

	// DecodeLayers turns a panic inside a layer decoder into an error.
	if err := d.parser.DecodeLayers(frame, &d.decoded); err != nil {
		return core.Record{}, false
	}
	if len(d.decoded) == 0 || d.eth.EthernetType != layers.EthernetTypeIPv4 {
		return core.Record{}, false
	}
	ip := d.eth.Payload
	if len(ip) < ipv4HeaderLen {
		return core.Record{}, false
	}

	return core.Record{
		Protocol:  core.ClassifyProtocol(ip[ipv4ProtocolOff]),
		SourceIP:  netip.AddrFrom4([4]byte(ip[ipv4SrcOff : ipv4SrcOff+4])).String(),
		DestIP:    netip.AddrFrom4([4]byte(ip[ipv4DstOff : ipv4DstOff+4])).String(),
		Size:      len(frame),
		Timestamp: ci.Timestamp,
	}, true
}

// Decode decodes a single frame with a fresh Decoder.
func Decode(frame []byte) (core.Record, bool) {
	return New().Decode(frame)
}
