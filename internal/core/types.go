// Package core defines core types with zero external dependencies.
package core

import (
	"fmt"
	"net/netip"
	"time"
)

// Protocol is the transport label attached to a decoded record.
type Protocol string

const (
	ProtocolTCP   Protocol = "TCP"
	ProtocolUDP   Protocol = "UDP"
	ProtocolOther Protocol = "Other"
)

// IPv4 next-level protocol numbers
const (
	IPProtocolTCP uint8 = 6
	IPProtocolUDP uint8 = 17
)

// ClassifyProtocol maps an IPv4 protocol field to its label.
func ClassifyProtocol(proto uint8) Protocol {
	switch proto {
	case IPProtocolTCP:
		return ProtocolTCP
	case IPProtocolUDP:
		return ProtocolUDP
	default:
		return ProtocolOther
	}
}

// InterfaceInfo is a snapshot of one OS-visible network interface.
// Up is what the OS reports and is not trustworthy on every platform.
type InterfaceInfo struct {
	Name         string         `json:"name" yaml:"name"`
	Addrs        []netip.Prefix `json:"ips" yaml:"ips"`
	Up           bool           `json:"is_up" yaml:"is_up"`
	Loopback     bool           `json:"is_loopback" yaml:"is_loopback"`
	Index        int            `json:"index" yaml:"index"`
	MTU          int            `json:"mtu" yaml:"mtu"`
	HardwareAddr string         `json:"hardware_addr,omitempty" yaml:"hardware_addr,omitempty"`
}

// HasAddrs reports whether at least one address is assigned.
func (i InterfaceInfo) HasAddrs() bool {
	return len(i.Addrs) > 0
}

func (i InterfaceInfo) String() string {
	return fmt.Sprintf("Name: %s | IPs: %v | Up: %t | Loopback: %t", i.Name, i.Addrs, i.Up, i.Loopback)
}

// Record is the result of decoding one IPv4-carrying frame.
// Size is the full link-layer frame length, not the IPv4 payload length.
type Record struct {
	Protocol  Protocol  `json:"protocol" yaml:"protocol"`
	SourceIP  string    `json:"source_ip" yaml:"source_ip"`
	DestIP    string    `json:"dest_ip" yaml:"dest_ip"`
	Size      int       `json:"size_bytes" yaml:"size_bytes"`
	Timestamp time.Time `json:"timestamp,omitzero" yaml:"timestamp,omitempty"`
}

func (r Record) String() string {
	return fmt.Sprintf("[%s] %s -> %s | Size: %d bytes", r.Protocol, r.SourceIP, r.DestIP, r.Size)
}
