package capture

import (
	"errors"
	"fmt"
	"net/netip"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"firestige.xyz/sentinel/internal/core"
	"firestige.xyz/sentinel/internal/log"
)

// findAllDevs lists libpcap devices; tests replace it.
var findAllDevs = pcap.FindAllDevs

// pcapChannel reads from a live libpcap handle.
type pcapChannel struct {
	name   string
	handle *pcap.Handle
	once   sync.Once
}

func openPcap(iface core.InterfaceInfo, opts Options) (Channel, error) {
	device := resolvePcapDevice(iface)

	handle, err := pcap.OpenLive(device, int32(opts.SnapLen), false, opts.PollTimeout)
	if err != nil {
		return nil, fmt.Errorf("pcap open %q: %w", device, err)
	}
	if lt := handle.LinkType(); lt != layers.LinkTypeEthernet {
		handle.Close()
		return nil, fmt.Errorf("link type %s is not Ethernet", lt)
	}

	return &pcapChannel{name: iface.Name, handle: handle}, nil
}

// resolvePcapDevice maps an OS interface name to the libpcap device name.
// They differ on Windows, where devices are \Device\NPF_{GUID}; there the
// match is made on a shared address. Falls back to the OS name.
func resolvePcapDevice(iface core.InterfaceInfo) string {
	devs, err := findAllDevs()
	if err != nil {
		log.GetLogger().WithError(err).Debug("pcap device listing failed, using interface name")
		return iface.Name
	}

	for _, dev := range devs {
		if dev.Name == iface.Name {
			return dev.Name
		}
	}

	for _, dev := range devs {
		for _, da := range dev.Addresses {
			addr, ok := netip.AddrFromSlice(da.IP)
			if !ok {
				continue
			}
			addr = addr.Unmap()
			for _, p := range iface.Addrs {
				if p.Addr().WithZone("") == addr {
					log.GetLogger().WithFields(map[string]interface{}{
						"interface": iface.Name,
						"device":    dev.Name,
					}).Debug("pcap device matched by address")
					return dev.Name
				}
			}
		}
	}

	return iface.Name
}

func (c *pcapChannel) ReadFrame() ([]byte, gopacket.CaptureInfo, error) {
	data, ci, err := c.handle.ZeroCopyReadPacketData()
	if err != nil {
		return nil, ci, classifyPcapError(err)
	}
	return data, ci, nil
}

func classifyPcapError(err error) error {
	switch {
	case errors.Is(err, pcap.NextErrorTimeoutExpired):
		return ErrReadTimeout
	case errors.Is(err, pcap.NextErrorReadError), isTransientErrno(err):
		return transient(err)
	default:
		return err
	}
}

func (c *pcapChannel) Interface() string { return c.name }

func (c *pcapChannel) Close() error {
	c.once.Do(func() {
		c.handle.Close()
	})
	return nil
}
