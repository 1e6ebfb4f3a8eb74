// Package netif enumerates network interfaces and picks one for capture.
package netif

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/pkg/errors"
	psnet "github.com/shirou/gopsutil/v4/net"

	"firestige.xyz/sentinel/internal/core"
	"firestige.xyz/sentinel/internal/log"
)

const (
	flagUp       = "up"
	flagLoopback = "loopback"
)

// interfaces is the OS query; tests replace it.
var interfaces = psnet.InterfacesWithContext

// List returns a snapshot of every OS-visible interface in OS enumeration
// order. A failing OS query is reported as core.ErrEnumerationFailed, never
// as an empty list.
func List(ctx context.Context) ([]core.InterfaceInfo, error) {
	stats, err := interfaces(ctx)
	if err != nil {
		return nil, errors.WithStack(fmt.Errorf("%w: %w", core.ErrEnumerationFailed, err))
	}

	infos := make([]core.InterfaceInfo, 0, len(stats))
	for _, st := range stats {
		infos = append(infos, toInfo(st))
	}
	log.GetLogger().WithField("count", len(infos)).Debug("interfaces enumerated")
	return infos, nil
}

func toInfo(st psnet.InterfaceStat) core.InterfaceInfo {
	info := core.InterfaceInfo{
		Name:         st.Name,
		Index:        st.Index,
		MTU:          st.MTU,
		HardwareAddr: st.HardwareAddr,
		Addrs:        make([]netip.Prefix, 0, len(st.Addrs)),
	}
	for _, f := range st.Flags {
		switch f {
		case flagUp:
			info.Up = true
		case flagLoopback:
			info.Loopback = true
		}
	}
	for _, a := range st.Addrs {
		prefix, err := parseAddr(a.Addr)
		if err != nil {
			log.GetLogger().WithFields(map[string]interface{}{
				"interface": st.Name,
				"addr":      a.Addr,
			}).WithError(err).Warn("skipping unparseable interface address; interface may be passed over by automatic selection")
			continue
		}
		info.Addrs = append(info.Addrs, prefix)
	}
	return info
}

// parseAddr accepts "10.0.0.5/24" as well as a bare address, which is
// taken as a host prefix.
func parseAddr(s string) (netip.Prefix, error) {
	if prefix, err := netip.ParsePrefix(s); err == nil {
		return prefix, nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.WithZone("")
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}
