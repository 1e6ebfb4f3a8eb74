package netif

import (
	"fmt"

	"firestige.xyz/sentinel/internal/core"
)

// Select returns the first interface, in catalog order, that is not
// loopback and has at least one assigned address.
//
// The up flag is not consulted: some platforms report usable adapters as
// down. Catalog order is whatever the OS reports, so with several
// candidates the pick may differ across platforms and reboots.
func Select(ifaces []core.InterfaceInfo) (core.InterfaceInfo, error) {
	for _, iface := range ifaces {
		if iface.Loopback {
			continue
		}
		if !iface.HasAddrs() {
			continue
		}
		return iface, nil
	}
	return core.InterfaceInfo{}, fmt.Errorf("%w: none of %d interfaces is non-loopback with an address",
		core.ErrNoUsableInterface, len(ifaces))
}

// SelectByName returns the interface with the given name. An explicit
// choice bypasses the loopback and address checks.
func SelectByName(ifaces []core.InterfaceInfo, name string) (core.InterfaceInfo, error) {
	for _, iface := range ifaces {
		if iface.Name == name {
			return iface, nil
		}
	}
	return core.InterfaceInfo{}, fmt.Errorf("%w: interface %q not found", core.ErrNoUsableInterface, name)
}
