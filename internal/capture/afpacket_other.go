//go:build !linux

package capture

import (
	"fmt"

	"firestige.xyz/sentinel/internal/core"
)

func openAFPacket(iface core.InterfaceInfo, _ Options) (Channel, error) {
	return nil, fmt.Errorf("%w: afpacket requires linux", core.ErrBackendUnsupported)
}
