package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/pkg/errors"
)

// fileChannel replays a pcap file. End of file surfaces as io.EOF.
type fileChannel struct {
	name   string
	f      *os.File
	reader *pcapgo.Reader
	once   sync.Once
	err    error
}

func openFile(opts Options) (Channel, error) {
	if opts.FilePath == "" {
		return nil, fmt.Errorf("file backend requires a file path")
	}

	f, err := os.Open(opts.FilePath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	reader, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "read pcap header of %s", opts.FilePath)
	}
	if lt := reader.LinkType(); lt != layers.LinkTypeEthernet {
		f.Close()
		return nil, fmt.Errorf("link type %s is not Ethernet", lt)
	}

	return &fileChannel{
		name:   filepath.Base(opts.FilePath),
		f:      f,
		reader: reader,
	}, nil
}

func (c *fileChannel) ReadFrame() ([]byte, gopacket.CaptureInfo, error) {
	return c.reader.ReadPacketData()
}

func (c *fileChannel) Interface() string { return c.name }

func (c *fileChannel) Close() error {
	c.once.Do(func() {
		c.err = c.f.Close()
	})
	return c.err
}
