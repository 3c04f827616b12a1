package capture

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
)

const (
	snapLen     = 65536
	readTimeout = 100 * time.Millisecond

	// 只关心 ARP 应答、TCP 回包和 ICMP 差错
	bpfFilter = "arp or tcp or icmp"
)

// Handle 包装 pcap 句柄，读超时返回空数据，关闭后返回 io.EOF。
type Handle struct {
	h      *pcap.Handle
	closed atomic.Bool
}

// Open 打开网卡并设置 BPF 过滤器。需要 root 或 CAP_NET_RAW。
func Open(iface string) (*Handle, error) {
	h, err := pcap.OpenLive(iface, snapLen, false, readTimeout)
	if err != nil {
		return nil, fmt.Errorf("open %s (try sudo): %w", iface, err)
	}
	if err := h.SetBPFFilter(bpfFilter); err != nil {
		h.Close()
		return nil, fmt.Errorf("set bpf filter %q: %w", bpfFilter, err)
	}
	return &Handle{h: h}, nil
}

func (c *Handle) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	if c.closed.Load() {
		return nil, gopacket.CaptureInfo{}, io.EOF
	}
	data, ci, err := c.h.ReadPacketData()
	if errors.Is(err, pcap.NextErrorTimeoutExpired) {
		return nil, ci, nil
	}
	if err != nil && c.closed.Load() {
		return nil, ci, io.EOF
	}
	return data, ci, err
}

func (c *Handle) WritePacketData(data []byte) error {
	if c.closed.Load() {
		return errors.New("capture handle closed")
	}
	return c.h.WritePacketData(data)
}

// Close 关闭句柄，之后的读操作返回 io.EOF。
func (c *Handle) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.h.Close()
	}
}
