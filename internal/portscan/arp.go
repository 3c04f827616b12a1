package portscan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/google/gopacket/layers"
	"go.uber.org/zap"
)

// HostProber 对单个地址做一次存活探测。
type HostProber interface {
	Probe(ctx context.Context, addr netip.Addr, timeout time.Duration) (LiveHost, bool, error)
}

// ArpProber 通过广播 ARP 请求判断地址是否存活
// 注意：仅适用于同一局域网
type ArpProber struct {
	wire *Wire
	log  *zap.Logger
}

func NewArpProber(w *Wire, log *zap.Logger) *ArpProber {
	if log == nil {
		log = zap.NewNop()
	}
	return &ArpProber{wire: w, log: log.With(zap.String("component", "arp"))}
}

// Probe 广播 "who has addr"，在 timeout 内收到任一应答即判定存活。
// 单次尝试不重试；发包失败返回 *TransmissionError。
func (p *ArpProber) Probe(ctx context.Context, addr netip.Addr, timeout time.Duration) (LiveHost, bool, error) {
	if timeout <= 0 {
		return LiveHost{}, false, errors.New("arp probe: timeout must be positive")
	}
	if !addr.Is4() {
		return LiveHost{}, false, fmt.Errorf("arp probe: %s is not IPv4", addr)
	}
	frame, err := p.request(addr)
	if err != nil {
		return LiveHost{}, false, fmt.Errorf("build arp request: %w", err)
	}

	pkt, err := p.wire.exchange(ctx, probeKey{kind: keyARP, remote: addr}, frame, timeout)
	if err != nil {
		return LiveHost{}, false, err
	}
	if pkt == nil {
		p.log.Debug("no reply", zap.Stringer("addr", addr))
		return LiveHost{}, false, nil
	}

	host := LiveHost{Addr: addr}
	if l := pkt.Layer(layers.LayerTypeARP); l != nil {
		reply := l.(*layers.ARP)
		host.MAC = append(net.HardwareAddr(nil), reply.SourceHwAddress...)
	}
	p.log.Debug("host is up", zap.Stringer("addr", addr), zap.Stringer("mac", host.MAC))
	return host, true, nil
}

func (p *ArpProber) request(addr netip.Addr) ([]byte, error) {
	local := p.wire.Local()
	srcIP := local.IP.As4()
	dstIP := addr.As4()
	eth := layers.Ethernet{
		SrcMAC:       local.MAC,
		DstMAC:       broadcastMAC,
		EthernetType: layers.EthernetTypeARP,
	}
	arp := layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   []byte(local.MAC),
		SourceProtAddress: srcIP[:],
		DstHwAddress:      []byte{0, 0, 0, 0, 0, 0},
		DstProtAddress:    dstIP[:],
	}
	return serialize(&eth, &arp)
}
