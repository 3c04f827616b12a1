package portscan

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"time"

	"github.com/google/gopacket/layers"
	"go.uber.org/zap"
)

// PortClassifier 对单个 (主机, 端口) 做一次探测并给出结论。
type PortClassifier interface {
	Classify(ctx context.Context, host LiveHost, port uint16, timeout time.Duration) (Classification, error)
}

// SynScanner 负责处理 SYN 探测：每次调用只发一个 SYN 包，只等一个应答。
type SynScanner struct {
	wire *Wire
	log  *zap.Logger
}

func NewSynScanner(w *Wire, log *zap.Logger) *SynScanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &SynScanner{wire: w, log: log.With(zap.String("component", "syn"))}
}

// Classify 发送 SYN 并按应答判定端口状态。
// 没有应答不是错误；只有发包失败 (*TransmissionError) 或 ctx 取消才返回 error。
func (s *SynScanner) Classify(ctx context.Context, host LiveHost, port uint16, timeout time.Duration) (Classification, error) {
	if timeout <= 0 {
		return Classification{}, errors.New("syn probe: timeout must be positive")
	}
	srcPort := s.wire.allocPort()
	frame, err := s.segment(host, port, srcPort)
	if err != nil {
		return Classification{}, fmt.Errorf("build syn segment: %w", err)
	}

	key := probeKey{kind: keySYN, remote: host.Addr, rport: port, lport: srcPort}
	pkt, err := s.wire.exchange(ctx, key, frame, timeout)
	if err != nil {
		return Classification{}, err
	}

	state, reason := Decide(responseOf(pkt))
	s.log.Debug("classified",
		zap.Stringer("host", host.Addr),
		zap.Uint16("port", port),
		zap.Stringer("state", state),
		zap.String("reason", reason))
	return Classification{Host: host.Addr, Port: port, State: state, Reason: reason}, nil
}

func (s *SynScanner) segment(host LiveHost, dstPort, srcPort uint16) ([]byte, error) {
	local := s.wire.Local()
	src, dst := local.IP.As4(), host.Addr.As4()
	dstMAC := host.MAC
	if len(dstMAC) == 0 {
		dstMAC = broadcastMAC
	}

	eth := layers.Ethernet{
		SrcMAC:       local.MAC,
		DstMAC:       dstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := layers.IPv4{
		SrcIP:    net.IP(src[:]),
		DstIP:    net.IP(dst[:]),
		Version:  4,
		TTL:      64,
		Id:       uint16(rand.Uint32()),
		Flags:    layers.IPv4DontFragment,
		Protocol: layers.IPProtocolTCP,
	}
	tcp := layers.TCP{
		SrcPort: layers.TCPPort(srcPort),
		DstPort: layers.TCPPort(dstPort),
		Seq:     rand.Uint32(),
		Window:  1024,
		SYN:     true,
	}
	if err := tcp.SetNetworkLayerForChecksum(&ip); err != nil {
		return nil, err
	}
	return serialize(&eth, &ip, &tcp)
}
