package portscan

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Link 可收发原始以太网帧的链路，pcap 句柄即满足该接口。
// ReadPacketData 在读超时时可以返回空数据和 nil 错误；链路关闭后返回 io.EOF。
type Link interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	WritePacketData(data []byte) error
}

// Endpoint 本机在链路上的 IPv4 与 MAC 地址
type Endpoint struct {
	IP  netip.Addr
	MAC net.HardwareAddr
}

const (
	// SYN 探测使用的源端口范围
	ephemeralBase = 40000
	ephemeralSpan = 20000

	readBackoff = 10 * time.Millisecond
)

var broadcastMAC = net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

type keyKind uint8

const (
	keyARP keyKind = iota + 1
	keySYN
)

// probeKey 唯一标识一次在途探测，应答按此键分发，探测之间互不可见。
type probeKey struct {
	kind   keyKind
	remote netip.Addr
	rport  uint16
	lport  uint16
}

// Wire 在一条共享链路上复用多个并发探测：
// 每个探测先登记 probeKey 再发包，接收协程按键把第一个匹配的应答交给它。
type Wire struct {
	link     Link
	local    Endpoint
	log      *zap.Logger
	inflight *semaphore.Weighted

	sendMu sync.Mutex

	mu      sync.Mutex
	waiters map[probeKey]chan gopacket.Packet

	nextPort atomic.Uint32
}

// NewWire 创建复用器，maxInflight 限制同时在途的探测数量。
func NewWire(link Link, local Endpoint, maxInflight int64, log *zap.Logger) *Wire {
	if maxInflight <= 0 {
		maxInflight = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Wire{
		link:     link,
		local:    local,
		log:      log.With(zap.String("component", "wire")),
		inflight: semaphore.NewWeighted(maxInflight),
		waiters:  make(map[probeKey]chan gopacket.Packet),
	}
}

// Local 返回本机端点。
func (w *Wire) Local() Endpoint { return w.local }

// Run 持续读取链路并分发应答，直到 ctx 结束或链路关闭。
func (w *Wire) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		data, _, err := w.link.ReadPacketData()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			w.log.Debug("read packet", zap.Error(err))
			time.Sleep(readBackoff)
			continue
		}
		if len(data) == 0 {
			continue
		}
		w.dispatch(gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default))
	}
}

func (w *Wire) dispatch(pkt gopacket.Packet) {
	key, ok := w.replyKey(pkt)
	if !ok {
		return
	}
	w.mu.Lock()
	ch, ok := w.waiters[key]
	if ok {
		delete(w.waiters, key)
	}
	w.mu.Unlock()
	if ok {
		ch <- pkt
	}
}

// replyKey 计算应答对应的探测键；与本机无关的帧返回 false。
func (w *Wire) replyKey(pkt gopacket.Packet) (probeKey, bool) {
	if l := pkt.Layer(layers.LayerTypeARP); l != nil {
		arp := l.(*layers.ARP)
		if arp.Operation != layers.ARPReply || !w.isLocal(arp.DstProtAddress) {
			return probeKey{}, false
		}
		src, ok := addrFrom(arp.SourceProtAddress)
		return probeKey{kind: keyARP, remote: src}, ok
	}

	l := pkt.Layer(layers.LayerTypeIPv4)
	if l == nil {
		return probeKey{}, false
	}
	ip := l.(*layers.IPv4)
	if !w.isLocal(ip.DstIP) {
		return probeKey{}, false
	}
	if l := pkt.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		src, ok := addrFrom(ip.SrcIP)
		return probeKey{kind: keySYN, remote: src, rport: uint16(tcp.SrcPort), lport: uint16(tcp.DstPort)}, ok
	}
	if l := pkt.Layer(layers.LayerTypeICMPv4); l != nil {
		return w.quotedKey(l.(*layers.ICMPv4).Payload)
	}
	return probeKey{}, false
}

// quotedKey 从 ICMP 差错报文引用的原始 IP 头和 TCP 前 8 字节还原探测键。
func (w *Wire) quotedKey(quote []byte) (probeKey, bool) {
	inner := &layers.IPv4{}
	if err := inner.DecodeFromBytes(quote, gopacket.NilDecodeFeedback); err != nil {
		return probeKey{}, false
	}
	if inner.Protocol != layers.IPProtocolTCP || len(inner.Payload) < 4 || !w.isLocal(inner.SrcIP) {
		return probeKey{}, false
	}
	dst, ok := addrFrom(inner.DstIP)
	return probeKey{
		kind:   keySYN,
		remote: dst,
		rport:  binary.BigEndian.Uint16(inner.Payload[2:4]),
		lport:  binary.BigEndian.Uint16(inner.Payload[0:2]),
	}, ok
}

func (w *Wire) isLocal(b []byte) bool {
	a, ok := addrFrom(b)
	return ok && a == w.local.IP
}

// exchange 发送一帧并等待与 key 匹配的唯一应答。
// 超时返回 (nil, nil)；发送失败返回 *TransmissionError。
// 超时从发包完成后开始计算，等待信号量的时间不计入。
func (w *Wire) exchange(ctx context.Context, key probeKey, frame []byte, timeout time.Duration) (gopacket.Packet, error) {
	if err := w.inflight.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer w.inflight.Release(1)

	ch := make(chan gopacket.Packet, 1)
	w.mu.Lock()
	if _, busy := w.waiters[key]; busy {
		w.mu.Unlock()
		return nil, fmt.Errorf("probe to %s already in flight", key.remote)
	}
	w.waiters[key] = ch
	w.mu.Unlock()
	defer w.forget(key, ch)

	w.sendMu.Lock()
	err := w.link.WritePacketData(frame)
	w.sendMu.Unlock()
	if err != nil {
		return nil, &TransmissionError{Target: key.remote, Err: err}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case pkt := <-ch:
		return pkt, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (w *Wire) forget(key probeKey, ch chan gopacket.Packet) {
	w.mu.Lock()
	if w.waiters[key] == ch {
		delete(w.waiters, key)
	}
	w.mu.Unlock()
}

func (w *Wire) allocPort() uint16 {
	return uint16(ephemeralBase + w.nextPort.Add(1)%ephemeralSpan)
}

func serialize(ls ...gopacket.SerializableLayer) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ls...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addrFrom(b []byte) (netip.Addr, bool) {
	a, ok := netip.AddrFromSlice(b)
	if !ok {
		return netip.Addr{}, false
	}
	return a.Unmap(), true
}
