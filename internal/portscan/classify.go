package portscan

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Response SYN 探测收到的应答形态。
type Response interface {
	isResponse()
}

// NoReply 超时内没有应答
type NoReply struct{}

// TCPReply 对端回复的 TCP 段
type TCPReply struct {
	SYN, ACK, RST bool
}

// ICMPReply ICMP 差错报文
type ICMPReply struct {
	Type, Code uint8
}

// OtherReply 无法识别的应答
type OtherReply struct{}

func (NoReply) isResponse()    {}
func (TCPReply) isResponse()   {}
func (ICMPReply) isResponse()  {}
func (OtherReply) isResponse() {}

// 视为被过滤的 ICMP 目的不可达代码
var filteredCodes = map[uint8]bool{
	1:  true, // host unreachable
	2:  true, // protocol unreachable
	3:  true, // port unreachable
	9:  true, // network administratively prohibited
	10: true, // host administratively prohibited
	13: true, // communication administratively prohibited
}

type rule struct {
	match  func(Response) bool
	state  State
	reason string
}

// rules 按顺序匹配，第一条命中即返回。
var rules = []rule{
	{
		match: func(r Response) bool {
			t, ok := r.(TCPReply)
			return ok && t.SYN && t.ACK
		},
		state:  StateOpen,
		reason: ReasonSynAck,
	},
	{
		match: func(r Response) bool {
			t, ok := r.(TCPReply)
			return ok && t.RST
		},
		state:  StateClosed,
		reason: ReasonReset,
	},
	{
		match: func(r Response) bool {
			i, ok := r.(ICMPReply)
			return ok && i.Type == layers.ICMPv4TypeDestinationUnreachable && filteredCodes[i.Code]
		},
		state:  StateFiltered,
		reason: ReasonICMP,
	},
}

// Decide 将应答映射为端口状态与原因。
// 超时与无法识别的应答都归为 Filtered / "no response within timeout"。
func Decide(r Response) (State, string) {
	for _, ru := range rules {
		if ru.match(r) {
			return ru.state, ru.reason
		}
	}
	return StateFiltered, ReasonNoResponse
}

// responseOf 将收到的数据包归类为 Response，pkt 为 nil 表示超时。
func responseOf(pkt gopacket.Packet) Response {
	if pkt == nil {
		return NoReply{}
	}
	if l := pkt.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		return TCPReply{SYN: tcp.SYN, ACK: tcp.ACK, RST: tcp.RST}
	}
	if l := pkt.Layer(layers.LayerTypeICMPv4); l != nil {
		icmp := l.(*layers.ICMPv4)
		return ICMPReply{Type: icmp.TypeCode.Type(), Code: icmp.TypeCode.Code()}
	}
	return OtherReply{}
}
