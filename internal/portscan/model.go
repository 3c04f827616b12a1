package portscan

import (
	"net"
	"net/netip"
)

// State 端口可达性状态
type State int

const (
	StateFiltered State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "Open"
	case StateClosed:
		return "Closed"
	default:
		return "Filtered"
	}
}

// 判定原因，与状态一一对应写入报告
const (
	ReasonSynAck     = "SYN-ACK received"
	ReasonReset      = "RST received"
	ReasonICMP       = "ICMP unreachable (type 3, code ∈ {1,2,3,9,10,13})"
	ReasonNoResponse = "no response within timeout"
)

// LiveHost 发现阶段判定为存活的主机。MAC 取自 ARP 应答，SYN 探测直接发往该地址。
type LiveHost struct {
	Addr netip.Addr
	MAC  net.HardwareAddr
}

// Classification 单次 (主机, 端口) 探测的结果，创建后不再修改。
type Classification struct {
	Host   netip.Addr
	Port   uint16
	State  State
	Reason string
}

// Report 按主机地址数值升序排列的全部探测结果。
type Report []Classification

// Phase 标识进度事件所属的阶段
type Phase string

const (
	PhaseDiscovery Phase = "discovery"
	PhaseScanning  Phase = "scanning"
)

// Count 统计处于指定状态的记录数。
func (r Report) Count(s State) int {
	n := 0
	for _, c := range r {
		if c.State == s {
			n++
		}
	}
	return n
}
