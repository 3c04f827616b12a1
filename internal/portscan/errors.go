package portscan

import (
	"errors"
	"fmt"
	"net/netip"
)

// ErrNoLiveHosts 发现阶段没有任何主机应答，扫描阶段不会执行。
var ErrNoLiveHosts = errors.New("no live hosts found")

// TransmissionError 底层链路拒绝发送构造好的数据包（权限不足、网卡不可用等），属于致命错误。
type TransmissionError struct {
	Target netip.Addr
	Err    error
}

func (e *TransmissionError) Error() string {
	return fmt.Sprintf("transmit probe to %s: %v", e.Target, e.Err)
}

func (e *TransmissionError) Unwrap() error { return e.Err }
