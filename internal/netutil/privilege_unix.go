//go:build unix && !linux

package netutil

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ErrNeedPrivilege 打开 BPF 设备需要 root
var ErrNeedPrivilege = errors.New("raw packet capture requires root")

// BSD/macOS 上 /dev/bpf* 默认只对 root 开放。
func CanOpenRawSocket() (bool, error) {
	return unix.Geteuid() == 0, nil
}
