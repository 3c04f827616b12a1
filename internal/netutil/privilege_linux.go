//go:build linux

package netutil

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ErrNeedPrivilege 抓包与发送原始帧需要 root 或 CAP_NET_RAW
var ErrNeedPrivilege = errors.New("raw packet capture requires root or CAP_NET_RAW")

// CanOpenRawSocket 尝试打开一个 AF_PACKET 原始套接字来判断当前进程是否有权限。
func CanOpenRawSocket() (bool, error) {
	if unix.Geteuid() == 0 {
		return true, nil
	}
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, 0)
	if err != nil {
		if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
			return false, nil
		}
		return false, err
	}
	unix.Close(fd)
	return true, nil
}
