//go:build windows

package netutil

import "errors"

// ErrNeedPrivilege 抓包需要 Npcap 与管理员权限
var ErrNeedPrivilege = errors.New("raw packet capture requires Npcap and administrator rights")

// Windows 下交由 pcap 打开句柄时判断。
func CanOpenRawSocket() (bool, error) {
	return true, nil
}
