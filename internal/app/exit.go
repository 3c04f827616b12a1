package app

import (
	"context"
	"errors"

	"SweepGo/internal/config"
	"SweepGo/internal/netutil"
	"SweepGo/internal/portscan"
)

// 进程退出码
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfig      = 2
	ExitNoLiveHosts = 3
	ExitPrivilege   = 4
	ExitInterrupted = 130
)

// ExitCode 将运行错误映射为退出码。
func ExitCode(err error) int {
	var ce *config.ConfigError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &ce):
		return ExitConfig
	case errors.Is(err, portscan.ErrNoLiveHosts):
		return ExitNoLiveHosts
	case errors.Is(err, netutil.ErrNeedPrivilege):
		return ExitPrivilege
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}
