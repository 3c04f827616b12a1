package port

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	MinPort = 1
	MaxPort = 65535
)

// 预设名称
const (
	PresetDefault = ""    // top 1000
	PresetFast    = "F"   // top 100
	PresetAll     = "-"   // 1-65535
	PresetAllWord = "all" // 同 "-"
)

// ParseSpec 将端口描述解析为升序、去重的端口列表。
// 支持的写法:
//   - 预设: ""(top 1000) / "F"(top 100) / "-" 或 "all"(全部端口)
//   - 单个: "22"
//   - 列表: "22,80,443"
//   - 范围: "1-1024"
//   - 混合: "22,80,8000-8100"
func ParseSpec(spec string) ([]uint16, error) {
	spec = strings.TrimSpace(spec)
	switch {
	case spec == PresetDefault:
		spec = top1000
	case spec == PresetFast:
		spec = top100
	case spec == PresetAll, strings.EqualFold(spec, PresetAllWord):
		spec = fmt.Sprintf("%d-%d", MinPort, MaxPort)
	}

	seen := make(map[int]struct{})
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, errors.New("empty token in port spec")
		}
		start, end, err := parseToken(tok)
		if err != nil {
			return nil, err
		}
		for p := start; p <= end; p++ {
			seen[p] = struct{}{}
		}
	}

	ports := make([]int, 0, len(seen))
	for p := range seen {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	out := make([]uint16, len(ports))
	for i, p := range ports {
		out[i] = uint16(p)
	}
	return out, nil
}

// parseToken 解析单个端口或 a-b 范围，返回闭区间。
func parseToken(tok string) (int, int, error) {
	lo, hi, isRange := strings.Cut(tok, "-")
	start, err := parseNumber(lo)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return start, start, nil
	}
	end, err := parseNumber(hi)
	if err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, fmt.Errorf("range start greater than end: %q", tok)
	}
	return start, end, nil
}

func parseNumber(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if v < MinPort || v > MaxPort {
		return 0, fmt.Errorf("port %d out of range %d..%d", v, MinPort, MaxPort)
	}
	return v, nil
}
