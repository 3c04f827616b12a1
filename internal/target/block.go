package target

import (
	"errors"
	"fmt"
	"iter"
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// Block 表示一个连续的 IPv4 地址块（基址 + 前缀长度），构造后不可变。
type Block struct {
	prefix   netip.Prefix
	hostOnly bool
}

// ParseBlock 解析 CIDR 写法的网段，主机位会被清零（192.168.1.7/24 -> 192.168.1.0/24）。
// 不带前缀长度的单个地址视为 /32。
// hostOnly 为 true 时迭代结果不包含广播地址。
func ParseBlock(s string, hostOnly bool) (Block, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Block{}, errors.New("empty address block")
	}
	var prefix netip.Prefix
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return Block{}, fmt.Errorf("parse block %q: %w", s, err)
		}
		prefix = p
	} else {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return Block{}, fmt.Errorf("parse block %q: %w", s, err)
		}
		prefix = netip.PrefixFrom(addr, addr.BitLen())
	}
	return NewBlock(prefix, hostOnly)
}

// NewBlock 从已解析的前缀构造 Block，仅支持 IPv4。
func NewBlock(prefix netip.Prefix, hostOnly bool) (Block, error) {
	if !prefix.IsValid() {
		return Block{}, errors.New("invalid prefix")
	}
	addr := prefix.Addr().Unmap()
	if !addr.Is4() {
		return Block{}, fmt.Errorf("block %s: only IPv4 is supported", prefix)
	}
	return Block{
		prefix:   netip.PrefixFrom(addr, prefix.Bits()).Masked(),
		hostOnly: hostOnly,
	}, nil
}

// Prefix 返回规范化后的前缀。
func (b Block) Prefix() netip.Prefix { return b.prefix }

// Base 返回网段基址。
func (b Block) Base() netip.Addr { return b.prefix.Addr() }

func (b Block) String() string { return b.prefix.String() }

// Broadcast 返回网段的广播地址（最后一个地址）。
func (b Block) Broadcast() netip.Addr { return netipx.PrefixLastIP(b.prefix) }

// excludesBroadcast: /31 和 /32 没有广播地址可排除
func (b Block) excludesBroadcast() bool {
	return b.hostOnly && b.prefix.Bits() < 31
}

// Len 返回迭代将产生的地址数量。
func (b Block) Len() int {
	n := 1 << (32 - b.prefix.Bits())
	if b.excludesBroadcast() {
		n--
	}
	return n
}

// Addrs 按数值升序依次产生网段内的地址。
func (b Block) Addrs() iter.Seq[netip.Addr] {
	r := netipx.RangeOfPrefix(b.prefix)
	last := r.To()
	if b.excludesBroadcast() {
		last = last.Prev()
	}
	return func(yield func(netip.Addr) bool) {
		for a := r.From(); a.IsValid() && a.Compare(last) <= 0; a = a.Next() {
			if !yield(a) {
				return
			}
		}
	}
}

// Slice 将所有地址展开为切片。
func (b Block) Slice() []netip.Addr {
	out := make([]netip.Addr, 0, b.Len())
	for a := range b.Addrs() {
		out = append(out, a)
	}
	return out
}
