package netutil

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// Interface 发包所用网卡及其本机地址
type Interface struct {
	Name string
	IP   netip.Addr
	MAC  net.HardwareAddr
	Net  netip.Prefix
}

// ErrNoInterface 找不到与目标网段直连的网卡
var ErrNoInterface = errors.New("no up interface is attached to the target block")

// ByName 按名称取网卡及其第一个 IPv4 地址。
func ByName(name string) (Interface, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return Interface{}, fmt.Errorf("interface %s: %w", name, err)
	}
	prefixes, err := ipv4Prefixes(iface)
	if err != nil {
		return Interface{}, err
	}
	if len(prefixes) == 0 {
		return Interface{}, fmt.Errorf("interface %s has no IPv4 address", name)
	}
	return fromNet(iface, prefixes[0])
}

// ForTarget 选择第一个已启用、非环回且 IPv4 网段包含 target 的网卡。
func ForTarget(target netip.Addr) (Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return Interface{}, fmt.Errorf("list interfaces: %w", err)
	}
	for i := range ifaces {
		iface := &ifaces[i]
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		prefixes, err := ipv4Prefixes(iface)
		if err != nil {
			continue
		}
		if p, ok := Containing(prefixes, target); ok {
			return fromNet(iface, p)
		}
	}
	return Interface{}, fmt.Errorf("%w: %s", ErrNoInterface, target)
}

// Containing 返回第一个包含 addr 的网段。
func Containing(prefixes []netip.Prefix, addr netip.Addr) (netip.Prefix, bool) {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return p, true
		}
	}
	return netip.Prefix{}, false
}

func ipv4Prefixes(iface *net.Interface) ([]netip.Prefix, error) {
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("addresses of %s: %w", iface.Name, err)
	}
	var out []netip.Prefix
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		ip4 := ipnet.IP.To4()
		if ip4 == nil {
			continue
		}
		ones, _ := ipnet.Mask.Size()
		addr, _ := netip.AddrFromSlice(ip4)
		out = append(out, netip.PrefixFrom(addr, ones))
	}
	return out, nil
}

func fromNet(iface *net.Interface, p netip.Prefix) (Interface, error) {
	if len(iface.HardwareAddr) == 0 {
		return Interface{}, fmt.Errorf("interface %s has no hardware address", iface.Name)
	}
	return Interface{
		Name: iface.Name,
		IP:   p.Addr(),
		MAC:  iface.HardwareAddr,
		Net:  p.Masked(),
	}, nil
}
