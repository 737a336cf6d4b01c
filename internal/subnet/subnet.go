// Package subnet determines which IPv4 networks the host is directly
// attached to, restricted to private (RFC 1918) ranges.
//
// No package in the teacher (ivoronin-dupedog) touches networking at all —
// this is mined from upspin-upspin's netlocal package, which enumerates host
// interfaces for its own "is this address local" checks via
// net.Interfaces()/net.InterfaceAddrs().
package subnet

import (
	"fmt"
	"net"
)

// Attached returns the deduplicated set of IPv4 networks the host is
// directly attached to, excluding loopback, link-local, multicast,
// unspecified, and any address outside the RFC 1918 private ranges.
func Attached() ([]*net.IPNet, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list network interfaces: %w", err)
	}

	seen := make(map[string]*net.IPNet)
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue // a single misbehaving interface shouldn't fail discovery
		}
		for _, addr := range addrs {
			network := attachedNetwork(addr)
			if network == nil {
				continue
			}
			seen[network.String()] = network
		}
	}

	networks := make([]*net.IPNet, 0, len(seen))
	for _, n := range seen {
		networks = append(networks, n)
	}
	return networks, nil
}

// attachedNetwork returns the IPv4 CIDR network for addr if it is eligible
// (private, not loopback/link-local/multicast/unspecified), else nil.
func attachedNetwork(addr net.Addr) *net.IPNet {
	ipNet, ok := addr.(*net.IPNet)
	if !ok {
		return nil
	}
	ip4 := ipNet.IP.To4()
	if ip4 == nil {
		return nil // IPv6, out of scope
	}
	if !eligible(ip4) {
		return nil
	}

	mask := ipNet.Mask
	if len(mask) != net.IPv4len {
		mask = mask[len(mask)-net.IPv4len:]
	}
	return &net.IPNet{IP: ip4.Mask(mask), Mask: mask}
}

// MaxHosts bounds how many host addresses HostAddrs will ever enumerate for
// a single subnet. A misconfigured interface reporting a huge network (e.g.
// a /8) would otherwise make discovery probe tens of millions of addresses;
// the distilled spec's own design notes call this cost out explicitly.
const MaxHosts = 1 << 16

// HostAddrs enumerates every usable host address in n (excluding the network
// and broadcast addresses), up to MaxHosts. Subnets larger than MaxHosts are
// truncated rather than skipped, so at least the first MaxHosts hosts (in
// address order) are still probed.
func HostAddrs(n *net.IPNet) []net.IP {
	ones, bits := n.Mask.Size()
	if bits != 32 {
		return nil
	}
	hostBits := bits - ones
	if hostBits <= 0 {
		return nil // /32: no usable host range
	}

	total := uint64(1) << uint(hostBits)
	usable := total - 2 // exclude network + broadcast
	if hostBits == 31 { // /31 point-to-point: both addresses are usable
		usable = total
	}
	if usable > MaxHosts {
		usable = MaxHosts
	}

	base := ipToUint32(n.IP)
	addrs := make([]net.IP, 0, usable)
	start := uint64(1)
	if hostBits == 31 {
		start = 0
	}
	for i := start; i < start+usable; i++ {
		addrs = append(addrs, uint32ToIP(base+uint32(i)))
	}
	return addrs
}

func ipToUint32(ip net.IP) uint32 {
	ip4 := ip.To4()
	return uint32(ip4[0])<<24 | uint32(ip4[1])<<16 | uint32(ip4[2])<<8 | uint32(ip4[3])
}

func uint32ToIP(v uint32) net.IP {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func eligible(ip net.IP) bool {
	switch {
	case ip.IsLoopback(), ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsMulticast(), ip.IsUnspecified():
		return false
	default:
		return ip.IsPrivate()
	}
}
