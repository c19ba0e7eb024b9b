// Package kernelset reads ipsets straight from the kernel over netlink.
// firewall-cmd remains the authority for reconciliation; this is a diagnostic view of what
// firewalld actually materialized (iptables backend only, the nftables backend keeps its
// sets inside nftables).
package kernelset

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/vishvananda/netlink"
)

const (
	familyInet  = 2
	familyInet6 = 10
)

type KernelSet struct {
	Name       string
	Type       string
	Family     string
	HashSize   uint32
	MaxElem    uint32
	Timeout    uint32
	References uint32
	NumEntries uint32
	Entries    []string
}

type lister func(name string) (*netlink.IPSetResult, error)

type Inspector struct {
	list lister
}

func New() *Inspector {
	return &Inspector{list: netlink.IpsetList}
}

func (i *Inspector) Inspect(name string) (*KernelSet, error) {
	res, err := i.list(name)
	if err != nil {
		return nil, fmt.Errorf("netlink list ipset:%s failed, err:%w", name, err)
	}
	return convertResult(res), nil
}

func convertResult(res *netlink.IPSetResult) *KernelSet {
	ks := &KernelSet{
		Name:       res.SetName,
		Type:       res.TypeName,
		Family:     familyName(res.Family),
		HashSize:   res.HashSize,
		MaxElem:    res.MaxElements,
		References: res.References,
		NumEntries: res.NumEntries,
	}
	if res.Timeout != nil {
		ks.Timeout = *res.Timeout
	}
	entries := make([]string, 0, len(res.Entries))
	for _, e := range res.Entries {
		entries = append(entries, formatEntry(e))
	}
	sort.Strings(entries)
	ks.Entries = entries
	return ks
}

func familyName(f uint8) string {
	switch f {
	case familyInet:
		return "inet"
	case familyInet6:
		return "inet6"
	}
	return ""
}

// formatEntry renders an entry the way firewall-cmd --get-entries prints it.
func formatEntry(e netlink.IPSetEntry) string {
	parts := make([]string, 0, 3)
	if e.IP != nil {
		parts = append(parts, formatAddr(e.IP, e.CIDR))
	}
	if len(e.MAC) > 0 {
		parts = append(parts, strings.ToUpper(e.MAC.String()))
	}
	if e.Port != nil {
		port := strconv.Itoa(int(*e.Port))
		if e.Protocol != nil {
			port = protoName(*e.Protocol) + ":" + port
		}
		parts = append(parts, port)
	}
	if e.IP2 != nil {
		parts = append(parts, formatAddr(e.IP2, e.CIDR2))
	}
	if len(e.IFace) > 0 {
		parts = append(parts, e.IFace)
	}
	if e.Mark != nil {
		parts = append(parts, fmt.Sprintf("0x%08x", *e.Mark))
	}
	return strings.Join(parts, ",")
}

func formatAddr(ip net.IP, cidr uint8) string {
	full := uint8(32)
	if ip.To4() == nil {
		full = 128
	}
	if cidr == 0 || cidr == full {
		return ip.String()
	}
	return ip.String() + "/" + strconv.Itoa(int(cidr))
}

func protoName(p uint8) string {
	switch p {
	case 6:
		return "tcp"
	case 17:
		return "udp"
	case 132:
		return "sctp"
	}
	return strconv.Itoa(int(p))
}
