package dnsupdate

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/miekg/dns"
)

// ReverseSuffix is the parent of every IPv4 reverse-lookup zone.
const ReverseSuffix = "in-addr.arpa."

// ReverseName is the location of a PTR record: its zone and its label
// relative to that zone.
type ReverseName struct {
	Zone  string
	Label string
}

// FQDN returns the absolute owner name of the PTR record.
func (r ReverseName) FQDN() string {
	return r.Label + "." + r.Zone
}

// DeriveReverse maps an IPv4 address to its reverse zone and leaf label:
// "192.168.1.1" yields zone "1.168.192.in-addr.arpa." and label "1".
//
// Only IPv4 is handled. IPv6 and IPv4-mapped IPv6 input returns
// ErrUnsupportedAddressFamily rather than a guessed ip6.arpa. zone.
func DeriveReverse(address string) (ReverseName, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(address))
	if err != nil {
		return ReverseName{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if !addr.Is4() {
		return ReverseName{}, fmt.Errorf("%w: %s is not IPv4", ErrUnsupportedAddressFamily, addr)
	}

	full, err := dns.ReverseAddr(addr.String())
	if err != nil {
		return ReverseName{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	// full is "<d>.<c>.<b>.<a>.in-addr.arpa."; the first label is the leaf.
	label, zone, ok := strings.Cut(full, ".")
	if !ok || label == "" {
		return ReverseName{}, fmt.Errorf("%w: unexpected reverse name %q", ErrInvalidAddress, full)
	}

	return ReverseName{Zone: zone, Label: label}, nil
}
