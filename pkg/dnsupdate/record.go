package dnsupdate

import (
	"fmt"
	"net"
	"net/netip"
	"strings"

	"github.com/miekg/dns"
)

// RecordType is a record type this package knows how to write.
// The set is closed: values outside the exported variables cannot be
// constructed, so every switch over RecordType is exhaustive.
type RecordType struct {
	code uint16
}

// Supported record types.
var (
	TypeA     = RecordType{code: dns.TypeA}
	TypeAAAA  = RecordType{code: dns.TypeAAAA}
	TypeCNAME = RecordType{code: dns.TypeCNAME}
	TypePTR   = RecordType{code: dns.TypePTR}
	TypeTXT   = RecordType{code: dns.TypeTXT}
)

// SupportedTypes returns every RecordType in a stable order.
func SupportedTypes() []RecordType {
	return []RecordType{TypeA, TypeAAAA, TypeCNAME, TypePTR, TypeTXT}
}

// ParseRecordType converts a mnemonic such as "A" or "ptr" to a RecordType.
func ParseRecordType(s string) (RecordType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, t := range SupportedTypes() {
		if t.String() == s {
			return t, nil
		}
	}
	return RecordType{}, fmt.Errorf("unsupported record type: %q", s)
}

// Code returns the wire type code.
func (t RecordType) Code() uint16 {
	return t.code
}

// IsZero reports whether t is the zero value (no type).
func (t RecordType) IsZero() bool {
	return t.code == 0
}

// String returns the mnemonic, e.g. "A".
func (t RecordType) String() string {
	if name, ok := dns.TypeToString[t.code]; ok && t.code != 0 {
		return name
	}
	return fmt.Sprintf("TYPE%d", t.code)
}

// MarshalText implements encoding.TextMarshaler.
func (t RecordType) MarshalText() ([]byte, error) {
	if t.IsZero() {
		return []byte{}, nil
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *RecordType) UnmarshalText(b []byte) error {
	parsed, err := ParseRecordType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// newRR builds the resource record carrying rdata for an absolute owner name.
func newRR(owner string, ttl uint32, t RecordType, rdata string) (dns.RR, error) {
	header := dns.RR_Header{
		Name:   owner,
		Rrtype: t.code,
		Class:  dns.ClassINET,
		Ttl:    ttl,
	}

	switch t {
	case TypeA:
		addr, err := netip.ParseAddr(strings.TrimSpace(rdata))
		if err != nil || !addr.Is4() {
			return nil, fmt.Errorf("%w: %q is not an IPv4 address", ErrInvalidAddress, rdata)
		}
		return &dns.A{Hdr: header, A: net.IP(addr.AsSlice())}, nil

	case TypeAAAA:
		addr, err := netip.ParseAddr(strings.TrimSpace(rdata))
		if err != nil || !addr.Is6() || addr.Is4In6() {
			return nil, fmt.Errorf("%w: %q is not an IPv6 address", ErrInvalidAddress, rdata)
		}
		return &dns.AAAA{Hdr: header, AAAA: net.IP(addr.AsSlice())}, nil

	case TypeCNAME:
		if rdata == "" {
			return nil, fmt.Errorf("CNAME target is required")
		}
		return &dns.CNAME{Hdr: header, Target: dns.Fqdn(rdata)}, nil

	case TypePTR:
		if rdata == "" {
			return nil, fmt.Errorf("PTR target is required")
		}
		return &dns.PTR{Hdr: header, Ptr: dns.Fqdn(rdata)}, nil

	case TypeTXT:
		return &dns.TXT{Hdr: header, Txt: []string{rdata}}, nil

	default:
		return nil, fmt.Errorf("unsupported record type: %s", t)
	}
}
