package dnsupdate

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// Operation is one entry of an update's authority section.
// The implementations in this package are the only ones: ReplaceAny,
// DeleteAny, and DeleteTyped.
type Operation interface {
	// Owner returns the operation's name as given (relative or absolute).
	Owner() string

	// appendTo writes the operation's records into msg for the given zone.
	appendTo(msg *dns.Msg, zone string) error
}

// ReplaceAny replaces every record of Type at Name with a single record.
// It creates the record when absent and overwrites it when present.
type ReplaceAny struct {
	Name  string
	TTL   uint32
	Type  RecordType
	RData string
}

// Owner implements Operation.
func (o ReplaceAny) Owner() string { return o.Name }

func (o ReplaceAny) appendTo(msg *dns.Msg, zone string) error {
	owner, err := absoluteName(o.Name, zone)
	if err != nil {
		return err
	}
	rr, err := newRR(owner, o.TTL, o.Type, o.RData)
	if err != nil {
		return err
	}
	msg.RemoveRRset([]dns.RR{rr})
	msg.Insert([]dns.RR{rr})
	return nil
}

func (o ReplaceAny) String() string {
	return fmt.Sprintf("replace %s %d %s %s", o.Name, o.TTL, o.Type, o.RData)
}

// DeleteAny removes every record of every type at Name.
type DeleteAny struct {
	Name string
}

// Owner implements Operation.
func (o DeleteAny) Owner() string { return o.Name }

func (o DeleteAny) appendTo(msg *dns.Msg, zone string) error {
	owner, err := absoluteName(o.Name, zone)
	if err != nil {
		return err
	}
	msg.RemoveName([]dns.RR{&dns.ANY{Hdr: dns.RR_Header{Name: owner}}})
	return nil
}

func (o DeleteAny) String() string {
	return fmt.Sprintf("delete %s ANY", o.Name)
}

// DeleteTyped removes every record of Type at Name.
type DeleteTyped struct {
	Name string
	Type RecordType
}

// Owner implements Operation.
func (o DeleteTyped) Owner() string { return o.Name }

func (o DeleteTyped) appendTo(msg *dns.Msg, zone string) error {
	if o.Type.IsZero() {
		return fmt.Errorf("delete of %s: record type is required", o.Name)
	}
	owner, err := absoluteName(o.Name, zone)
	if err != nil {
		return err
	}
	msg.RemoveRRset([]dns.RR{&dns.ANY{Hdr: dns.RR_Header{Name: owner, Rrtype: o.Type.Code()}}})
	return nil
}

func (o DeleteTyped) String() string {
	return fmt.Sprintf("delete %s %s", o.Name, o.Type)
}

// absoluteName qualifies name against zone unless it already ends with a dot.
// "@" and the empty string denote the zone apex.
func absoluteName(name, zone string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "@" || name == "" {
		if zone == "" {
			return "", fmt.Errorf("record name is required")
		}
		return dns.Fqdn(zone), nil
	}
	if dns.IsFqdn(name) {
		return name, nil
	}
	if zone == "" || zone == "." {
		return dns.Fqdn(name), nil
	}
	return dns.Fqdn(name + "." + strings.TrimSuffix(zone, ".")), nil
}
