package dnsupdate

import (
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// UpdateMessage is one update request: a zone, the ordered operations to
// apply in it, and the credential used to sign it on the wire.
type UpdateMessage struct {
	Zone       string
	Operations []Operation
	Credential *Credential
}

// Build assembles an UpdateMessage. It performs no I/O and no signing.
func Build(zone string, ops []Operation, cred *Credential) UpdateMessage {
	copied := make([]Operation, len(ops))
	copy(copied, ops)
	return UpdateMessage{
		Zone:       zone,
		Operations: copied,
		Credential: cred,
	}
}

// NewReplace builds the message for a create-or-modify intent: a single
// ReplaceAny of name in zone.
func NewReplace(zone, name string, ttl uint32, t RecordType, rdata string, cred *Credential) UpdateMessage {
	return Build(zone, []Operation{ReplaceAny{Name: name, TTL: ttl, Type: t, RData: rdata}}, cred)
}

// NewDeleteName builds the message for a delete-by-name intent: a single
// DeleteAny of name in zone.
func NewDeleteName(zone, name string, cred *Credential) UpdateMessage {
	return Build(zone, []Operation{DeleteAny{Name: name}}, cred)
}

// Validate checks the message without encoding it.
func (m UpdateMessage) Validate() error {
	if strings.TrimSpace(m.Zone) == "" {
		return fmt.Errorf("zone is required")
	}
	if len(m.Operations) == 0 {
		return ErrEmptyMessage
	}
	_, err := m.unsigned()
	return err
}

// Msg encodes the message as an unsigned dns.Msg with opcode UPDATE, the zone
// in the question (zone) section, and the operations in the authority section.
func (m UpdateMessage) Msg() (*dns.Msg, error) {
	return m.unsigned()
}

// signed encodes the message and attaches the TSIG record, if any.
func (m UpdateMessage) signed(now time.Time) (*dns.Msg, error) {
	msg, err := m.unsigned()
	if err != nil {
		return nil, err
	}
	m.Credential.applyToMessage(msg, now.Unix())
	return msg, nil
}

func (m UpdateMessage) unsigned() (*dns.Msg, error) {
	zone := strings.TrimSpace(m.Zone)
	if zone == "" {
		return nil, fmt.Errorf("zone is required")
	}
	if len(m.Operations) == 0 {
		return nil, ErrEmptyMessage
	}

	msg := new(dns.Msg)
	msg.SetUpdate(dns.Fqdn(zone))

	for i, op := range m.Operations {
		if op == nil {
			return nil, fmt.Errorf("operation %d is nil", i)
		}
		if err := op.appendTo(msg, zone); err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, op.Owner(), err)
		}
	}

	return msg, nil
}

// String renders the message for logs. The credential secret is never included.
func (m UpdateMessage) String() string {
	parts := make([]string, 0, len(m.Operations))
	for _, op := range m.Operations {
		parts = append(parts, fmt.Sprint(op))
	}
	return fmt.Sprintf("zone=%s key=%s ops=[%s]", m.Zone, m.Credential, strings.Join(parts, "; "))
}
