package dnsupdate

import (
	"errors"
	"fmt"
	"net"

	"github.com/miekg/dns"
)

// Sentinel errors for update construction and transport.
var (
	// ErrConnectionFailed is returned when the server could not be reached or
	// the exchange did not complete.
	ErrConnectionFailed = errors.New("connection to dns server failed")

	// ErrUpdateRejected is returned when the server answered with a failure rcode.
	ErrUpdateRejected = errors.New("dns update rejected")

	// ErrAuthenticationFailed is returned when TSIG signing or verification fails.
	ErrAuthenticationFailed = errors.New("tsig authentication failed")

	// ErrZoneMismatch is returned when the server reports a name outside the zone.
	ErrZoneMismatch = errors.New("record name does not match zone")

	// ErrInvalidAddress is returned when an address cannot be parsed.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrUnsupportedAddressFamily is returned when reverse derivation is asked
	// for a non-IPv4 address.
	ErrUnsupportedAddressFamily = errors.New("unsupported address family")

	// ErrEmptyMessage is returned when a message has no operations.
	ErrEmptyMessage = errors.New("update message has no operations")
)

// NoRcode marks a TransportError raised before any response was received.
const NoRcode = -1

// TransportError describes a failed exchange with the authoritative server.
type TransportError struct {
	Server string
	Zone   string
	// Rcode is the response code, or NoRcode when nothing was received.
	Rcode int
	Err   error
}

func (e *TransportError) Error() string {
	if e.Rcode != NoRcode {
		return fmt.Sprintf("dns update for zone %s via %s: %v (rcode %s)",
			e.Zone, e.Server, e.Err, dns.RcodeToString[e.Rcode])
	}
	return fmt.Sprintf("dns update for zone %s via %s: %v", e.Zone, e.Server, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is, or wraps, a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed)
}

// IsNetworkError reports whether err is a network-level error.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// RcodeToError converts a response code to an error. RcodeSuccess yields nil.
func RcodeToError(rcode int) error {
	switch rcode {
	case dns.RcodeSuccess:
		return nil
	case dns.RcodeNotAuth, dns.RcodeBadSig, dns.RcodeBadKey, dns.RcodeBadTime:
		return ErrAuthenticationFailed
	case dns.RcodeNotZone:
		return ErrZoneMismatch
	case dns.RcodeRefused:
		return fmt.Errorf("%w: refused (check server policy or TSIG configuration)", ErrUpdateRejected)
	default:
		return fmt.Errorf("%w: %s", ErrUpdateRejected, dns.RcodeToString[rcode])
	}
}
