package dnsupdate

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// DefaultAlgorithm is the TSIG algorithm used when none is configured.
const DefaultAlgorithm = dns.HmacSHA1

// DefaultFudge is the permitted clock skew, in seconds, for signed messages.
const DefaultFudge = 300

// Credential is a TSIG key used to sign update messages.
// It is immutable once constructed and safe for concurrent use.
type Credential struct {
	keyName   string
	secret    string
	algorithm string
}

// NewCredential creates a Credential from a key name, a base64-encoded secret,
// and an algorithm name such as "hmac-sha1" or "hmac-sha256".
// An empty algorithm selects DefaultAlgorithm.
func NewCredential(keyName, secret, algorithm string) (*Credential, error) {
	keyName = strings.TrimSpace(keyName)
	if keyName == "" {
		return nil, fmt.Errorf("tsig key name is required")
	}

	if secret == "" {
		return nil, fmt.Errorf("tsig secret is required")
	}
	if _, err := base64.StdEncoding.DecodeString(secret); err != nil {
		return nil, fmt.Errorf("tsig secret is not valid base64: %w", err)
	}

	alg := NormalizeAlgorithm(algorithm)
	if !IsValidAlgorithm(alg) {
		return nil, fmt.Errorf("unsupported tsig algorithm: %s", algorithm)
	}

	return &Credential{
		keyName:   dns.Fqdn(strings.ToLower(keyName)),
		secret:    secret,
		algorithm: alg,
	}, nil
}

// KeyName returns the fully qualified key name.
func (c *Credential) KeyName() string {
	if c == nil {
		return ""
	}
	return c.keyName
}

// Algorithm returns the algorithm in miekg/dns form (e.g. "hmac-sha1.").
func (c *Credential) Algorithm() string {
	if c == nil {
		return ""
	}
	return c.algorithm
}

// String omits the secret.
func (c *Credential) String() string {
	if c == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s (%s)", c.keyName, AlgorithmName(c.algorithm))
}

// applyToClient installs the shared secret on a dns.Client so that it can
// sign the request and verify the response.
func (c *Credential) applyToClient(client *dns.Client) {
	if c == nil {
		return
	}
	client.TsigSecret = map[string]string{c.keyName: c.secret}
}

// applyToMessage adds the TSIG record to a fully built message.
func (c *Credential) applyToMessage(msg *dns.Msg, timeSigned int64) {
	if c == nil {
		return
	}
	msg.SetTsig(c.keyName, c.algorithm, DefaultFudge, timeSigned)
}

// NormalizeAlgorithm maps user-facing algorithm names to miekg/dns form.
// Unknown names are returned unchanged so that validation can report them.
func NormalizeAlgorithm(alg string) string {
	normalized := strings.ToLower(strings.TrimSpace(alg))

	switch normalized {
	case "":
		return DefaultAlgorithm
	case "hmac-md5", "md5", "hmac-md5.sig-alg.reg.int", "hmac-md5.sig-alg.reg.int.":
		return dns.HmacMD5
	case "hmac-sha1", "sha1", "hmac-sha1.":
		return dns.HmacSHA1
	case "hmac-sha224", "sha224", "hmac-sha224.":
		return dns.HmacSHA224
	case "hmac-sha256", "sha256", "hmac-sha256.":
		return dns.HmacSHA256
	case "hmac-sha384", "sha384", "hmac-sha384.":
		return dns.HmacSHA384
	case "hmac-sha512", "sha512", "hmac-sha512.":
		return dns.HmacSHA512
	default:
		return alg
	}
}

// IsValidAlgorithm reports whether alg (in miekg/dns form) is supported.
func IsValidAlgorithm(alg string) bool {
	switch alg {
	case dns.HmacMD5, dns.HmacSHA1, dns.HmacSHA224, dns.HmacSHA256, dns.HmacSHA384, dns.HmacSHA512:
		return true
	default:
		return false
	}
}

// AlgorithmName returns a human-readable name for an algorithm.
func AlgorithmName(alg string) string {
	switch alg {
	case dns.HmacMD5:
		return "HMAC-MD5"
	case dns.HmacSHA1:
		return "HMAC-SHA1"
	case dns.HmacSHA224:
		return "HMAC-SHA224"
	case dns.HmacSHA256:
		return "HMAC-SHA256"
	case dns.HmacSHA384:
		return "HMAC-SHA384"
	case dns.HmacSHA512:
		return "HMAC-SHA512"
	default:
		return alg
	}
}

// SupportedAlgorithms returns the accepted configuration values.
func SupportedAlgorithms() []string {
	return []string{
		"hmac-sha1 (default)",
		"hmac-sha224",
		"hmac-sha256 (recommended)",
		"hmac-sha384",
		"hmac-sha512",
		"hmac-md5 (legacy)",
	}
}
