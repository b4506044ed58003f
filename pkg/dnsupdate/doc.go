// Package dnsupdate builds, signs, and sends RFC 2136 Dynamic DNS Update messages.
//
// The package is split along the lifecycle of a single update:
//
//   - Operations (ReplaceAny, DeleteAny, DeleteTyped) are the atomic units of
//     an update's authority section.
//   - Build assembles operations, a zone, and a Credential into an UpdateMessage.
//     Building is pure; nothing touches the network.
//   - Client sends an UpdateMessage over TCP to the authoritative server,
//     attaching a TSIG signature (RFC 8945) derived from the message's Credential.
//   - DeriveReverse maps an IPv4 address to its in-addr.arpa. zone and leaf label.
//
// # Usage
//
//	cred, err := dnsupdate.NewCredential("keyname", "Wr1784mFhyTP9nqXIkWpRw==", "hmac-sha1")
//	if err != nil {
//	    return err
//	}
//
//	client, err := dnsupdate.NewClient(&dnsupdate.Config{Server: "ns1.example.com"})
//	if err != nil {
//	    return err
//	}
//
//	msg := dnsupdate.Build("example.com", []dnsupdate.Operation{
//	    dnsupdate.ReplaceAny{Name: "web", TTL: 300, Type: dnsupdate.TypeA, RData: "192.0.2.10"},
//	}, cred)
//
//	err = client.Send(ctx, msg)
//
// # Names
//
// Operation names that are not fully qualified are relative to the message zone,
// so "web" in zone "example.com" is sent as "web.example.com.".
//
// # TSIG Authentication
//
// Generate a key with BIND's tsig-keygen and configure the same name and secret
// on the server:
//
//	tsig-keygen -a hmac-sha1 keyname > keyname.key
package dnsupdate
