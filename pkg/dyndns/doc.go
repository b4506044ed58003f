// Package dyndns keeps forward and reverse DNS records for named instances in
// step with their addresses, using signed dynamic updates (RFC 2136).
//
// A driver is built once from fixed configuration: the zones it may mutate,
// the TSIG credential, the TTL, and whether reverse records are maintained.
//
//	cred, _ := dnsupdate.NewCredential("keyname", secret, "hmac-sha1")
//	client, _ := dnsupdate.NewClient(&dnsupdate.Config{Server: "dns.bunyip.example.com"})
//	driver, _ := dyndns.New(dyndns.Config{
//		Domains:       []string{"bunyip.example.com"},
//		Credential:    cred,
//		TTL:           300,
//		CreateReverse: true,
//	}, client, resolver.NewSystem())
//
//	err := driver.CreateEntry(ctx, "foo", "192.168.1.1", dnsupdate.TypeA, "bunyip.example.com")
//
// CreateEntry above sends two messages: a replace of foo A 192.168.1.1 in
// bunyip.example.com, then a replace of 1 PTR foo.bunyip.example.com. in
// 1.168.192.in-addr.arpa. Zones must already exist on the server.
package dyndns
