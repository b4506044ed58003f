package dyndns

import "strings"

// AllowList is the fixed set of zones a driver may mutate.
// Membership is exact: "example.com" and "example.com." are different zones.
type AllowList struct {
	zones []string
	set   map[string]struct{}
}

// NewAllowList builds an AllowList, dropping blanks and duplicates while
// keeping the given order.
func NewAllowList(zones ...string) AllowList {
	al := AllowList{set: make(map[string]struct{}, len(zones))}
	for _, z := range zones {
		z = strings.TrimSpace(z)
		if z == "" {
			continue
		}
		if _, ok := al.set[z]; ok {
			continue
		}
		al.set[z] = struct{}{}
		al.zones = append(al.zones, z)
	}
	return al
}

// Contains reports whether zone may be mutated.
func (a AllowList) Contains(zone string) bool {
	_, ok := a.set[zone]
	return ok
}

// Check returns a *ZoneNotAuthorizedError when zone is not allowed.
func (a AllowList) Check(zone string) error {
	if a.Contains(zone) {
		return nil
	}
	return &ZoneNotAuthorizedError{Zone: zone, Allowed: a.Zones()}
}

// Zones returns a copy of the allowed zones.
func (a AllowList) Zones() []string {
	out := make([]string, len(a.zones))
	copy(out, a.zones)
	return out
}

// Len returns the number of allowed zones.
func (a AllowList) Len() int {
	return len(a.zones)
}
