package docker

import (
	"net/netip"
	"sort"
)

// Default label keys. A container opts in by carrying both the name and
// zone labels; the network label optionally picks which attached network's
// address is published.
const (
	DefaultLabelPrefix = "dyndns."

	LabelName    = "name"
	LabelZone    = "zone"
	LabelNetwork = "network"
)

// Container is the subset of container state the watcher acts on.
type Container struct {
	// ID is the full container ID.
	ID string

	// Name is the container name without the leading slash.
	Name string

	// Labels holds every label on the container.
	Labels map[string]string

	// Networks maps attached network names to the container's IPv4 address on
	// that network. Networks without an IPv4 address are omitted.
	Networks map[string]string
}

// String returns a human-readable representation of the container.
func (c Container) String() string {
	if c.Name != "" {
		return "container:" + c.Name
	}
	return "container:" + shortID(c.ID)
}

// HasLabel returns true if the container has the label (any value).
func (c Container) HasLabel(key string) bool {
	_, ok := c.Labels[key]
	return ok
}

// GetLabel returns the value of the label, or empty string if not found.
func (c Container) GetLabel(key string) string {
	return c.Labels[key]
}

// IPv4 returns the address to publish. When network is set only that
// network is considered; otherwise the first network by name wins.
func (c Container) IPv4(network string) (string, bool) {
	if network != "" {
		addr, ok := c.Networks[network]
		return addr, ok
	}

	if len(c.Networks) == 0 {
		return "", false
	}

	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)

	return c.Networks[names[0]], true
}

// Containers is a slice of Container with helper methods.
type Containers []Container

// IDs returns all container IDs.
func (cs Containers) IDs() []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}

// Filter returns the containers for which predicate returns true.
func (cs Containers) Filter(predicate func(Container) bool) Containers {
	result := make(Containers, 0)
	for _, c := range cs {
		if predicate(c) {
			result = append(result, c)
		}
	}
	return result
}

// WithLabel returns the containers that carry key.
func (cs Containers) WithLabel(key string) Containers {
	return cs.Filter(func(c Container) bool {
		return c.HasLabel(key)
	})
}

// normalizeContainerName strips the leading slash Docker puts on names.
func normalizeContainerName(names ...string) string {
	if len(names) == 0 {
		return ""
	}
	name := names[0]
	if len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	return name
}

// ipv4Only keeps entries whose address parses as IPv4.
func ipv4Only(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for network, addr := range in {
		if ip, err := netip.ParseAddr(addr); err == nil && ip.Is4() {
			out[network] = ip.String()
		}
	}
	return out
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
