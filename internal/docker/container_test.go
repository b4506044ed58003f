package docker

import "testing"

func TestNormalizeContainerName(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		expected string
	}{
		{"with leading slash", []string{"/my-container"}, "my-container"},
		{"without leading slash", []string{"my-container"}, "my-container"},
		{"empty slice", []string{}, ""},
		{"nil slice", nil, ""},
		{"multiple names uses first", []string{"/primary", "/alias"}, "primary"},
		{"just a slash", []string{"/"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeContainerName(tt.names...); got != tt.expected {
				t.Errorf("normalizeContainerName(%v) = %q, want %q", tt.names, got, tt.expected)
			}
		})
	}
}

func TestContainerIPv4(t *testing.T) {
	ctr := Container{Networks: map[string]string{
		"zeta":   "10.0.0.3",
		"alpha":  "10.0.0.1",
		"middle": "10.0.0.2",
	}}

	tests := []struct {
		network string
		want    string
		wantOK  bool
	}{
		{"", "10.0.0.1", true},
		{"middle", "10.0.0.2", true},
		{"absent", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.network, func(t *testing.T) {
			got, ok := ctr.IPv4(tt.network)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("IPv4(%q) = %q, %v; want %q, %v", tt.network, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if _, ok := (Container{}).IPv4(""); ok {
		t.Error("container without networks should have no address")
	}
}

func TestIPv4Only(t *testing.T) {
	got := ipv4Only(map[string]string{
		"v4":     "192.0.2.10",
		"v6":     "2001:db8::1",
		"empty":  "",
		"broken": "not-an-ip",
	})
	if len(got) != 1 || got["v4"] != "192.0.2.10" {
		t.Errorf("ipv4Only = %v", got)
	}
}

func TestContainersHelpers(t *testing.T) {
	cs := Containers{
		{ID: "a", Labels: map[string]string{"dyndns.name": "a"}},
		{ID: "b", Labels: map[string]string{"other": "x"}},
		{ID: "c", Labels: map[string]string{"dyndns.name": "c", "dyndns.zone": "z"}},
	}

	labelled := cs.WithLabel("dyndns.name")
	if len(labelled) != 2 || labelled[1].ID != "c" {
		t.Errorf("WithLabel = %v", labelled.IDs())
	}

	if got := cs.Filter(func(c Container) bool { return c.HasLabel("dyndns.zone") }); len(got) != 1 {
		t.Errorf("Filter = %v", got.IDs())
	}
}

func TestContainerString(t *testing.T) {
	if s := (Container{Name: "web"}).String(); s != "container:web" {
		t.Errorf("String() = %q", s)
	}
	if s := (Container{ID: "0123456789abcdef"}).String(); s != "container:0123456789ab" {
		t.Errorf("String() = %q", s)
	}
}
