package dyndns

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNewAllowList(t *testing.T) {
	al := NewAllowList(" bunyip.example.com ", "", "other.example.com", "bunyip.example.com")

	want := []string{"bunyip.example.com", "other.example.com"}
	if !reflect.DeepEqual(al.Zones(), want) {
		t.Errorf("Zones() = %v, want %v", al.Zones(), want)
	}
	if al.Len() != 2 {
		t.Errorf("Len() = %d, want 2", al.Len())
	}
}

func TestAllowListCheck(t *testing.T) {
	al := NewAllowList("bunyip.example.com")

	tests := []struct {
		zone    string
		allowed bool
	}{
		{"bunyip.example.com", true},
		{"bunyip.example.com.", false},
		{"sub.bunyip.example.com", false},
		{"example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			if got := al.Contains(tt.zone); got != tt.allowed {
				t.Errorf("Contains(%q) = %v, want %v", tt.zone, got, tt.allowed)
			}

			err := al.Check(tt.zone)
			if tt.allowed {
				if err != nil {
					t.Errorf("Check(%q) error: %v", tt.zone, err)
				}
				return
			}
			if !errors.Is(err, ErrZoneNotAuthorized) {
				t.Errorf("Check(%q) = %v, want %v", tt.zone, err, ErrZoneNotAuthorized)
			}
			if !strings.Contains(err.Error(), "bunyip.example.com") {
				t.Errorf("error %q should list the allowed zones", err)
			}
		})
	}
}

func TestEmptyAllowList(t *testing.T) {
	var al AllowList
	if al.Contains("bunyip.example.com") {
		t.Error("zero AllowList should contain nothing")
	}
	if len(al.Zones()) != 0 {
		t.Errorf("Zones() = %v, want empty", al.Zones())
	}
}

func TestReverseSyncErrorMessage(t *testing.T) {
	cause := errors.New("boom")

	err := &ReverseSyncError{Name: "foo", Zone: "bunyip.example.com", ReverseZone: "1.168.192.in-addr.arpa.", Err: cause}
	if !strings.Contains(err.Error(), "1.168.192.in-addr.arpa.") || !errors.Is(err, cause) {
		t.Errorf("unexpected error: %v", err)
	}

	noZone := &ReverseSyncError{Name: "foo", Zone: "bunyip.example.com", Err: cause}
	if !strings.Contains(noZone.Error(), "reverse sync failed") {
		t.Errorf("unexpected error: %v", noZone)
	}
}
