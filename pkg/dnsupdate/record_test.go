package dnsupdate

import (
	"errors"
	"testing"

	"github.com/miekg/dns"
)

func TestNewRR(t *testing.T) {
	tests := []struct {
		name     string
		rtype    RecordType
		rdata    string
		wantErr  error
		wantType uint16
		check    func(t *testing.T, rr dns.RR)
	}{
		{
			name:     "A record",
			rtype:    TypeA,
			rdata:    "10.0.0.1",
			wantType: dns.TypeA,
			check: func(t *testing.T, rr dns.RR) {
				if got := rr.(*dns.A).A.String(); got != "10.0.0.1" {
					t.Errorf("A = %v, want 10.0.0.1", got)
				}
			},
		},
		{
			name:    "A record rejects IPv6",
			rtype:   TypeA,
			rdata:   "2001:db8::1",
			wantErr: ErrInvalidAddress,
		},
		{
			name:    "A record rejects garbage",
			rtype:   TypeA,
			rdata:   "not-an-ip",
			wantErr: ErrInvalidAddress,
		},
		{
			name:     "AAAA record",
			rtype:    TypeAAAA,
			rdata:    "2001:db8::1",
			wantType: dns.TypeAAAA,
			check: func(t *testing.T, rr dns.RR) {
				if got := rr.(*dns.AAAA).AAAA.String(); got != "2001:db8::1" {
					t.Errorf("AAAA = %v, want 2001:db8::1", got)
				}
			},
		},
		{
			name:    "AAAA record rejects IPv4",
			rtype:   TypeAAAA,
			rdata:   "10.0.0.1",
			wantErr: ErrInvalidAddress,
		},
		{
			name:     "CNAME target is qualified",
			rtype:    TypeCNAME,
			rdata:    "target.example.com",
			wantType: dns.TypeCNAME,
			check: func(t *testing.T, rr dns.RR) {
				if got := rr.(*dns.CNAME).Target; got != "target.example.com." {
					t.Errorf("Target = %v, want target.example.com.", got)
				}
			},
		},
		{
			name:     "PTR target is qualified",
			rtype:    TypePTR,
			rdata:    "foo.bunyip.example.com",
			wantType: dns.TypePTR,
			check: func(t *testing.T, rr dns.RR) {
				if got := rr.(*dns.PTR).Ptr; got != "foo.bunyip.example.com." {
					t.Errorf("Ptr = %v, want foo.bunyip.example.com.", got)
				}
			},
		},
		{
			name:     "TXT record",
			rtype:    TypeTXT,
			rdata:    "hello world",
			wantType: dns.TypeTXT,
			check: func(t *testing.T, rr dns.RR) {
				txt := rr.(*dns.TXT).Txt
				if len(txt) != 1 || txt[0] != "hello world" {
					t.Errorf("Txt = %v, want [hello world]", txt)
				}
			},
		},
		{
			name:  "zero type",
			rtype: RecordType{},
			rdata: "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, err := newRR("foo.bunyip.example.com.", 300, tt.rtype, tt.rdata)
			if tt.wantErr != nil || tt.rtype.IsZero() {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			hdr := rr.Header()
			if hdr.Name != "foo.bunyip.example.com." {
				t.Errorf("Name = %v, want foo.bunyip.example.com.", hdr.Name)
			}
			if hdr.Rrtype != tt.wantType {
				t.Errorf("Rrtype = %v, want %v", hdr.Rrtype, tt.wantType)
			}
			if hdr.Ttl != 300 {
				t.Errorf("Ttl = %v, want 300", hdr.Ttl)
			}
			if hdr.Class != dns.ClassINET {
				t.Errorf("Class = %v, want IN", hdr.Class)
			}
			if tt.check != nil {
				tt.check(t, rr)
			}
		})
	}
}

func TestParseRecordType(t *testing.T) {
	tests := []struct {
		input   string
		want    RecordType
		wantErr bool
	}{
		{"A", TypeA, false},
		{"a", TypeA, false},
		{" aaaa ", TypeAAAA, false},
		{"CNAME", TypeCNAME, false},
		{"ptr", TypePTR, false},
		{"TXT", TypeTXT, false},
		{"MX", RecordType{}, true},
		{"", RecordType{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRecordType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseRecordType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRecordTypeString(t *testing.T) {
	tests := []struct {
		rtype RecordType
		want  string
	}{
		{TypeA, "A"},
		{TypeAAAA, "AAAA"},
		{TypeCNAME, "CNAME"},
		{TypePTR, "PTR"},
		{TypeTXT, "TXT"},
		{RecordType{}, "TYPE0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.rtype.String(); got != tt.want {
				t.Errorf("String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordTypeText(t *testing.T) {
	for _, rt := range SupportedTypes() {
		b, err := rt.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", rt, err)
		}

		var got RecordType
		if err := got.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if got != rt {
			t.Errorf("text round trip of %v = %v", rt, got)
		}
	}

	var bad RecordType
	if err := bad.UnmarshalText([]byte("SRV")); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestSupportedTypes(t *testing.T) {
	types := SupportedTypes()
	if len(types) != 5 {
		t.Fatalf("SupportedTypes() returned %d types, want 5", len(types))
	}
	for _, rt := range types {
		if rt.IsZero() {
			t.Error("supported type should not be zero")
		}
	}
}
