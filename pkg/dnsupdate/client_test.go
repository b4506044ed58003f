package dnsupdate

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/miekg/dns"
)

// updateServer is an in-process authoritative server that accepts updates
// over TCP and records what it received.
type updateServer struct {
	addr  string
	rcode int

	mu       sync.Mutex
	received []*dns.Msg
	tsigErrs []error
}

func startUpdateServer(t *testing.T, rcode int) *updateServer {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	us := &updateServer{addr: l.Addr().String(), rcode: rcode}

	started := make(chan struct{})
	srv := &dns.Server{
		Listener:          l,
		Net:               "tcp",
		TsigSecret:        map[string]string{"keyname.": testSecret},
		Handler:           dns.HandlerFunc(us.serveDNS),
		MsgAcceptFunc:     acceptUpdates,
		NotifyStartedFunc: func() { close(started) },
	}

	go func() {
		_ = srv.ActivateAndServe()
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("dns server did not start")
	}

	t.Cleanup(func() {
		_ = srv.Shutdown()
	})

	return us
}

// acceptUpdates admits UPDATE messages, which the default accept function
// answers with NOTIMP before any handler runs.
func acceptUpdates(dh dns.Header) dns.MsgAcceptAction {
	if int(dh.Bits>>11)&0xF == dns.OpcodeUpdate {
		return dns.MsgAccept
	}
	return dns.DefaultMsgAcceptFunc(dh)
}

func (us *updateServer) serveDNS(w dns.ResponseWriter, r *dns.Msg) {
	var tsigErr error
	if r.IsTsig() != nil {
		tsigErr = w.TsigStatus()
	}

	us.mu.Lock()
	us.received = append(us.received, r.Copy())
	us.tsigErrs = append(us.tsigErrs, tsigErr)
	us.mu.Unlock()

	m := new(dns.Msg)
	m.SetReply(r)

	switch {
	case tsigErr != nil:
		m.Rcode = dns.RcodeNotAuth
	case r.Opcode == dns.OpcodeQuery:
		m.Authoritative = true
	default:
		m.Rcode = us.rcode
	}

	if r.IsTsig() != nil && tsigErr == nil {
		m.SetTsig(r.Extra[len(r.Extra)-1].(*dns.TSIG).Hdr.Name, dns.HmacSHA1, 300, time.Now().Unix())
	}

	_ = w.WriteMsg(m)
}

func (us *updateServer) messages() ([]*dns.Msg, []error) {
	us.mu.Lock()
	defer us.mu.Unlock()
	return append([]*dns.Msg(nil), us.received...), append([]error(nil), us.tsigErrs...)
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:   "valid config",
			config: &Config{Server: "dns.bunyip.example.com"},
		},
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name:    "missing server",
			config:  &Config{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.Server() != "dns.bunyip.example.com:53" {
				t.Errorf("Server() = %v, want dns.bunyip.example.com:53", client.Server())
			}
			if !client.LastUpdate().IsZero() {
				t.Error("LastUpdate should initially be zero")
			}
			if err := client.Close(); err != nil {
				t.Errorf("Close() error: %v", err)
			}
		})
	}
}

func TestClientSendSigned(t *testing.T) {
	srv := startUpdateServer(t, dns.RcodeSuccess)

	client, err := NewClient(&Config{Server: srv.addr, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	msg := NewReplace("bunyip.example.com", "foo", 300, TypeA, "192.168.1.1", testCredential(t))
	if err := client.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	got, tsigErrs := srv.messages()
	if len(got) != 1 {
		t.Fatalf("server received %d messages, want 1", len(got))
	}
	if tsigErrs[0] != nil {
		t.Errorf("server TSIG verification failed: %v", tsigErrs[0])
	}

	req := got[0]
	if req.Opcode != dns.OpcodeUpdate {
		t.Errorf("Opcode = %v, want UPDATE", req.Opcode)
	}
	if req.Question[0].Name != "bunyip.example.com." {
		t.Errorf("zone = %v, want bunyip.example.com.", req.Question[0].Name)
	}
	if len(req.Ns) != 2 {
		t.Fatalf("authority section has %d records, want 2", len(req.Ns))
	}
	if a, ok := req.Ns[1].(*dns.A); !ok || a.A.String() != "192.168.1.1" {
		t.Errorf("Ns[1] = %v, want A 192.168.1.1", req.Ns[1])
	}
	tsig := req.IsTsig()
	if tsig == nil || tsig.Hdr.Name != "keyname." || tsig.Algorithm != dns.HmacSHA1 {
		t.Errorf("TSIG = %v, want keyname. hmac-sha1", tsig)
	}

	if client.LastUpdate().IsZero() {
		t.Error("LastUpdate should be set after an accepted update")
	}
}

func TestClientSendRejected(t *testing.T) {
	tests := []struct {
		name      string
		rcode     int
		wantErr   error
		wantRcode int
	}{
		{"refused", dns.RcodeRefused, ErrUpdateRejected, dns.RcodeRefused},
		{"server failure", dns.RcodeServerFailure, ErrUpdateRejected, dns.RcodeServerFailure},
		{"not zone", dns.RcodeNotZone, ErrZoneMismatch, dns.RcodeNotZone},
		{"not auth", dns.RcodeNotAuth, ErrAuthenticationFailed, dns.RcodeNotAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := startUpdateServer(t, tt.rcode)
			client, err := NewClient(&Config{Server: srv.addr, Timeout: 2 * time.Second})
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}

			err = client.Send(context.Background(), NewDeleteName("bunyip.example.com", "foo", testCredential(t)))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Send() error = %v, want %v", err, tt.wantErr)
			}

			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("expected *TransportError, got %T", err)
			}
			if te.Rcode != tt.wantRcode {
				t.Errorf("Rcode = %v, want %v", te.Rcode, tt.wantRcode)
			}
			if te.Zone != "bunyip.example.com" || te.Server != srv.addr {
				t.Errorf("TransportError = %+v", te)
			}
			if !client.LastUpdate().IsZero() {
				t.Error("LastUpdate should not change on rejection")
			}
		})
	}
}

func TestClientSendWrongSecret(t *testing.T) {
	srv := startUpdateServer(t, dns.RcodeSuccess)
	client, err := NewClient(&Config{Server: srv.addr, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	cred, err := NewCredential("keyname", "c2VjcmV0", "hmac-sha1")
	if err != nil {
		t.Fatalf("NewCredential: %v", err)
	}

	err = client.Send(context.Background(), NewDeleteName("bunyip.example.com", "foo", cred))
	if !IsAuthError(err) {
		t.Errorf("Send() error = %v, want authentication failure", err)
	}

	_, tsigErrs := srv.messages()
	if len(tsigErrs) != 1 || tsigErrs[0] == nil {
		t.Errorf("server should have rejected the signature, got %v", tsigErrs)
	}
}

func TestClientSendUnreachable(t *testing.T) {
	// Reserve a port and close it so nothing is listening.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	client, err := NewClient(&Config{Server: addr, Timeout: time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	err = client.Send(context.Background(), NewDeleteName("bunyip.example.com", "foo", testCredential(t)))
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("Send() error = %v, want %v", err, ErrConnectionFailed)
	}

	var te *TransportError
	if !errors.As(err, &te) || te.Rcode != NoRcode {
		t.Errorf("expected *TransportError without rcode, got %v", err)
	}
	if !IsTransportError(err) {
		t.Error("IsTransportError should report true")
	}
	if !IsNetworkError(err) {
		t.Error("IsNetworkError should report true for a refused connection")
	}
}

func TestClientSendInvalidMessage(t *testing.T) {
	client, err := NewClient(&Config{Server: "127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	err = client.Send(context.Background(), Build("bunyip.example.com", nil, nil))
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Send() error = %v, want %v", err, ErrEmptyMessage)
	}
	if IsTransportError(err) {
		t.Error("a message that never left should not be a transport error")
	}
}

func TestClientPing(t *testing.T) {
	srv := startUpdateServer(t, dns.RcodeSuccess)
	client, err := NewClient(&Config{Server: srv.addr, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if err := client.Ping(context.Background(), "bunyip.example.com"); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}

	got, _ := srv.messages()
	if len(got) != 1 || got[0].Question[0].Qtype != dns.TypeSOA {
		t.Errorf("expected one SOA query, got %v", got)
	}
}

func TestContextCancellation(t *testing.T) {
	srv := startUpdateServer(t, dns.RcodeSuccess)
	client, err := NewClient(&Config{Server: srv.addr, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = client.Send(ctx, NewDeleteName("bunyip.example.com", "foo", testCredential(t)))
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Send() with canceled context error = %v, want %v", err, ErrConnectionFailed)
	}
}

func TestRcodeToError(t *testing.T) {
	tests := []struct {
		rcode   int
		wantErr error
	}{
		{dns.RcodeSuccess, nil},
		{dns.RcodeNotAuth, ErrAuthenticationFailed},
		{dns.RcodeBadKey, ErrAuthenticationFailed},
		{dns.RcodeNotZone, ErrZoneMismatch},
		{dns.RcodeRefused, ErrUpdateRejected},
		{dns.RcodeServerFailure, ErrUpdateRejected},
		{dns.RcodeYXRrset, ErrUpdateRejected},
	}

	for _, tt := range tests {
		t.Run(dns.RcodeToString[tt.rcode], func(t *testing.T) {
			err := RcodeToError(tt.rcode)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestIsAuthError(t *testing.T) {
	if !IsAuthError(ErrAuthenticationFailed) {
		t.Error("IsAuthError(ErrAuthenticationFailed) should return true")
	}
	if !IsAuthError(classifyExchangeError(dns.ErrSig)) {
		t.Error("a bad response signature should be an auth error")
	}
	if IsAuthError(ErrUpdateRejected) {
		t.Error("IsAuthError(ErrUpdateRejected) should return false")
	}
	if IsAuthError(nil) {
		t.Error("IsAuthError(nil) should return false")
	}
}

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, true},
		{"wrapped timeout", classifyExchangeError(&net.DNSError{Err: "i/o timeout", IsTimeout: true}), true},
		{"rejected", &TransportError{Rcode: dns.RcodeRefused, Err: RcodeToError(dns.RcodeRefused)}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNetworkError(tt.err); got != tt.want {
				t.Errorf("IsNetworkError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
