package dyndns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gitlab.bluewillows.net/root/dyndns/pkg/dnsupdate"
	"gitlab.bluewillows.net/root/dyndns/pkg/resolver"
)

// DefaultTTL is applied to written records when Config.TTL is zero.
const DefaultTTL uint32 = 300

// Driver is the capability set exposed to callers. *DynamicDNS implements it
// against a real server; Disabled refuses every call.
type Driver interface {
	GetDomains() ([]string, error)
	CreateEntry(ctx context.Context, name, address string, t dnsupdate.RecordType, zone string) error
	DeleteEntry(ctx context.Context, name, zone string) error
	GetEntriesByAddress(ctx context.Context, address, zone string) ([]string, error)
	GetEntriesByName(ctx context.Context, name, zone string) ([]string, error)
	ModifyAddress(ctx context.Context, name, address, zone string) error
	CreateDomain(ctx context.Context, zone string) error
	DeleteDomain(ctx context.Context, zone string) error
}

// Sender delivers one update message and reports whether the server
// accepted it. *dnsupdate.Client implements it.
type Sender interface {
	Send(ctx context.Context, msg dnsupdate.UpdateMessage) error
}

// Config is the driver's fixed configuration.
type Config struct {
	// Domains is the allow list of zones that may be mutated.
	Domains []string

	// Credential signs every update. Nil sends unsigned updates.
	Credential *dnsupdate.Credential

	// TTL is applied to every written record (default: 300).
	TTL uint32

	// CreateReverse mirrors every address mutation into the reverse zone.
	CreateReverse bool

	// Enabled selects the live driver in NewDriver. New ignores it.
	Enabled bool
}

// Option configures a DynamicDNS driver.
type Option func(*DynamicDNS)

// WithLogger sets a custom logger for the driver.
func WithLogger(logger *slog.Logger) Option {
	return func(d *DynamicDNS) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRecorder sets where update and lookup observations are reported.
func WithRecorder(r Recorder) Option {
	return func(d *DynamicDNS) {
		if r != nil {
			d.recorder = r
		}
	}
}

// DynamicDNS applies forward and reverse record changes to an authoritative
// server with signed dynamic updates.
//
// Each call runs its exchanges sequentially, forward first. The forward and
// reverse messages are independent: when the reverse one fails the call
// returns a *ReverseSyncError and the forward change stays in place.
// The driver holds no mutable state and is safe for concurrent use.
type DynamicDNS struct {
	allow         AllowList
	cred          *dnsupdate.Credential
	ttl           uint32
	createReverse bool

	sender   Sender
	resolver resolver.Resolver
	logger   *slog.Logger
	recorder Recorder
}

var _ Driver = (*DynamicDNS)(nil)

// New creates a live driver.
func New(cfg Config, sender Sender, res resolver.Resolver, opts ...Option) (*DynamicDNS, error) {
	if sender == nil {
		return nil, errors.New("sender is required")
	}
	if res == nil {
		return nil, errors.New("resolver is required")
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	d := &DynamicDNS{
		allow:         NewAllowList(cfg.Domains...),
		cred:          cfg.Credential,
		ttl:           ttl,
		createReverse: cfg.CreateReverse,
		sender:        sender,
		resolver:      res,
		logger:        slog.Default(),
		recorder:      nopRecorder{},
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.allow.Len() == 0 {
		d.logger.Warn("no zones configured, every mutation will be rejected")
	}

	return d, nil
}

// NewDriver returns Disabled when cfg.Enabled is false and a live driver
// otherwise.
func NewDriver(cfg Config, sender Sender, res resolver.Resolver, opts ...Option) (Driver, error) {
	if !cfg.Enabled {
		return Disabled{}, nil
	}
	return New(cfg, sender, res, opts...)
}

// GetDomains returns the allow list.
func (d *DynamicDNS) GetDomains() ([]string, error) {
	return d.allow.Zones(), nil
}

// CreateEntry points name in zone at address with a record of type t,
// replacing any records of that type already there. With reverse sync
// enabled an A record is followed by a PTR in the address's reverse zone.
//
// Nothing is sent when zone is not allowed or the request is malformed.
func (d *DynamicDNS) CreateEntry(ctx context.Context, name, address string, t dnsupdate.RecordType, zone string) error {
	if err := d.allow.Check(zone); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}

	forward := dnsupdate.NewReplace(zone, name, d.ttl, t, address, d.cred)
	if err := forward.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	var reverse *dnsupdate.UpdateMessage
	var rev dnsupdate.ReverseName
	if d.createReverse && (t == dnsupdate.TypeA || t == dnsupdate.TypeAAAA) {
		var err error
		rev, err = dnsupdate.DeriveReverse(address)
		if err != nil {
			return fmt.Errorf("%w: reverse record for %s: %w", ErrInvalidRequest, address, err)
		}
		target := resolver.Qualify(name, zone) + "."
		msg := dnsupdate.NewReplace(rev.Zone, rev.Label, d.ttl, dnsupdate.TypePTR, target, d.cred)
		reverse = &msg
	}

	d.logger.Info("updating dns entry",
		slog.String("name", name),
		slog.String("zone", zone),
		slog.String("type", t.String()),
		slog.String("value", address),
	)
	if err := d.send(ctx, OpCreate, DirectionForward, forward); err != nil {
		return err
	}

	if reverse == nil {
		return nil
	}

	d.logger.Info("updating dns entry",
		slog.String("name", rev.Label),
		slog.String("zone", rev.Zone),
		slog.String("type", dnsupdate.TypePTR.String()),
		slog.String("value", resolver.Qualify(name, zone)+"."),
	)
	if err := d.send(ctx, OpCreate, DirectionReverse, *reverse); err != nil {
		return &ReverseSyncError{Name: name, Zone: zone, ReverseZone: rev.Zone, Err: err}
	}

	return nil
}

// DeleteEntry removes every record at name in zone. Only the first label of
// name is used. With reverse sync enabled the addresses name still resolves
// to are looked up afterwards and their PTR names are removed as well;
// addresses other than IPv4 are skipped.
func (d *DynamicDNS) DeleteEntry(ctx context.Context, name, zone string) error {
	label, _, _ := strings.Cut(strings.TrimSpace(name), ".")
	if err := d.allow.Check(zone); err != nil {
		return err
	}
	if label == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}

	d.logger.Info("deleting dns entry",
		slog.String("name", label),
		slog.String("zone", zone),
	)
	if err := d.send(ctx, OpDelete, DirectionForward, dnsupdate.NewDeleteName(zone, label, d.cred)); err != nil {
		return err
	}

	if !d.createReverse {
		return nil
	}

	// Resolution goes through the host resolver and can race with other
	// writers to the same name.
	addrs, err := d.lookupAddresses(ctx, label, zone)
	if err != nil {
		return &ReverseSyncError{Name: label, Zone: zone, Err: err}
	}

	for _, addr := range addrs {
		rev, err := dnsupdate.DeriveReverse(addr)
		if err != nil {
			d.logger.Debug("skipping reverse delete",
				slog.String("name", label),
				slog.String("address", addr),
				slog.String("reason", err.Error()),
			)
			continue
		}

		d.logger.Info("deleting dns entry",
			slog.String("name", rev.Label),
			slog.String("zone", rev.Zone),
		)
		msg := dnsupdate.NewDeleteName(rev.Zone, rev.Label, d.cred)
		if err := d.send(ctx, OpDelete, DirectionReverse, msg); err != nil {
			return &ReverseSyncError{Name: label, Zone: zone, ReverseZone: rev.Zone, Err: err}
		}
	}

	return nil
}

// GetEntriesByAddress returns the names the reverse record of address points
// to. zone is accepted for symmetry and does not scope the lookup.
func (d *DynamicDNS) GetEntriesByAddress(ctx context.Context, address, _ string) ([]string, error) {
	names, err := d.resolver.LookupName(ctx, address)
	switch {
	case err == nil:
		d.recorder.RecordLookup(LookupAddress, ResultSuccess)
		return names, nil
	case resolver.IsNotFound(err):
		d.recorder.RecordLookup(LookupAddress, ResultNotFound)
		return []string{}, nil
	default:
		d.recorder.RecordLookup(LookupAddress, ResultError)
		return nil, err
	}
}

// GetEntriesByName returns the addresses name resolves to in zone, or an
// empty slice when it does not exist.
func (d *DynamicDNS) GetEntriesByName(ctx context.Context, name, zone string) ([]string, error) {
	return d.lookupAddresses(ctx, name, zone)
}

// ModifyAddress is CreateEntry with an A record.
func (d *DynamicDNS) ModifyAddress(ctx context.Context, name, address, zone string) error {
	return d.CreateEntry(ctx, name, address, dnsupdate.TypeA, zone)
}

// CreateDomain does not provision zones; they are assumed to exist.
func (d *DynamicDNS) CreateDomain(_ context.Context, zone string) error {
	d.logger.Info("zones are not created, assuming it already exists", slog.String("zone", zone))
	return nil
}

// DeleteDomain does not remove zones; they are assumed to exist.
func (d *DynamicDNS) DeleteDomain(_ context.Context, zone string) error {
	d.logger.Info("zones are not deleted, assuming it already exists", slog.String("zone", zone))
	return nil
}

func (d *DynamicDNS) lookupAddresses(ctx context.Context, name, zone string) ([]string, error) {
	addrs, err := d.resolver.LookupAddresses(ctx, name, zone)
	switch {
	case err == nil:
		d.recorder.RecordLookup(LookupName, ResultSuccess)
		return addrs, nil
	case resolver.IsNotFound(err):
		d.recorder.RecordLookup(LookupName, ResultNotFound)
		return []string{}, nil
	default:
		d.recorder.RecordLookup(LookupName, ResultError)
		return nil, err
	}
}

func (d *DynamicDNS) send(ctx context.Context, op, direction string, msg dnsupdate.UpdateMessage) error {
	start := time.Now()
	err := d.sender.Send(ctx, msg)
	elapsed := time.Since(start)

	if err != nil {
		d.recorder.RecordUpdate(op, direction, ResultError, elapsed)
		d.logger.Error("dns update failed",
			slog.String("op", op),
			slog.String("direction", direction),
			slog.String("zone", msg.Zone),
			slog.String("error", err.Error()),
		)
		return err
	}

	d.recorder.RecordUpdate(op, direction, ResultSuccess, elapsed)
	return nil
}
