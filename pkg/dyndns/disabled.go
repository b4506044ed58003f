package dyndns

import (
	"context"

	"gitlab.bluewillows.net/root/dyndns/pkg/dnsupdate"
)

// Disabled is the driver used when dynamic DNS is turned off. Every method
// returns ErrDisabled.
type Disabled struct{}

var _ Driver = Disabled{}

func (Disabled) GetDomains() ([]string, error) { return nil, ErrDisabled }

func (Disabled) CreateEntry(context.Context, string, string, dnsupdate.RecordType, string) error {
	return ErrDisabled
}

func (Disabled) DeleteEntry(context.Context, string, string) error { return ErrDisabled }

func (Disabled) GetEntriesByAddress(context.Context, string, string) ([]string, error) {
	return nil, ErrDisabled
}

func (Disabled) GetEntriesByName(context.Context, string, string) ([]string, error) {
	return nil, ErrDisabled
}

func (Disabled) ModifyAddress(context.Context, string, string, string) error { return ErrDisabled }

func (Disabled) CreateDomain(context.Context, string) error { return ErrDisabled }

func (Disabled) DeleteDomain(context.Context, string) error { return ErrDisabled }
