package dyndns

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrZoneNotAuthorized is returned when a mutation targets a zone outside
	// the allow list. No message has been sent when it is returned.
	ErrZoneNotAuthorized = errors.New("zone not authorized")

	// ErrDisabled is returned by every method of the disabled driver.
	ErrDisabled = errors.New("dynamic dns is disabled")

	// ErrInvalidRequest is returned for requests rejected before any I/O.
	ErrInvalidRequest = errors.New("invalid request")
)

// ZoneNotAuthorizedError names the rejected zone and the zones that are allowed.
type ZoneNotAuthorizedError struct {
	Zone    string
	Allowed []string
}

func (e *ZoneNotAuthorizedError) Error() string {
	return fmt.Sprintf("zone %q is not one of the managed zones [%s]", e.Zone, strings.Join(e.Allowed, ", "))
}

func (e *ZoneNotAuthorizedError) Unwrap() error {
	return ErrZoneNotAuthorized
}

// ReverseSyncError reports that the forward change for Name in Zone was
// applied but the matching change in ReverseZone was not. The two record
// sets may now disagree; nothing is rolled back.
type ReverseSyncError struct {
	Name        string
	Zone        string
	ReverseZone string
	Err         error
}

func (e *ReverseSyncError) Error() string {
	if e.ReverseZone == "" {
		return fmt.Sprintf("forward change for %s in %s applied, reverse sync failed: %v", e.Name, e.Zone, e.Err)
	}
	return fmt.Sprintf("forward change for %s in %s applied, reverse change in %s failed: %v",
		e.Name, e.Zone, e.ReverseZone, e.Err)
}

func (e *ReverseSyncError) Unwrap() error {
	return e.Err
}

// IsPartial reports whether err left the forward change applied without its
// reverse counterpart.
func IsPartial(err error) bool {
	var rse *ReverseSyncError
	return errors.As(err, &rse)
}
