package tcu

import "errors"

// Error taxonomy for the driver. Multi-step operations roll back everything
// they allocated before surfacing the first error, so a failed call never
// leaves a channel claimed-but-broken; callers can match the cause with
// errors.Is.
var (
	// ErrInvalidConfig covers malformed or missing topology data: channel
	// counts outside the hardware range, absent register handles, zero
	// clock rates.
	ErrInvalidConfig = errors.New("tcu: invalid configuration")

	// ErrUnavailable covers unreachable resources: register space, clock
	// gates, interrupt lines.
	ErrUnavailable = errors.New("tcu: resource unavailable")

	// ErrChannelBusy is returned when claiming a channel another client
	// already holds.
	ErrChannelBusy = errors.New("tcu: channel already claimed")

	// ErrRangeExceeded is returned when a requested countdown does not fit
	// the hardware's 16-bit field.
	ErrRangeExceeded = errors.New("tcu: countdown exceeds hardware range")
)
