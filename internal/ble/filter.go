package ble

import "bytes"

// Filter decides whether an advertisement belongs to a peer running the
// counterpart client.
type Filter func(Advertisement) bool

// ServiceFilter matches advertisements carrying the given service UUID.
func ServiceFilter(uuid string) Filter {
	return func(adv Advertisement) bool {
		for _, s := range adv.ServiceUUIDs {
			if s == uuid {
				return true
			}
		}
		return false
	}
}

// backgroundedIPhonePattern is the manufacturer data a backgrounded iPhone
// emits in place of the service UUID. iOS moves the service information into
// an undocumented manufacturer-data encoding when the app is not foregrounded;
// the pattern below was captured off the air from a backgrounded device.
var backgroundedIPhonePattern = []byte{
	0x01, // 0
	0x00, // 1
	0x00, // 2
	0x00, // 3
	0x00, // 4
	0x00, // 5
	0x00, // 6
	0x00, // 7
	0x00, // 8
	0x00, // 9
	0x40, // 10
	0x00, // 11
	0x00, // 12
	0x00, // 13
	0x00, // 14
	0x00, // 15
	0x00, // 16
}

// BackgroundedIPhoneFilter matches the backgrounded-iPhone fingerprint:
// Apple's company id with the exact 17-byte pattern above.
func BackgroundedIPhoneFilter() Filter {
	return func(adv Advertisement) bool {
		return adv.ManufacturerID == AppleCompanyID &&
			bytes.Equal(adv.ManufacturerData, backgroundedIPhonePattern)
	}
}

// DefaultFilters returns the two production filters: the service UUID match
// and the backgrounded-iPhone fingerprint.
func DefaultFilters() []Filter {
	return []Filter{
		ServiceFilter(ServiceUUID),
		BackgroundedIPhoneFilter(),
	}
}

// MatchesAny reports whether any filter accepts the advertisement.
func MatchesAny(filters []Filter, adv Advertisement) bool {
	for _, f := range filters {
		if f(adv) {
			return true
		}
	}
	return false
}

// BackgroundedIPhoneData returns a copy of the expected manufacturer data,
// for simulators that want to advertise the backgrounded fingerprint.
func BackgroundedIPhoneData() []byte {
	out := make([]byte, len(backgroundedIPhonePattern))
	copy(out, backgroundedIPhonePattern)
	return out
}
