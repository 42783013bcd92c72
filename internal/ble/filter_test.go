package ble

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceFilter(t *testing.T) {
	f := ServiceFilter(ServiceUUID)

	assert.True(t, f(Advertisement{ServiceUUIDs: []string{ServiceUUID}}))
	assert.True(t, f(Advertisement{ServiceUUIDs: []string{"other", ServiceUUID}}))
	assert.False(t, f(Advertisement{ServiceUUIDs: []string{"other"}}))
	assert.False(t, f(Advertisement{}))
}

func TestBackgroundedIPhoneFilter(t *testing.T) {
	f := BackgroundedIPhoneFilter()

	good := Advertisement{
		ManufacturerID:   AppleCompanyID,
		ManufacturerData: BackgroundedIPhoneData(),
	}
	assert.True(t, f(good))

	wrongVendor := good
	wrongVendor.ManufacturerID = 77
	assert.False(t, f(wrongVendor))

	mutated := good
	mutated.ManufacturerData = BackgroundedIPhoneData()
	mutated.ManufacturerData[10] = 0x00
	assert.False(t, f(mutated))

	short := good
	short.ManufacturerData = good.ManufacturerData[:16]
	assert.False(t, f(short))
}

func TestMatchesAny(t *testing.T) {
	filters := DefaultFilters()

	assert.True(t, MatchesAny(filters, Advertisement{ServiceUUIDs: []string{ServiceUUID}}))
	assert.True(t, MatchesAny(filters, Advertisement{
		ManufacturerID:   AppleCompanyID,
		ManufacturerData: BackgroundedIPhoneData(),
	}))
	assert.False(t, MatchesAny(filters, Advertisement{Address: "AA:BB"}))
}
