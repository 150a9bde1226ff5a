/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

package wext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidMAC(t *testing.T) {
	assert := require.New(t)

	assert.True(IsValidMAC("aa:bb:cc:dd:ee:ff"))
	assert.False(IsValidMAC("00:00:00:00:00:00"))
	assert.False(IsValidMAC("ff:ff:ff:ff:ff:ff"))
	assert.False(IsValidMAC("01:bb:cc:dd:ee:ff")) // multicast bit set
	assert.False(IsValidMAC("not-a-mac"))
	assert.False(IsValidMAC(""))
}

func TestFreqRoundTrip(t *testing.T) {
	assert := require.New(t)

	m, e := floatToFreq(2437000000)
	assert.Equal(float64(2437000000), freqToFloat(m, e))

	m, e = floatToFreq(5180000000)
	assert.Equal(float64(5180000000), freqToFloat(m, e))
}
