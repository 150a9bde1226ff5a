/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

package wificaps

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nwmgr/common/wifi"
)

func TestFreqToChannel(t *testing.T) {
	assert := require.New(t)

	assert.Equal(1, freqToChannel(2412000000))
	assert.Equal(11, freqToChannel(2462000000))
	assert.Equal(14, freqToChannel(2484000000))
	assert.Equal(36, freqToChannel(5180000000))
	assert.Equal(0, freqToChannel(900000000))
}

func TestClassifyDualBandCard(t *testing.T) {
	assert := require.New(t)

	w := &WifiCapabilities{}
	classify(w, []float64{2412000000, 2462000000, 5180000000, 5805000000})

	assert.True(w.Channels[1])
	assert.True(w.Channels[11])
	assert.True(w.Channels[36])
	assert.True(w.WifiBands[wifi.LoBand])
	assert.True(w.WifiBands[wifi.HiBand])
	assert.True(w.WifiModes["g"])
	assert.True(w.WifiModes["a"])
}

func TestClassifyLoBandOnlyCard(t *testing.T) {
	assert := require.New(t)

	w := &WifiCapabilities{}
	classify(w, []float64{2412000000, 2437000000, 2462000000})

	assert.True(w.WifiModes["g"])
	assert.False(w.WifiModes["a"])
	assert.False(w.WifiBands[wifi.HiBand])
}
