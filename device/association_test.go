/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

package device

import (
	"testing"

	"github.com/stretchr/testify/require"

	"nwmgr/ap_common/aplist"
)

func TestPickAdhocFrequencyChoosesLowestFreeChannel(t *testing.T) {
	assert := require.New(t)

	cardFreqs := bChannelFrequencies()

	scanned := []*aplist.AccessPoint{
		{Frequency: channelToFrequency(1)},
		{Frequency: channelToFrequency(6)},
		{Frequency: channelToFrequency(11)},
	}

	got := pickAdhocFrequency(cardFreqs, scanned)
	assert.Equal(channelToFrequency(2), got)
}

func TestGetAssociationPauseValue(t *testing.T) {
	assert := require.New(t)

	assert.Equal(6, getAssociationPauseValue(11)) // 5, raised to the 2*30/requiredTries floor
	assert.Equal(8, getAssociationPauseValue(15))
}

func TestChannelToFrequencyChannel14IsSpecialCased(t *testing.T) {
	assert := require.New(t)

	assert.Equal(float64(2484000000), channelToFrequency(14))
	assert.Equal(float64(2412000000), channelToFrequency(1))
}
