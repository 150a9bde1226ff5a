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

	"nwmgr/ap_common/wext"
)

func TestStrengthIsStickyAcrossInvalidSamples(t *testing.T) {
	assert := require.New(t)

	w := &wirelessState{strength: 70}
	w.updateStrength(70)
	assert.Equal(int8(70), w.strength)

	w.updateStrength(-1)
	assert.Equal(int8(70), w.strength, "iteration 1: should still hold last good value")
	w.updateStrength(-1)
	assert.Equal(int8(70), w.strength, "iteration 2")
	w.updateStrength(-1)
	assert.Equal(int8(70), w.strength, "iteration 3")
	w.updateStrength(-1)
	assert.Equal(int8(-1), w.strength, "iteration 4: should finally drop")
}

func TestStrengthRecoversAfterGoodSample(t *testing.T) {
	assert := require.New(t)

	w := &wirelessState{strength: 50}
	w.updateStrength(-1)
	w.updateStrength(-1)
	w.updateStrength(60)
	assert.Equal(int8(60), w.strength)
	assert.Equal(0, w.invalidCount)
}

func TestTryLockScanDoesNotBlockOnContention(t *testing.T) {
	assert := require.New(t)

	w := &wirelessState{scanSem: make(chan struct{}, 1)}
	w.scanSem <- struct{}{}

	w.lockScan()
	assert.False(w.tryLockScan(), "a scan already in progress should fail a try-acquire rather than block")

	w.unlockScan()
	assert.True(w.tryLockScan(), "lock is free again once the holder releases it")
}

func TestNormalizeStrengthNeverOutOfRange(t *testing.T) {
	assert := require.New(t)

	v := normalizeStrength(wext.Quality{}, wext.Quality{}, wext.Quality{})
	assert.True(v >= -1 && v <= 100)
}
