/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

package aputil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPaceTrackerAllowsTicksSpacedBeyondPeriod(t *testing.T) {
	assert := require.New(t)

	p := NewPaceTracker(3, time.Millisecond)
	for i := 0; i < 5; i++ {
		time.Sleep(2 * time.Millisecond)
		assert.NoError(p.Tick())
	}
}

func TestPaceTrackerRejectsBurst(t *testing.T) {
	assert := require.New(t)

	p := NewPaceTracker(3, time.Hour)
	assert.NoError(p.Tick(), "tick 1 fills the warm-up window")
	assert.NoError(p.Tick(), "tick 2 fills the warm-up window")
	assert.Error(p.Tick(), "tick 3 is within the window of tick 1, well inside the period")
}
