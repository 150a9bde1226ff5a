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
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"nwmgr/ap_common/aplist"
	"nwmgr/appctx"
)

func TestForceActivateRejectsUnknownEssidWithoutSecurity(t *testing.T) {
	assert := require.New(t)

	app := appctx.New(context.Background(), zap.NewNop().Sugar())
	d := newBase(app, "wlan0", "aa:bb:cc:dd:ee:ff", KindWireless)
	d.wireless = &wirelessState{seen: aplist.New(aplist.DeviceSeen)}

	err := d.ForceActivate("UnknownNet", nil)
	assert.Equal(ErrForceActivateUnknown, err)
}

func TestForceActivateRejectsOnWiredDevice(t *testing.T) {
	assert := require.New(t)

	app := appctx.New(context.Background(), zap.NewNop().Sugar())
	d := newBase(app, "eth0", "aa:bb:cc:dd:ee:ff", KindWired)

	err := d.ForceActivate("AnyNet", &aplist.Security{Key: "x"})
	assert.Error(err)
}

func TestSetScanIntervalRejectsOnWiredDevice(t *testing.T) {
	assert := require.New(t)

	app := appctx.New(context.Background(), zap.NewNop().Sugar())
	d := newBase(app, "eth0", "aa:bb:cc:dd:ee:ff", KindWired)

	assert.Error(d.SetScanInterval(ScanIntervalKindActive))
}

func TestSetScanIntervalAppliesNamedDuration(t *testing.T) {
	assert := require.New(t)

	app := appctx.New(context.Background(), zap.NewNop().Sugar())
	d := newBase(app, "wlan0", "aa:bb:cc:dd:ee:ff", KindWireless)
	d.wireless = &wirelessState{interval: scanIntervalInit}

	assert.NoError(d.SetScanInterval(ScanIntervalKindInactive))
	assert.Equal(scanIntervalInactive, d.wireless.getInterval())
}
