/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

package appctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDevice struct{ iface string }

func (f fakeDevice) Iface() string { return f.iface }

func TestRegisterUnregisterDevice(t *testing.T) {
	assert := require.New(t)

	ctx := New(context.Background(), zap.NewNop().Sugar())
	ctx.RegisterDevice(fakeDevice{"wlan0"})

	d, ok := ctx.Device("wlan0")
	assert.True(ok)
	assert.Equal("wlan0", d.Iface())
	assert.Len(ctx.Devices(), 1)

	ctx.UnregisterDevice("wlan0")
	_, ok = ctx.Device("wlan0")
	assert.False(ok)
}

func TestDefaultFlags(t *testing.T) {
	assert := require.New(t)

	ctx := New(context.Background(), zap.NewNop().Sugar())
	assert.True(ctx.WirelessEnabled.IsSet())
	assert.False(ctx.Asleep.IsSet())
}
