/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nwmgr/ap_common/aplist"
)

func ap(bssid, essid string) *aplist.AccessPoint {
	a := aplist.New(bssid)
	a.Essid = essid
	return a
}

func TestSelectTrustTiering(t *testing.T) {
	assert := require.New(t)

	scan := aplist.New(aplist.DeviceSeen)
	x := ap("11:11:11:11:11:11", "X")
	x.Timestamp = time.Unix(100, 0)
	y := ap("22:22:22:22:22:22", "Y")
	y.Timestamp = time.Unix(200, 0)
	scan.Append(x)
	scan.Append(y)

	allowed := aplist.New(aplist.AllowedConfigured)
	xCfg := ap("11:11:11:11:11:11", "X")
	xCfg.Flags.Trusted = true
	yCfg := ap("22:22:22:22:22:22", "Y")
	allowed.Append(xCfg)
	allowed.Append(yCfg)

	invalid := aplist.New(aplist.DeviceSeen)

	chosen := Select(Input{
		ScanList:          scan,
		Allowed:           allowed,
		Invalid:           invalid,
		HasScanCapability: true,
	})

	assert.NotNil(chosen)
	assert.Equal("X", chosen.Essid)
}

func TestSelectBlacklistOverride(t *testing.T) {
	assert := require.New(t)

	scan := aplist.New(aplist.DeviceSeen)
	linksys := ap("de:ad:be:ef:00:01", "linksys")
	linksys.Timestamp = time.Unix(1, 0)
	scan.Append(linksys)

	allowed := aplist.New(aplist.AllowedConfigured)
	cfg := ap("de:ad:be:ef:00:01", "linksys")
	cfg.UserAddrs["de:ad:be:ef:00:01"] = true
	allowed.Append(cfg)

	chosen := Select(Input{
		ScanList:          scan,
		Allowed:           allowed,
		Invalid:           aplist.New(aplist.DeviceSeen),
		HasScanCapability: true,
	})

	assert.NotNil(chosen)
	assert.Equal("linksys", chosen.Essid)
}

func TestSelectBlacklistWithoutOverrideIsExcluded(t *testing.T) {
	assert := require.New(t)

	scan := aplist.New(aplist.DeviceSeen)
	linksys := ap("de:ad:be:ef:00:01", "linksys")
	linksys.Timestamp = time.Unix(1, 0)
	scan.Append(linksys)

	allowed := aplist.New(aplist.AllowedConfigured)
	cfg := ap("de:ad:be:ef:00:01", "linksys")
	allowed.Append(cfg)

	chosen := Select(Input{
		ScanList:          scan,
		Allowed:           allowed,
		Invalid:           aplist.New(aplist.DeviceSeen),
		HasScanCapability: true,
	})

	assert.Nil(chosen)
}

func TestSelectNeverReturnsInvalidEssid(t *testing.T) {
	assert := require.New(t)

	scan := aplist.New(aplist.DeviceSeen)
	net := ap("33:33:33:33:33:33", "net")
	net.Timestamp = time.Unix(1, 0)
	scan.Append(net)

	allowed := aplist.New(aplist.AllowedConfigured)
	allowed.Append(ap("33:33:33:33:33:33", "net"))

	invalid := aplist.New(aplist.DeviceSeen)
	invalid.Append(ap("", "net"))

	chosen := Select(Input{
		ScanList:          scan,
		Allowed:           allowed,
		Invalid:           invalid,
		HasScanCapability: true,
	})

	assert.Nil(chosen)
}

func TestSelectKeepsKeepableCurrent(t *testing.T) {
	assert := require.New(t)

	cur := ap("44:44:44:44:44:44", "current")
	cur.Flags.UserCreated = true

	scan := aplist.New(aplist.DeviceSeen)
	scan.Append(ap("44:44:44:44:44:44", "current"))

	chosen := Select(Input{
		ScanList:          scan,
		Allowed:           aplist.New(aplist.AllowedConfigured),
		Invalid:           aplist.New(aplist.DeviceSeen),
		Current:           cur,
		HasScanCapability: true,
	})

	assert.Same(cur, chosen)
}

func TestSelectDropsCurrentNoLongerInScan(t *testing.T) {
	assert := require.New(t)

	cur := ap("55:55:55:55:55:55", "gone")
	cur.Flags.UserCreated = true

	chosen := Select(Input{
		ScanList:          aplist.New(aplist.DeviceSeen),
		Allowed:           aplist.New(aplist.AllowedConfigured),
		Invalid:           aplist.New(aplist.DeviceSeen),
		Current:           cur,
		HasScanCapability: true,
	})

	assert.Nil(chosen)
}

func TestSelectNoScanCapabilityNoLinkReturnsNil(t *testing.T) {
	assert := require.New(t)

	chosen := Select(Input{
		ScanList: aplist.New(aplist.DeviceSeen),
		Allowed:  aplist.New(aplist.AllowedConfigured),
		Invalid:  aplist.New(aplist.DeviceSeen),
	})

	assert.Nil(chosen)
}
