/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

package aplist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAppendDeduplicatesByBSSID(t *testing.T) {
	assert := require.New(t)

	l := New(DeviceSeen)
	a1 := New2("aa:bb:cc:00:11:22", "first")
	a2 := New2("aa:bb:cc:00:11:22", "second")
	l.Append(a1)
	l.Append(a2)

	assert.Equal(1, l.Len())
	assert.Equal("second", l.LookupByBSSID("aa:bb:cc:00:11:22").Essid)
}

func TestMergeScannedInsertsThenUpdatesStrength(t *testing.T) {
	assert := require.New(t)

	l := New(DeviceSeen)
	ap := New2("11:11:11:11:11:11", "net")
	ap.Strength = 40

	assert.Equal(Inserted, l.MergeScanned(ap))

	again := New2("11:11:11:11:11:11", "net")
	again.Strength = 40
	assert.Equal(Unchanged, l.MergeScanned(again))

	stronger := New2("11:11:11:11:11:11", "net")
	stronger.Strength = 70
	assert.Equal(UpdatedStrength, l.MergeScanned(stronger))
	assert.Equal(int8(70), l.LookupByBSSID("11:11:11:11:11:11").Strength)
}

func TestHiddenEssidRecovery(t *testing.T) {
	assert := require.New(t)

	allowed := New(AllowedConfigured)
	home := New2("aa:bb:cc:00:11:22", "home")
	home.Flags.Trusted = true
	allowed.Append(home)

	seen := New(DeviceSeen)
	sighted := New2("aa:bb:cc:00:11:22", "")
	seen.MergeScanned(sighted)

	ap := seen.LookupByBSSID("aa:bb:cc:00:11:22")
	CopyOneEssidByAddress(ap, allowed)
	assert.Equal("home", ap.Essid)

	seen.CopyPropertiesFrom(allowed)
	assert.True(ap.Flags.Trusted)
}

func TestAgeOutKeepsAssociatedAP(t *testing.T) {
	assert := require.New(t)

	l := New(DeviceSeen)
	old := time.Unix(0, 0)
	z := New2("de:ad:be:ef:00:00", "z")
	z.LastSeen = old
	l.Append(z)

	assoc := New2("de:ad:be:ef:00:01", "assoc")
	assoc.LastSeen = old
	l.Append(assoc)

	now := old.Add(181 * time.Second)
	removed := l.AgeOut(now, 180*time.Second, "de:ad:be:ef:00:01")

	assert.Len(removed, 1)
	assert.Equal("de:ad:be:ef:00:00", removed[0].BSSID)
	assert.NotNil(l.LookupByBSSID("de:ad:be:ef:00:01"))
	assert.Nil(l.LookupByBSSID("de:ad:be:ef:00:00"))
}

func TestIterateIsSnapshot(t *testing.T) {
	assert := require.New(t)

	l := New(DeviceSeen)
	l.Append(New2("1", "a"))
	snap := l.Iterate()
	l.Append(New2("2", "b"))

	assert.Len(snap, 1)
	assert.Equal(2, l.Len())
}

func TestResolveArtificialAdoptsSecurityAndDropsPlaceholder(t *testing.T) {
	assert := require.New(t)

	l := New(DeviceSeen)
	placeholder := New2("00:00:00:00:00:00", "HomeNet")
	placeholder.Flags.Artificial = true
	placeholder.Security = &Security{Protocol: "wpa2", Key: "hunter2"}
	l.Append(placeholder)

	sighted := New2("aa:bb:cc:dd:ee:ff", "HomeNet")
	resolved := l.ResolveArtificial(sighted)

	assert.True(resolved)
	assert.Equal("hunter2", sighted.Security.Key)
	assert.Nil(l.LookupByBSSID("00:00:00:00:00:00"))
}

func TestResolveArtificialIgnoresNonMatchingEssid(t *testing.T) {
	assert := require.New(t)

	l := New(DeviceSeen)
	placeholder := New2("00:00:00:00:00:00", "Office")
	placeholder.Flags.Artificial = true
	l.Append(placeholder)

	sighted := New2("aa:bb:cc:dd:ee:ff", "HomeNet")
	resolved := l.ResolveArtificial(sighted)

	assert.False(resolved)
	assert.NotNil(l.LookupByBSSID("00:00:00:00:00:00"), "non-matching placeholder should survive")
}

// New2 is a test helper building a minimal AccessPoint with essid set,
// since New only takes a bssid.
func New2(bssid, essid string) *AccessPoint {
	ap := New(bssid)
	ap.Essid = essid
	return ap
}
