/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

// Package selection implements the AP selection policy: given a
// device's scan list, the operator's allowed and invalid lists, and
// whatever AP is presently selected, it picks the one AP the device
// should try to associate with next.
package selection

import "nwmgr/ap_common/aplist"

// Input bundles everything the policy needs to make a choice. Select
// reads all three lists and never adds to or removes from them; its
// one write is copying the matched allowed record's Security onto the
// chosen AP. It calls HasActiveLink at most twice: once when the device
// has no scan capability, and once more when deciding whether Current
// is keepable.
type Input struct {
	ScanList Lister
	Allowed  Lister
	Invalid  Lister

	// Current is the AP presently selected for this device, or nil.
	Current *aplist.AccessPoint
	// CurrentUserRequested records whether Current was explicitly
	// requested by the operator at activation time.
	CurrentUserRequested bool

	HasScanCapability bool
	// HasActiveLink probes, under the device's scan lock, whether a
	// hardware link to Current still exists. Nil is treated as "no".
	HasActiveLink func() bool
}

// Lister is the subset of *aplist.APList the policy depends on,
// expressed as an interface so tests can substitute a fake.
type Lister interface {
	LookupByEssid(essid string) *aplist.AccessPoint
	LookupByBSSID(bssid string) *aplist.AccessPoint
	Iterate() []*aplist.AccessPoint
}

// Select runs the policy and returns the chosen AP, or nil if none
// qualifies.
func Select(in Input) *aplist.AccessPoint {
	if !in.HasScanCapability && !probeLink(in.HasActiveLink) {
		return nil
	}

	if keep := keepCurrent(in); keep != nil {
		return keep
	}

	trusted, trustedCfg := (*aplist.AccessPoint)(nil), (*aplist.AccessPoint)(nil)
	untrusted, untrustedCfg := (*aplist.AccessPoint)(nil), (*aplist.AccessPoint)(nil)

	for _, scanned := range in.ScanList.Iterate() {
		if scanned.Essid == "" {
			continue
		}
		if in.Invalid.LookupByEssid(scanned.Essid) != nil {
			continue
		}
		cfg := in.Allowed.LookupByEssid(scanned.Essid)
		if cfg == nil {
			continue
		}
		if isBlacklisted(scanned, cfg) {
			continue
		}

		if cfg.Flags.Trusted {
			if trusted == nil || scanned.Timestamp.After(trusted.Timestamp) {
				trusted, trustedCfg = scanned, cfg
			}
		} else {
			if untrusted == nil || scanned.Timestamp.After(untrusted.Timestamp) {
				untrusted, untrustedCfg = scanned, cfg
			}
		}
	}

	chosen, cfg := trusted, trustedCfg
	if chosen == nil {
		chosen, cfg = untrusted, untrustedCfg
	}
	if chosen == nil {
		return nil
	}
	chosen.Security = cfg.Security
	return chosen
}

func keepCurrent(in Input) *aplist.AccessPoint {
	cur := in.Current
	if cur == nil {
		return nil
	}
	keepable := cur.Flags.UserCreated || in.CurrentUserRequested || probeLink(in.HasActiveLink)
	if !keepable {
		return nil
	}
	if in.Invalid.LookupByEssid(cur.Essid) != nil {
		return nil
	}
	if in.ScanList.LookupByBSSID(cur.BSSID) == nil {
		return nil
	}
	return cur
}

func probeLink(f func() bool) bool {
	return f != nil && f()
}

// isBlacklisted implements the manufacturer-default-essid blacklist,
// with the operator's recorded user-address strings on cfg acting as
// an explicit per-bssid override.
func isBlacklisted(scanned, cfg *aplist.AccessPoint) bool {
	if !aplist.IsManufacturerDefaultEssid(scanned.Essid) {
		return false
	}
	return !cfg.HasUserAddr(scanned.BSSID)
}
