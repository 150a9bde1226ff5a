/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

// Package aplist holds the access-point record and the ordered,
// de-duplicated list that a wireless device's scan cycle and an
// operator's configured-network store both populate.
package aplist

import (
	"time"

	"nwmgr/common/wifi"
)

// Capability is a bitmask of the encryption protocols and ciphers an AP
// advertises, as decoded from its WPA/RSN information elements.
type Capability uint32

// Capability bits. An AP with no bits set is open.
const (
	CapWEP Capability = 1 << iota
	CapWPA
	CapWPAPSK
	CapWPAEAP
	CapRSN
	CapRSNPSK
	CapRSNEAP
)

// Encrypted reports whether any of the capability bits imply a key is
// required to associate.
func (c Capability) Encrypted() bool {
	return c != 0
}

// Security is the opaque credential blob a configured-network
// collaborator attaches to an allowed record and that gets handed, by
// reference, to the supplicant collaborator during association. The
// core never inspects or derives key material from it.
type Security struct {
	Protocol string
	Key      string
}

// Flags records the per-AP boolean state the selection policy and
// association loop consult.
type Flags struct {
	Artificial               bool // force-activate fake AP, not yet confirmed by a scan
	UserCreated              bool
	Trusted                  bool
	HasManufacturerDefaultEssid bool
}

// AccessPoint is one wireless network, either sighted in a scan or
// recorded by the operator in the allowed list. Device engines and the
// selection policy share AccessPoint values by pointer; APList is the
// only thing that mutates one once it has been merged in, and it does
// so under its own lock, so callers must not mutate a *AccessPoint
// obtained from Iterate/LookupBy* except through an APList method.
type AccessPoint struct {
	Essid        string
	BSSID        string
	Mode         string // wifi.ModeInfra or wifi.ModeAdhoc
	Frequency    float64
	Strength     int8 // [-1, 100]; -1 is unknown
	Security     *Security
	Timestamp    time.Time
	LastSeen     time.Time
	Flags        Flags
	Capabilities Capability
	UserAddrs    map[string]bool
}

// manufacturerDefaultEssids are the out-of-the-box essids shipped by
// consumer AP vendors; the selection policy treats a match as
// blacklisted unless the operator has recorded an explicit bssid
// override for it (see IsManufacturerDefaultEssid).
var manufacturerDefaultEssids = map[string]bool{
	"linksys":    true,
	"netgear":    true,
	"dlink":      true,
	"default":    true,
	"belkin54g":  true,
	"wireless":   true,
	"SMC":        true,
	"NETGEAR":    true,
	"Wireless":   true,
}

// IsManufacturerDefaultEssid reports whether essid matches a known
// vendor out-of-the-box default.
func IsManufacturerDefaultEssid(essid string) bool {
	return manufacturerDefaultEssids[essid]
}

// New returns an AccessPoint ready for insertion into an APList.
func New(bssid string) *AccessPoint {
	return &AccessPoint{
		BSSID:     bssid,
		Mode:      wifi.ModeInfra,
		Strength:  -1,
		UserAddrs: make(map[string]bool),
	}
}

// HasUserAddr reports whether mac is among the AP's recorded
// user-address overrides (the blacklist-override mechanism of 4.5).
func (ap *AccessPoint) HasUserAddr(mac string) bool {
	if ap == nil {
		return false
	}
	return ap.UserAddrs[mac]
}

// Clone returns a shallow copy suitable for inserting into another
// list without aliasing the original's mutable fields.
func (ap *AccessPoint) Clone() *AccessPoint {
	c := *ap
	c.UserAddrs = make(map[string]bool, len(ap.UserAddrs))
	for k, v := range ap.UserAddrs {
		c.UserAddrs[k] = v
	}
	return &c
}
