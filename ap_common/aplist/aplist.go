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
	"sync"
	"time"
)

// Kind distinguishes a device's sighted-AP list from an
// operator-curated allowed list; both share the same storage and
// merge semantics.
type Kind int

// The two list kinds the core ever constructs.
const (
	DeviceSeen Kind = iota
	AllowedConfigured
)

// MergeResult reports what merge_scanned actually did, so a caller can
// decide whether the change is worth an external signal.
type MergeResult int

// MergeResult values.
const (
	Unchanged MergeResult = iota
	Inserted
	UpdatedStrength
)

// APList is an ordered, bssid-de-duplicated collection of APs. The
// zero value is not usable; construct one with New. All methods are
// safe for concurrent use; Iterate returns a snapshot so a caller may
// range over it while another goroutine appends or merges.
type APList struct {
	kind Kind

	mu     sync.RWMutex
	order  []string
	byAddr map[string]*AccessPoint
}

// New returns an empty list of the given kind.
func New(kind Kind) *APList {
	return &APList{
		kind:   kind,
		byAddr: make(map[string]*AccessPoint),
	}
}

// Kind returns the list's kind.
func (l *APList) Kind() Kind {
	return l.kind
}

// Len returns the number of APs currently in the list.
func (l *APList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// Append inserts ap, or replaces the existing entry with the same
// bssid in place (preserving list position), upholding the
// at-most-one-entry-per-bssid invariant.
func (l *APList) Append(ap *AccessPoint) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byAddr[ap.BSSID]; !exists {
		l.order = append(l.order, ap.BSSID)
	}
	l.byAddr[ap.BSSID] = ap
}

// Remove deletes the entry for ap's bssid, if present.
func (l *APList) Remove(ap *AccessPoint) {
	l.RemoveByBSSID(ap.BSSID)
}

// RemoveByBSSID deletes the entry for bssid, if present.
func (l *APList) RemoveByBSSID(bssid string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removeLocked(bssid)
}

func (l *APList) removeLocked(bssid string) {
	if _, exists := l.byAddr[bssid]; !exists {
		return
	}
	delete(l.byAddr, bssid)
	for i, b := range l.order {
		if b == bssid {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// LookupByEssid returns the first AP carrying essid, or nil. Essid is
// not a key -- multiple APs may share one -- so this is a first-match
// lookup, consistent with how the selection policy and hidden-essid
// recovery use it.
func (l *APList) LookupByEssid(essid string) *AccessPoint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, bssid := range l.order {
		if ap := l.byAddr[bssid]; ap.Essid == essid {
			return ap
		}
	}
	return nil
}

// LookupByBSSID returns the AP with the given bssid, or nil.
func (l *APList) LookupByBSSID(bssid string) *AccessPoint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.byAddr[bssid]
}

// Iterate returns a snapshot slice of the list's current APs, in
// insertion order. Concurrent appends or merges after the snapshot is
// taken are not observed by the caller.
func (l *APList) Iterate() []*AccessPoint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*AccessPoint, 0, len(l.order))
	for _, bssid := range l.order {
		out = append(out, l.byAddr[bssid])
	}
	return out
}

// MergeScanned folds a freshly-decoded scan sighting into the list.
// The caller is expected to have already stamped ap.LastSeen. A bssid
// not yet present is inserted verbatim; an existing entry has its
// Essid (if newly known), Mode, Frequency, Capabilities and LastSeen
// refreshed in place, and its Strength updated if changed.
func (l *APList) MergeScanned(ap *AccessPoint) MergeResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, found := l.byAddr[ap.BSSID]
	if !found {
		l.order = append(l.order, ap.BSSID)
		l.byAddr[ap.BSSID] = ap
		return Inserted
	}

	changed := existing.Strength != ap.Strength
	if ap.Essid != "" {
		existing.Essid = ap.Essid
	}
	existing.Mode = ap.Mode
	existing.Frequency = ap.Frequency
	existing.Capabilities = ap.Capabilities
	existing.LastSeen = ap.LastSeen
	existing.Strength = ap.Strength

	if changed {
		return UpdatedStrength
	}
	return Unchanged
}

// ResolveArtificial reconciles a fresh scan sighting against any
// force-activate placeholder already in the list: if one carries the
// same essid and is still flagged Artificial, its security descriptor
// is adopted onto sighted and the placeholder entry is dropped, so the
// caller's subsequent MergeScanned inserts sighted under its real
// bssid in the placeholder's place. It reports whether a placeholder
// was resolved.
func (l *APList) ResolveArtificial(sighted *AccessPoint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, bssid := range l.order {
		ap := l.byAddr[bssid]
		if ap.Flags.Artificial && ap.Essid == sighted.Essid {
			if sighted.Security == nil {
				sighted.Security = ap.Security
			}
			l.removeLocked(bssid)
			return true
		}
	}
	return false
}

// CopyPropertiesFrom propagates security, timestamp and trust from
// matching records in other (an allowed list) onto this list's
// entries, matched by essid. It is the device-seen list that calls
// this with the allowed list as other.
func (l *APList) CopyPropertiesFrom(other *APList) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, bssid := range l.order {
		ap := l.byAddr[bssid]
		if ap.Essid == "" {
			continue
		}
		if cfg := other.LookupByEssid(ap.Essid); cfg != nil {
			ap.Security = cfg.Security
			ap.Timestamp = cfg.Timestamp
			ap.Flags.Trusted = cfg.Flags.Trusted
			ap.Flags.HasManufacturerDefaultEssid = cfg.Flags.HasManufacturerDefaultEssid
		}
	}
}

// CopyOneEssidByAddress implements hidden-essid recovery (spec 4.2):
// when ap has no essid, look it up by bssid in other and, if found,
// adopt that record's essid.
func CopyOneEssidByAddress(ap *AccessPoint, other *APList) {
	if ap == nil || ap.Essid != "" {
		return
	}
	if cfg := other.LookupByBSSID(ap.BSSID); cfg != nil {
		ap.Essid = cfg.Essid
	}
}

// AgeOut removes every AP whose LastSeen is older than maxAge relative
// to now, except the one (if any) whose bssid equals keepBSSID -- the
// AP the device is currently associated with. It returns the removed
// APs so the caller can emit disappearance signals for them.
func (l *APList) AgeOut(now time.Time, maxAge time.Duration, keepBSSID string) []*AccessPoint {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed []*AccessPoint
	for _, bssid := range append([]string(nil), l.order...) {
		if bssid == keepBSSID {
			continue
		}
		ap := l.byAddr[bssid]
		if now.Sub(ap.LastSeen) > maxAge {
			removed = append(removed, ap)
			l.removeLocked(bssid)
		}
	}
	return removed
}
