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
	"sync"
	"time"

	"github.com/pkg/errors"

	"nwmgr/ap_common/aplist"
	"nwmgr/ap_common/aputil"
	"nwmgr/ap_common/wext"
	"nwmgr/ap_common/wificaps"
	"nwmgr/appctx"
	"nwmgr/common/wifi"
)

// scanFailPaceLimit/scanFailPacePeriod bound how often a run of scan
// failures gets logged: once scanFailPaceLimit failures fall within
// scanFailPacePeriod, that one and the rest are suppressed until the
// rate drops, so a card stuck failing every cycle doesn't flood the log.
const (
	scanFailPaceLimit  = 3
	scanFailPacePeriod = 5 * time.Minute
)

// Scan cadence durations, per spec 4.6.
const (
	scanIntervalInit     = 15 * time.Second
	scanIntervalActive   = 20 * time.Second
	scanIntervalInactive = 120 * time.Second
	scanIntervalFallback = 120 * time.Second

	// apAgeLimit is how long an unconfirmed sighting is kept before
	// being aged out of the device-seen list.
	apAgeLimit = 180 * time.Second

	// invalidStrengthMax is how many consecutive unreadable strength
	// samples are tolerated before priv.strength actually drops, per
	// the sticky-strength testable property.
	invalidStrengthMax = 3

	// strengthPollInterval is how often the per-device strength
	// updater samples SIOCGIWSTATS (5's try-acquire strength read).
	strengthPollInterval = 5 * time.Second
)

// wirelessState is the wireless variant's private, scan-loop-owned
// state (spec 3's WirelessDevice).
type wirelessState struct {
	gw *wext.Socket

	mu sync.Mutex // guards the fields below; NOT the scan mutex

	currentEssid string
	strength     int8
	invalidCount int

	maxQual wext.Quality
	avgQual wext.Quality

	weVersion uint8
	freqs     []float64

	seen *aplist.APList

	interval time.Duration
	lastScan time.Time

	failedLinks int

	// scanSem is a 1-buffered channel standing in for the scan mutex
	// (4.6). It is held for the duration of a scan cycle via lockScan,
	// and try-acquired by the strength-updater via tryLockScan (5): a
	// poll that finds a scan in progress returns immediately rather
	// than blocking, so it never delays the next scan cycle.
	scanSem      chan struct{}
	scanFailPace *aputil.PaceTracker
}

func (w *wirelessState) lockScan() {
	<-w.scanSem
}

func (w *wirelessState) unlockScan() {
	w.scanSem <- struct{}{}
}

func (w *wirelessState) tryLockScan() bool {
	select {
	case <-w.scanSem:
		return true
	default:
		return false
	}
}

// NewWireless constructs a wireless-variant device. gw must already be
// open; range is the device's SIOCGIWRANGE result, used to seed the
// quality templates, WE version and frequency table capability.
func NewWireless(app *appctx.ApplicationContext, iface, hwaddr string, gw *wext.Socket, rng *wext.Range) *Device {
	d := newBase(app, iface, hwaddr, KindWireless)

	w := &wirelessState{
		gw:           gw,
		strength:     -1,
		seen:         aplist.New(aplist.DeviceSeen),
		interval:     scanIntervalInit,
		scanSem:      make(chan struct{}, 1),
		scanFailPace: aputil.NewPaceTracker(scanFailPaceLimit, scanFailPacePeriod),
	}
	w.scanSem <- struct{}{}
	if rng != nil {
		w.maxQual = rng.MaxQual
		w.avgQual = rng.AvgQual
		w.weVersion = rng.WEVersionCompiled
		w.freqs = rng.Frequencies
	}
	d.wireless = w
	d.caps = Capabilities{
		CanScan:   true,
		NumFreqs:  len(w.freqs),
		WEVersion: w.weVersion,
	}
	if caps, err := wificaps.GetCapabilities(gw, iface); err == nil {
		d.caps.WifiBands = caps.WifiBands
	}
	return d
}

// SeenList returns the device's scan-populated AP list.
func (d *Device) SeenList() *aplist.APList {
	if d.wireless == nil {
		return nil
	}
	return d.wireless.seen
}

// Strength returns the device's current sticky strength reading.
func (d *Device) Strength() int8 {
	d.wireless.mu.Lock()
	defer d.wireless.mu.Unlock()
	return d.wireless.strength
}

// updateStrength applies a fresh quality sample, honoring the sticky
// counter: a sample that reads as unusable (-1) is tolerated up to
// invalidStrengthMax times before priv.strength actually moves, so a
// single bad read doesn't cause a visible flap.
func (w *wirelessState) updateStrength(sample int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if sample < 0 {
		w.invalidCount++
		if w.invalidCount <= invalidStrengthMax {
			return
		}
		w.strength = -1
		return
	}
	w.invalidCount = 0
	w.strength = int8(sample)
}

// probeLink implements the wireless variant's link-probe hook: under
// the scan lock (so it doesn't race a scan's mode-switching), confirm
// the kernel's current essid matches what the activation request
// targeted and that is_associated holds.
func (w *wirelessState) probeLink(d *Device) bool {
	req := d.ActRequest()
	if req == nil || req.AP == nil {
		return false
	}
	w.lockScan()
	defer w.unlockScan()

	essid, err := w.gw.GetEssid(d.iface)
	if err != nil || essid != req.AP.Essid {
		return false
	}
	return isAssociated(w.gw, d.iface)
}

// setInterval records a new scan interval. The 120-second global
// fallback that forces a device stuck in "active" back to "inactive"
// is armed by the scan loop itself (see scanloop.go), which re-arms its
// own timer whenever a cycle applies an interval different from the
// previous one.
func (w *wirelessState) setInterval(iv time.Duration) {
	w.mu.Lock()
	w.interval = iv
	w.mu.Unlock()
}

func (w *wirelessState) getInterval() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.interval
}

// ScanIntervalKind names the three named settings set-scan-interval
// (spec 6) accepts; it is how an external caller picks a cadence
// without knowing the actual durations runScanCycle otherwise derives
// on its own.
type ScanIntervalKind int

// ScanIntervalKind values.
const (
	ScanIntervalKindInit ScanIntervalKind = iota
	ScanIntervalKindActive
	ScanIntervalKindInactive
)

// SetScanInterval implements spec 6's set-scan-interval inbound. It
// is pre-empted by the scan loop's own 120-second global fallback the
// same way a cycle-derived interval is.
func (d *Device) SetScanInterval(kind ScanIntervalKind) error {
	if d.wireless == nil {
		return errors.New("device: set-scan-interval is wireless-only")
	}
	var iv time.Duration
	switch kind {
	case ScanIntervalKindInit:
		iv = scanIntervalInit
	case ScanIntervalKindActive:
		iv = scanIntervalActive
	case ScanIntervalKindInactive:
		iv = scanIntervalInactive
	default:
		return errors.Errorf("device: unknown scan interval kind %d", kind)
	}
	d.wireless.setInterval(iv)
	return nil
}

// wifiModeFromMode maps an association Mode string to the wext ioctl
// constant.
func wifiModeFromMode(mode string) int {
	if mode == wifi.ModeAdhoc {
		return wext.IWModeAdhoc
	}
	return wext.IWModeInfra
}
