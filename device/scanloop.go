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
	"time"

	"nwmgr/ap_common/aplist"
	"nwmgr/ap_common/selection"
	"nwmgr/ap_common/wext"
	"nwmgr/appctx"
	"nwmgr/common/wifi"
	"nwmgr/common/zaperr"
)

// scanState names the per-cycle state machine (spec 4.6); only
// stateScanning holds the scan mutex.
type scanState int

// States a scan cycle passes through.
const (
	stateIdle scanState = iota
	stateScanning
	stateProcessing
	stateWaiting
)

// bringUpCycleTimeout bounds how long a scan cycle waits for the
// interface to come up before giving up on this cycle.
const bringUpCycleTimeout = 2 * time.Second

// postTriggerPause is the brief pause between issuing the scan
// trigger and reading results back.
const postTriggerPause = 250 * time.Millisecond

// RunScanLoop drives the device's scan/age/select/associate cycle
// until ctx is cancelled. It is meant to run as the device's single
// dedicated worker goroutine; it is the only caller of runScanCycle,
// which does the actual ioctl work, and it schedules the next cycle
// unconditionally, even after a failed one.
func (d *Device) RunScanLoop(ctx context.Context) {
	w := d.wireless
	fallback := time.NewTimer(scanIntervalFallback)
	defer fallback.Stop()
	applied := w.getInterval()

	for {
		iv := d.runScanCycle(ctx)
		w.setInterval(iv)

		// Re-arm the fallback only when a different interval is applied,
		// so one left unchanged for scanIntervalFallback is pre-empted.
		if iv != applied {
			if !fallback.Stop() {
				select {
				case <-fallback.C:
				default:
				}
			}
			fallback.Reset(scanIntervalFallback)
			applied = iv
		}

		timer := time.NewTimer(iv)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		case <-fallback.C:
			// 120s global pre-emption: force back to inactive
			// regardless of what the cycle just requested.
			w.setInterval(scanIntervalInactive)
		}
	}
}

// RunStrengthLoop drives the periodic per-device signal-strength
// sampler until ctx is cancelled. It runs as its own goroutine,
// independent of RunScanLoop: since pollStrength only try-acquires the
// scan lock (5), it never blocks on a scan in progress, so it doesn't
// need to share a cycle with one.
func (d *Device) RunStrengthLoop(ctx context.Context) {
	if d.wireless == nil {
		return
	}
	ticker := time.NewTicker(strengthPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.pollStrength()
		}
	}
}

// pollStrength implements the strength-updater half of spec 5's
// mutual-exclusion rule: a try-acquire of the scan lock that, on
// contention, returns immediately rather than delaying the next scan
// cycle. A successful acquire reads SIOCGIWSTATS, folds it through the
// sticky-strength logic in updateStrength, and emits
// device-strength-change (6) only when the externally visible value
// actually moved.
func (d *Device) pollStrength() {
	w := d.wireless
	if !w.tryLockScan() {
		return
	}
	defer w.unlockScan()

	before := d.Strength()

	sample := -1
	if q, err := w.gw.GetStats(d.iface); err == nil {
		sample = int(normalizeStrength(q, w.maxQual, w.avgQual))
	}
	w.updateStrength(sample)

	if after := d.Strength(); after != before {
		d.app.Bus.DeviceStrengthChange(d.iface, int(after))
	}
}

// runScanCycle runs exactly one pass of spec 4.6's per-scan algorithm
// and returns the interval to apply for the next cycle.
func (d *Device) runScanCycle(ctx context.Context) time.Duration {
	w := d.wireless
	app := d.app

	if !app.WirelessEnabled.IsSet() || app.Asleep.IsSet() || d.IsActivating() {
		return scanIntervalInit
	}

	if len(w.freqs) > 14 && d.IsActivated() {
		return scanIntervalActive
	}

	if err := d.BringUpWait(bringUpCycleTimeout); err != nil {
		return w.getInterval()
	}

	buf, weVersion := d.scan()
	if buf != nil {
		d.handleScanResults(buf, weVersion)
	}

	return w.getInterval()
}

// scan performs the mutex-held portion of the cycle: remember adhoc
// state, force infra/auto-frequency, trigger and read back a scan,
// then restore whatever mode the device was actually in.
func (d *Device) scan() ([]byte, uint8) {
	w := d.wireless

	w.lockScan()
	defer w.unlockScan()

	mode, err := w.gw.GetMode(d.iface)
	if err != nil {
		return nil, w.weVersion
	}

	var savedFreq float64
	var savedRate int32
	wasAdhoc := mode == wext.IWModeAdhoc
	if wasAdhoc {
		savedFreq, _ = w.gw.GetFreq(d.iface)
		savedRate, _ = w.gw.GetRate(d.iface)
	}

	_ = w.gw.SetMode(d.iface, wext.IWModeInfra)
	_ = w.gw.SetFreq(d.iface, 0)

	if err := w.gw.TriggerScan(d.iface); err != nil {
		d.logScanFailure("trigger scan failed", err)
		d.restoreMode(wasAdhoc, savedFreq, savedRate)
		return nil, w.weVersion
	}
	time.Sleep(postTriggerPause)

	buf, err := w.gw.GetScanResults(d.iface)
	d.restoreMode(wasAdhoc, savedFreq, savedRate)
	if err != nil {
		d.logScanFailure("read scan results failed", err)
		return nil, w.weVersion
	}
	return buf, w.weVersion
}

// logScanFailure logs a scan-cycle ioctl failure with structured
// context, but only while the pace tracker allows it; a card stuck
// failing every cycle gets one burst of log lines, then silence until
// the rate drops below scanFailPaceLimit per scanFailPacePeriod.
func (d *Device) logScanFailure(msg string, cause error) {
	if d.wireless.scanFailPace.Tick() != nil {
		return
	}
	d.log.Warnw("scan cycle failed",
		"error", zaperr.Errorw(msg, "iface", d.iface, "cause", cause))
}

func (d *Device) restoreMode(wasAdhoc bool, freq float64, rate int32) {
	w := d.wireless
	if wasAdhoc {
		_ = w.gw.SetMode(d.iface, wext.IWModeAdhoc)
		_ = w.gw.SetFreq(d.iface, freq)
		if rate > 0 {
			_ = w.gw.SetRate(d.iface, rate)
		}
	}
}

// handleScanResults runs on the scan-loop goroutine, right after the
// scan that produced buf: decodes the buffer,
// merges sightings into the device's seen list (recovering hidden
// essids and propagating allowed-list properties), ages out stale
// entries, and triggers the selection policy.
func (d *Device) handleScanResults(buf []byte, weVersion uint8) {
	w := d.wireless
	app := d.app
	now := time.Now()

	results, _ := wext.DecodeScan(buf, weVersion)

	for _, r := range results {
		ap := aplist.New(r.BSSID)
		ap.Essid = r.ESSID
		ap.Mode = modeFromWext(r.Mode)
		ap.Frequency = r.Frequency
		ap.Strength = normalizeStrength(r.Quality, w.maxQual, w.avgQual)
		ap.LastSeen = now
		ap.Capabilities = capabilitiesFromScan(r)

		aplist.CopyOneEssidByAddress(ap, app.Allowed)
		w.seen.ResolveArtificial(ap)

		result := w.seen.MergeScanned(ap)
		merged := w.seen.LookupByBSSID(ap.BSSID)
		switch result {
		case aplist.Inserted:
			app.Bus.WirelessNetworkChange(d.iface, merged.BSSID, appctx.StatusAppeared, int(merged.Strength))
		case aplist.UpdatedStrength:
			app.Bus.WirelessNetworkChange(d.iface, merged.BSSID, appctx.StatusStrengthChanged, int(merged.Strength))
		}
	}

	w.seen.CopyPropertiesFrom(app.Allowed)

	keepBSSID := ""
	if actReq := d.ActRequest(); actReq != nil && actReq.AP != nil {
		keepBSSID = actReq.AP.BSSID
	}
	for _, removed := range w.seen.AgeOut(now, apAgeLimit, keepBSSID) {
		app.Bus.WirelessNetworkChange(d.iface, removed.BSSID, appctx.StatusDisappeared, -1)
	}

	d.runSelection()
}

// runSelection invokes the selection policy and, when it picks an AP
// other than the one currently targeted, hands the choice to
// startActivation, which spawns the actual association attempt on its
// own goroutine so this scan-loop goroutine's cycle timing is never
// blocked by Activate's multi-second poll.
func (d *Device) runSelection() {
	w := d.wireless
	app := d.app

	var current *aplist.AccessPoint
	var userRequested bool
	if req := d.ActRequest(); req != nil {
		current = req.AP
		userRequested = req.UserRequested
	}

	chosen := selection.Select(selection.Input{
		ScanList:             w.seen,
		Allowed:              app.Allowed,
		Invalid:              app.Invalid,
		Current:              current,
		CurrentUserRequested: userRequested,
		HasScanCapability:    d.caps.CanScan,
		HasActiveLink:        d.HasActiveLink,
	})

	if chosen == nil || chosen == current {
		return
	}
	d.startActivation(NewActivationRequest(app, chosen, userRequested))
}

func modeFromWext(m int) string {
	if m == wext.IWModeAdhoc {
		return wifi.ModeAdhoc
	}
	return wifi.ModeInfra
}

func normalizeStrength(q, maxQ, avgQ wext.Quality) int8 {
	p := wext.QualityToPercent(q, maxQ, avgQ)
	if p < -1 {
		p = -1
	}
	if p > 100 {
		p = 100
	}
	return int8(p)
}

func capabilitiesFromScan(r wext.ScanResult) aplist.Capability {
	var c aplist.Capability
	if r.Encrypted {
		c |= aplist.CapWEP
	}
	if len(r.WPAIE) > 0 {
		c |= aplist.CapWPA
	}
	if len(r.RSNIE) > 0 {
		c |= aplist.CapRSN
	}
	return c
}
