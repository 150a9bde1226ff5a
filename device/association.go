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
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/tevino/abool"

	"nwmgr/ap_common/aplist"
	"nwmgr/ap_common/wext"
	"nwmgr/common/wifi"
	"nwmgr/common/zaperr"
)

// requiredTries is how many consecutive stable polls wait_for_link
// demands before declaring the link up.
const requiredTries = 10

// freqEpsilon is the tolerance used when comparing the kernel's
// reported frequency (a float) against the target, since the kernel's
// (mantissa, exponent) encoding can round-trip with tiny error.
const freqEpsilon = 1.0

// adhocFallbackBitrate is what adhoc cards get forced to when they
// come back from configuration reporting a zero bitrate.
const adhocFallbackBitrate = 11_000_000

// postEssidSettle tolerates the firmware reset some chipsets perform
// immediately after an essid change.
const postEssidSettle = 2 * time.Second

// ErrNeedUserKey is returned by Activate when an infrastructure AP is
// encrypted but its security descriptor carries no key; Activate has
// already raised NeedUserKey on the bus when it returns this.
var ErrNeedUserKey = errors.New("device: security descriptor has no key")

// ErrLinkTimeout is returned by Activate when wait_for_link never saw
// a stable association.
var ErrLinkTimeout = errors.New("device: timed out waiting for link")

// ErrCancelled is returned by Activate when shouldCancel fired mid-poll.
var ErrCancelled = errors.New("device: activation cancelled")

// startActivation installs req as the device's activation target and
// runs the attempt in its own goroutine, since Activate blocks for
// several seconds inside waitForLink and must not stall the scan
// loop's cycle timing. A request chosen while a previous attempt is
// still in flight cancels that attempt via its actCancel flag before
// the new one starts. startActivation is called both from the scan
// loop (runSelection) and from ForceActivate, so actCancel is swapped
// under actMu.
func (d *Device) startActivation(req *ActivationRequest) {
	cancel := abool.NewBool(false)
	d.actMu.Lock()
	if d.actCancel != nil {
		d.actCancel.Set()
	}
	d.actCancel = cancel
	d.actMu.Unlock()
	d.setActReq(req)

	go func() {
		if err := d.Activate(req, cancel); err != nil {
			d.log.Warnw("activation attempt failed",
				"error", zaperr.Errorw("activate", "iface", d.iface, "essid", req.AP.Essid, "cause", err))
		}
	}()
}

// Activate drives one activation attempt to completion (or failure)
// for req, which must already be installed via setActReq (startActivation
// does this before spawning the goroutine that calls Activate). It
// dispatches on whether the target AP is a user-created adhoc cell or
// an infrastructure network, per spec 4.7.
func (d *Device) Activate(req *ActivationRequest, shouldCancel *abool.AtomicBool) error {
	w := d.wireless
	d.setActReq(req)
	d.setActivating(true)
	defer d.setActivating(false)

	ap := req.AP

	if ap.Mode == wifi.ModeAdhoc && ap.Flags.UserCreated {
		ap.Frequency = pickAdhocFrequency(w.freqs, w.seen.Iterate())
	} else if ap.Capabilities.Encrypted() && (ap.Security == nil || ap.Security.Key == "") {
		d.app.Bus.NeedUserKey(d.iface, ap.Essid)
		req.Stage = StageFailed
		return ErrNeedUserKey
	}

	req.Stage = StageConfiguring
	if err := d.setWirelessConfig(ap); err != nil {
		req.Stage = StageFailed
		return err
	}

	req.Stage = StageWaitingLink
	if err := waitForLink(w.gw, d.iface, ap, len(w.freqs), shouldCancel); err != nil {
		req.Stage = StageFailed
		d.setActivated(false)
		return err
	}

	req.Stage = StageComplete
	d.setActivated(true)
	return nil
}

// setWirelessConfig implements spec 4.7's set_wireless_config: bring
// the device down and back up, set the AP's mode (adhoc for an adhoc
// AP, infrastructure otherwise), set bitrate
// auto, set frequency (only when the AP is user-created or explicit
// adhoc), hand the security descriptor to the supplicant, then set
// the essid. A short sleep after the essid-set tolerates the firmware
// reset some chipsets perform; adhoc cards that come back at zero
// bitrate get forced to 11Mbit/s.
func (d *Device) setWirelessConfig(ap *aplist.AccessPoint) error {
	gw := d.wireless.gw

	if err := d.BringDownWait(5 * time.Second); err != nil {
		return err
	}
	if err := d.BringUpWait(5 * time.Second); err != nil {
		return err
	}

	if err := gw.SetMode(d.iface, wifiModeFromMode(ap.Mode)); err != nil {
		return errors.Wrap(err, "setWirelessConfig: SetMode")
	}
	if err := gw.SetRateAuto(d.iface); err != nil {
		return errors.Wrap(err, "setWirelessConfig: SetRateAuto")
	}

	if ap.Flags.UserCreated || ap.Mode == wifi.ModeAdhoc {
		if err := gw.SetFreq(d.iface, ap.Frequency); err != nil {
			return errors.Wrap(err, "setWirelessConfig: SetFreq")
		}
	}

	if d.app.Supplicant != nil {
		if err := d.app.Supplicant.Configure(d.iface, ap.Security); err != nil {
			return errors.Wrap(err, "setWirelessConfig: supplicant")
		}
	}

	if err := gw.SetEssid(d.iface, ap.Essid); err != nil {
		return errors.Wrap(err, "setWirelessConfig: SetEssid")
	}
	time.Sleep(postEssidSettle)

	if ap.Mode == wifi.ModeAdhoc {
		if rate, err := gw.GetRate(d.iface); err == nil && rate == 0 {
			_ = gw.SetRate(d.iface, adhocFallbackBitrate)
		}
	}
	return nil
}

// pickAdhocFrequency implements the adhoc-creation channel pick: the
// card's frequency table minus whatever's already in use in the scan
// list, preferring a free 802.11b-range channel (1-14); if none is
// free, a pseudo-random channel from that range is chosen instead.
func pickAdhocFrequency(cardFreqs []float64, scanned []*aplist.AccessPoint) float64 {
	inUse := make(map[float64]bool, len(scanned))
	for _, ap := range scanned {
		inUse[ap.Frequency] = true
	}

	onCard := make(map[float64]bool, len(cardFreqs))
	for _, f := range cardFreqs {
		onCard[f] = true
	}

	bFreqs := bChannelFrequencies()
	for _, f := range bFreqs {
		if onCard[f] && !inUse[f] {
			return f
		}
	}
	return bFreqs[rand.Intn(len(bFreqs))]
}

// bChannelFrequencies maps wifi.BChannels to their 2.4GHz center
// frequencies in Hz.
func bChannelFrequencies() []float64 {
	out := make([]float64, len(wifi.BChannels))
	for i, ch := range wifi.BChannels {
		out[i] = channelToFrequency(ch)
	}
	return out
}

func channelToFrequency(channel int) float64 {
	if channel == 14 {
		return 2484000000
	}
	return 2407000000 + float64(channel)*5000000
}

// waitForLink implements spec 4.7's wait_for_link: poll for up to
// getAssociationPauseValue(numFreqs) seconds, declaring success once
// essid and frequency have held stable and is_associated returns true
// for requiredTries consecutive polls.
func waitForLink(gw *wext.Socket, iface string, ap *aplist.AccessPoint, numFreqs int, shouldCancel *abool.AtomicBool) error {
	deadline := time.Now().Add(time.Duration(getAssociationPauseValue(numFreqs)) * time.Second)
	stable := 0

	for time.Now().Before(deadline) {
		if shouldCancel != nil && shouldCancel.IsSet() {
			return ErrCancelled
		}

		essid, err := gw.GetEssid(iface)
		freq, ferr := gw.GetFreq(iface)
		ok := err == nil && ferr == nil &&
			essid == ap.Essid &&
			math.Abs(freq-ap.Frequency) < freqEpsilon &&
			isAssociated(gw, iface)

		if ok {
			stable++
			if stable >= requiredTries {
				return nil
			}
		} else {
			stable = 0
		}
		time.Sleep(250 * time.Millisecond)
	}
	return ErrLinkTimeout
}

// getAssociationPauseValue returns the wait_for_link budget in
// seconds: 8 for cards with more than 14 supported frequencies
// (A/B/G cards needing long dwell times), else 5, floored so that
// requiredTries polls at the loop's cadence can actually complete.
func getAssociationPauseValue(numFreqs int) int {
	v := 5
	if numFreqs > 14 {
		v = 8
	}
	floor := 2 * 30 / requiredTries
	if v < floor {
		v = floor
	}
	return v
}

// isAssociated implements spec 4.7's is_associated: the fast-path
// short-circuit some drivers support (the protocol name reading the
// literal "unassociated"), falling back to reading the AP address and
// checking it against the validity rules (not all-zero, not
// all-ones, not multicast).
func isAssociated(gw *wext.Socket, iface string) bool {
	if name, err := gw.GetName(iface); err == nil && name == "unassociated" {
		return false
	}
	addr, err := gw.GetAPAddr(iface)
	if err != nil {
		return false
	}
	return wext.IsValidMAC(addr)
}
