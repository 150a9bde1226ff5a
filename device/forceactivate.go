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
	"time"

	"github.com/pkg/errors"

	"nwmgr/ap_common/aplist"
)

// artificialBSSID is the placeholder address a force-activate fake AP
// carries until a real scan sighting resolves it (aplist.ResolveArtificial).
const artificialBSSID = "00:00:00:00:00:00"

// ErrForceActivateUnknown is returned by ForceActivate when essid
// names an AP this device has never sighted or been configured with,
// and no security descriptor was given to anchor a placeholder.
var ErrForceActivateUnknown = errors.New("device: force-activate essid unknown and no security given")

// ForceActivate implements spec 6's force-activate inbound: the
// operator names an essid directly, bypassing the selection policy. A
// known essid (already sighted, or present in the allowed list) is
// activated as named, optionally overriding its security descriptor
// with sec. An essid this device has never seen is rejected unless
// sec is supplied, in which case a synthetic placeholder AP is
// inserted into the device's seen list, flagged Artificial with a
// zeroed bssid; a later scan sighting of the same essid resolves it
// (see aplist.APList.ResolveArtificial) once the card actually
// observes the network.
func (d *Device) ForceActivate(essid string, sec *aplist.Security) error {
	w := d.wireless
	if w == nil {
		return errors.New("device: force-activate is wireless-only")
	}

	ap := w.seen.LookupByEssid(essid)
	if ap == nil {
		ap = d.app.Allowed.LookupByEssid(essid)
	}
	if ap == nil {
		if sec == nil {
			return ErrForceActivateUnknown
		}
		ap = aplist.New(artificialBSSID)
		ap.Essid = essid
		ap.Flags.Artificial = true
		ap.LastSeen = time.Now()
		w.seen.Append(ap)
	}
	if sec != nil {
		ap.Security = sec
	}

	d.startActivation(NewActivationRequest(d.app, ap, true))
	return nil
}
