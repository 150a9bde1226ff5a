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
	"strings"

	"nwmgr/ap_common/wext"
	"nwmgr/appctx"
)

// wiredState is the wired variant's private state: nothing more than
// whether carrier detection is usable on this interface, and the
// ioctl gateway used to probe it.
type wiredState struct {
	gw            *wext.Socket
	hasCarrierDet bool
}

// NewWired constructs a wired-variant device. isUSBEthernet comes from
// the hotplug/hardware-database collaborator (its
// usb.interface.class property); interfaces with "cipsec" in their
// name or that are USB ethernet adapters have no usable carrier
// detection and are always reported linked.
func NewWired(app *appctx.ApplicationContext, iface, hwaddr string, gw *wext.Socket, isUSBEthernet bool) *Device {
	d := newBase(app, iface, hwaddr, KindWired)

	unsupported := strings.Contains(iface, "cipsec") || isUSBEthernet
	d.wired = &wiredState{gw: gw, hasCarrierDet: !unsupported}
	d.caps = Capabilities{HasCarrierDet: !unsupported}
	return d
}

// probeLink implements the wired variant's link-probe hook: ethtool
// GLINK, MII BMSR, then sysfs carrier, via wext.Socket.ProbeCarrier.
// Devices without usable carrier detection are always reported as
// linked, on the assumption the operator configured them knowingly;
// an I/O error probing a device that does claim carrier detection is
// treated the same way, since a probe failure is not evidence of "no
// link".
func (w *wiredState) probeLink(d *Device) bool {
	if !w.hasCarrierDet {
		return true
	}
	up, err := w.gw.ProbeCarrier(d.iface)
	if err != nil {
		return true
	}
	return up
}
