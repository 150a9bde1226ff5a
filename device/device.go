/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

// Package device implements the device base and its two variants
// (wired and wireless): shared activation lifecycle, capability
// flags, and dispatch to variant-specific hooks. A tagged Kind field
// selects the variant at each call site rather than a virtual-table
// hierarchy, per the recommendation that a small, closed set of
// variants is better served by static dispatch.
package device

import (
	"sync"
	"time"

	"github.com/tevino/abool"
	"go.uber.org/zap"

	"nwmgr/appctx"
)

// Kind tags which variant a Device was constructed as.
type Kind int

// The two device variants this core supports.
const (
	KindWired Kind = iota
	KindWireless
)

// Capabilities is the capability set §9 assigns to every variant: the
// base discovers the generic ones, the variant contributes the rest.
type Capabilities struct {
	CanScan       bool
	HasCarrierDet bool
	NumFreqs      int
	WEVersion     uint8
	WifiBands     map[string]bool // populated for wireless variants via wificaps
}

// Device is the shared base for both variants. The identity fields
// and caps are set once at construction; mutable runtime state lives
// behind the unexported wired/wireless blocks and the activating/
// activated flags, all safe for concurrent access.
type Device struct {
	iface  string
	hwaddr string
	kind   Kind
	app    *appctx.ApplicationContext
	log    *zap.SugaredLogger

	caps Capabilities

	activating *abool.AtomicBool
	activated  *abool.AtomicBool

	actMu     sync.Mutex
	actReq    *ActivationRequest
	actCancel *abool.AtomicBool // signals the in-flight Activate goroutine, if any, to give up

	wired    *wiredState
	wireless *wirelessState
}

// Iface satisfies appctx.Device.
func (d *Device) Iface() string { return d.iface }

// HwAddr returns the device's hardware address.
func (d *Device) HwAddr() string { return d.hwaddr }

// Kind returns the variant tag.
func (d *Device) Kind() Kind { return d.kind }

// Capabilities returns the device's discovered capability set.
func (d *Device) Capabilities() Capabilities { return d.caps }

// AppData returns the shared application context.
func (d *Device) AppData() *appctx.ApplicationContext { return d.app }

// ActRequest returns the in-flight activation request, or nil.
func (d *Device) ActRequest() *ActivationRequest {
	d.actMu.Lock()
	defer d.actMu.Unlock()
	return d.actReq
}

// setActReq installs req as the device's activation target. It is the
// only direct writer of actReq; every reader goes through ActRequest.
func (d *Device) setActReq(req *ActivationRequest) {
	d.actMu.Lock()
	d.actReq = req
	d.actMu.Unlock()
}

// IsActivating reports whether an activation attempt is in progress.
func (d *Device) IsActivating() bool { return d.activating.IsSet() }

// IsActivated reports whether the device is currently associated
// (wireless) or carrying a link (wired) as the result of a completed
// activation.
func (d *Device) IsActivated() bool { return d.activated.IsSet() }

// HasActiveLink dispatches to the variant's link probe. It is the
// only base operation that branches on Kind.
func (d *Device) HasActiveLink() bool {
	switch d.kind {
	case KindWired:
		return d.wired.probeLink(d)
	case KindWireless:
		return d.wireless.probeLink(d)
	default:
		return false
	}
}

// ProbeLink is an alias for HasActiveLink kept for symmetry with the
// variant hook names in §4.9.
func (d *Device) ProbeLink() bool { return d.HasActiveLink() }

// BringUpWait brings the interface up, waiting up to timeout for the
// kernel to reflect it.
func (d *Device) BringUpWait(timeout time.Duration) error {
	return bringUpWait(d.iface, timeout)
}

// BringDownWait brings the interface down, waiting up to timeout.
func (d *Device) BringDownWait(timeout time.Duration) error {
	return bringDownWait(d.iface, timeout)
}

// setActivating/setActivated are the only writers of the two lifecycle
// flags; every reader goes through IsActivating/IsActivated.
func (d *Device) setActivating(v bool) {
	if v {
		d.activating.Set()
	} else {
		d.activating.UnSet()
	}
}

func (d *Device) setActivated(v bool) {
	if v {
		d.activated.Set()
	} else {
		d.activated.UnSet()
	}
}

func newBase(app *appctx.ApplicationContext, iface, hwaddr string, kind Kind) *Device {
	return &Device{
		iface:      iface,
		hwaddr:     hwaddr,
		kind:       kind,
		app:        app,
		log:        app.Log,
		activating: abool.NewBool(false),
		activated:  abool.NewBool(false),
		actCancel:  abool.NewBool(false),
	}
}
