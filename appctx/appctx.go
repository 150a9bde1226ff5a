/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

// Package appctx defines the ApplicationContext shared by every device
// engine, and the abstract collaborator interfaces the core consumes
// but does not implement: the IPC bus, the configured-network store,
// the hotplug enumerator, the supplicant, and the key-prompt UI. None
// of those live in this module; a real daemon wires in its own.
package appctx

import (
	"context"
	"sync"

	"github.com/tevino/abool"
	"go.uber.org/zap"

	"nwmgr/ap_common/aplist"
)

// NetworkStatus is the status carried by a WirelessNetworkChange
// event.
type NetworkStatus int

// NetworkStatus values, per spec 6.
const (
	StatusAppeared NetworkStatus = iota
	StatusDisappeared
	StatusStrengthChanged
)

// Device is the minimal shape appctx needs from a device engine to
// keep a registry of them; the device package supplies the real
// implementation. Kept minimal to avoid an import cycle between
// appctx and device.
type Device interface {
	Iface() string
}

// Bus is the external IPC/object-cache collaborator. The core never
// speaks a wire protocol itself; it just calls these when something
// externally observable happens.
type Bus interface {
	WirelessNetworkChange(device, bssid string, status NetworkStatus, strength int)
	DeviceStrengthChange(device string, percent int)
	NeedUserKey(device, essid string)
}

// ConfiguredNetworkStore is the collaborator owning the operator's
// durable network configuration: allowed APs, their security
// descriptors, and trust.
type ConfiguredNetworkStore interface {
	// Security looks up the credential blob configured for essid, if
	// any.
	Security(essid string) *aplist.Security
}

// HotplugEnumerator is the collaborator that tells the core about
// interface arrival/removal; the core never scans sysfs/netlink for
// new hardware itself.
type HotplugEnumerator interface {
	Devices() []string
}

// Supplicant is the WPA/WPA2 handshake collaborator; the wireless
// engine hands it a security descriptor before setting the essid.
type Supplicant interface {
	Configure(iface string, sec *aplist.Security) error
	Stop(iface string) error
}

// KeyPrompt is the external UI collaborator for NeedUserKey.
type KeyPrompt interface {
	PromptForKey(device, essid string) (string, bool)
}

// ApplicationContext is the explicit, threaded-through dependency
// every device engine shares: the allowed and invalid AP lists, the
// device registry, the main scheduling context, and the global
// wireless-enabled/asleep flags. It is never a singleton -- callers
// construct one and pass it to every device factory.
type ApplicationContext struct {
	Log *zap.SugaredLogger

	// MainCtx is cancelled when the program is shutting down; every
	// main-context task (scan scheduling, scan-result handling)
	// derives its own context from this one.
	MainCtx context.Context

	Bus        Bus
	ConfigStore ConfiguredNetworkStore
	Supplicant Supplicant
	KeyPrompt  KeyPrompt

	Allowed *aplist.APList
	Invalid *aplist.APList

	WirelessEnabled *abool.AtomicBool
	Asleep          *abool.AtomicBool

	mu      sync.Mutex
	devices map[string]Device
}

// New constructs an ApplicationContext with empty allowed/invalid
// lists and wireless enabled by default.
func New(ctx context.Context, log *zap.SugaredLogger) *ApplicationContext {
	return &ApplicationContext{
		Log:             log,
		MainCtx:         ctx,
		Allowed:         aplist.New(aplist.AllowedConfigured),
		Invalid:         aplist.New(aplist.DeviceSeen),
		WirelessEnabled: abool.NewBool(true),
		Asleep:          abool.NewBool(false),
		devices:         make(map[string]Device),
	}
}

// RegisterDevice adds d to the device registry, keyed by its
// interface name.
func (a *ApplicationContext) RegisterDevice(d Device) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.devices[d.Iface()] = d
}

// UnregisterDevice removes the device with the given interface name.
func (a *ApplicationContext) UnregisterDevice(iface string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.devices, iface)
}

// Device returns the registered device for iface, if any.
func (a *ApplicationContext) Device(iface string) (Device, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.devices[iface]
	return d, ok
}

// Devices returns a snapshot of every registered device.
func (a *ApplicationContext) Devices() []Device {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Device, 0, len(a.devices))
	for _, d := range a.devices {
		out = append(out, d)
	}
	return out
}
