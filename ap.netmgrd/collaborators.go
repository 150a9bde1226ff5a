/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

package main

import (
	"net"

	"go.uber.org/zap"

	"nwmgr/ap_common/aplist"
	"nwmgr/appctx"
)

// The IPC bus, configured-network store, hotplug enumerator, WPA
// supplicant and key-prompt UI are all named in the core's
// specification as external collaborators reached only through the
// abstract interfaces in package appctx. This daemon doesn't speak
// any of their real wire protocols; it logs what it would have sent
// or asked for, which is enough to exercise every interface the core
// calls through.

// logBus is a Bus that reports every event through the daemon's
// logger instead of a real IPC connection.
type logBus struct {
	log *zap.SugaredLogger
}

func (b *logBus) WirelessNetworkChange(device, bssid string, status appctx.NetworkStatus, strength int) {
	b.log.Infow("wireless-network-change", "device", device, "bssid", bssid,
		"status", status, "strength", strength)
}

func (b *logBus) DeviceStrengthChange(device string, percent int) {
	b.log.Infow("device-strength-change", "device", device, "percent", percent)
}

func (b *logBus) NeedUserKey(device, essid string) {
	b.log.Warnw("need-user-key", "device", device, "essid", essid)
}

// staticConfigStore is a ConfiguredNetworkStore with no backing
// store; every lookup misses, which is the correct behavior until a
// real configured-network collaborator is wired in.
type staticConfigStore struct{}

func (staticConfigStore) Security(essid string) *aplist.Security { return nil }

// netInterfaceEnumerator discovers wireless-capable interfaces from
// the kernel's interface list directly, standing in for the hotplug
// collaborator's hardware database.
type netInterfaceEnumerator struct{}

func (netInterfaceEnumerator) Devices() []string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(ifaces))
	for _, i := range ifaces {
		if i.Flags&net.FlagLoopback != 0 {
			continue
		}
		names = append(names, i.Name)
	}
	return names
}

// noopSupplicant satisfies appctx.Supplicant without driving a real
// wpa_supplicant control socket.
type noopSupplicant struct {
	log *zap.SugaredLogger
}

func (s *noopSupplicant) Configure(iface string, sec *aplist.Security) error {
	s.log.Debugw("supplicant configure", "iface", iface)
	return nil
}

func (s *noopSupplicant) Stop(iface string) error {
	s.log.Debugw("supplicant stop", "iface", iface)
	return nil
}

// logKeyPrompt reports NeedUserKey events but never has a key to
// offer; a real frontend would connect this to an operator prompt.
type logKeyPrompt struct {
	log *zap.SugaredLogger
}

func (k *logKeyPrompt) PromptForKey(device, essid string) (string, bool) {
	k.log.Warnw("no key-prompt UI wired in", "device", device, "essid", essid)
	return "", false
}
