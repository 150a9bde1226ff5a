/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 *
 */

// Package wificaps provides information about the WiFi capabilities of a
// system's devices, read through the legacy Wireless Extensions ioctl
// interface rather than nl80211.
package wificaps

import (
	"fmt"
	"strconv"
	"strings"

	"nwmgr/ap_common/wext"
	"nwmgr/common/wifi"
)

// ChannelLists is the classification by band and width of 802.11 channels.
// String uses the 20MHz lists to show which of them a device supports.
var ChannelLists = map[string][]int{
	"loBand20MHz":     {1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	"loBandNoOverlap": {1, 6, 11},
	"hiBand20MHz": {36, 40, 44, 48, 52, 56, 60, 64, 100, 104, 108, 112, 116,
		120, 124, 128, 132, 136, 140, 144, 149, 153, 157, 161, 165},
}

// WifiCapabilities represents the attributes of a wireless device which
// are useful to the network manager. HTCapabilities and VHTCapabilities
// are retained for callers that inspect them, but Wireless Extensions
// has no way to report 802.11n/ac feature bits (that lives in nl80211),
// so both always come back empty; see GetCapabilities.
type WifiCapabilities struct {
	SupportVLANs    bool            // does the nic support VLANs?
	Interfaces      int             // number of APs it can support
	Channels        map[int]bool    // channels the device claims to support
	WifiBands       map[string]bool // frequency bands it supports
	WifiModes       map[string]bool // 802.11[a,b,g] modes supported
	HTCapabilities  map[int]bool    // always empty; see type doc
	VHTCapabilities map[int]bool    // always empty; see type doc
}

func buildChannelString(all []int, found map[int]bool) string {
	list := make([]string, 0)

	for _, candidate := range all {
		if found[candidate] {
			list = append(list, strconv.Itoa(candidate))
		}
	}

	return strings.Join(list, ",")
}

// String implements the Stringer interface for WifiCapabilities objects.
func (w *WifiCapabilities) String() string {
	allModes := []string{"a", "g"}
	modes := make([]string, 0)
	for _, mode := range allModes {
		if w.WifiModes[mode] {
			modes = append(modes, mode)
		}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("   Supported modes: %s\n", strings.Join(modes, "/")))
	b.WriteString(fmt.Sprintf("   Supported interfaces: %d\n", w.Interfaces))
	b.WriteString(fmt.Sprintf("   VLAN support: %v\n", w.SupportVLANs))

	b.WriteString(fmt.Sprintf("   2.4GHz Band:\n"))
	b.WriteString(fmt.Sprintf("      20MHz: %s\n",
		buildChannelString(ChannelLists["loBand20MHz"], w.Channels)))

	b.WriteString(fmt.Sprintf("   5GHz Band:\n"))
	b.WriteString(fmt.Sprintf("      20MHz: %s\n",
		buildChannelString(ChannelLists["hiBand20MHz"], w.Channels)))

	return b.String()
}

// freqToChannel converts a frequency in Hz, as reported by
// SIOCGIWRANGE's frequency table, into an 802.11 channel number. It is
// the inverse of the mapping device.channelToFrequency uses when
// picking an adhoc channel.
func freqToChannel(freqHz float64) int {
	mhz := freqHz / 1e6
	switch {
	case mhz == 2484:
		return 14
	case mhz >= 2412 && mhz <= 2484:
		return int((mhz-2407)/5 + 0.5)
	case mhz >= 4900:
		return int((mhz-5000)/5 + 0.5)
	}
	return 0
}

// classify populates Channels, WifiBands and WifiModes from the card's
// supported-frequency table.
func classify(w *WifiCapabilities, freqs []float64) {
	w.Channels = make(map[int]bool)
	w.WifiBands = make(map[string]bool)
	w.WifiModes = make(map[string]bool)

	for _, f := range freqs {
		ch := freqToChannel(f)
		if ch == 0 {
			continue
		}
		w.Channels[ch] = true

		mhz := f / 1e6
		if mhz <= 2484 {
			w.WifiBands[wifi.LoBand] = true
		} else {
			w.WifiBands[wifi.HiBand] = true
		}
	}

	if w.WifiBands[wifi.LoBand] {
		w.WifiModes["g"] = true
	}
	if w.WifiBands[wifi.HiBand] {
		w.WifiModes["a"] = true
	}
}

// GetCapabilities takes the name of a wireless device (typically
// "wlanX") and returns a pointer to the WifiCapabilities object which
// represents it, populated from a SIOCGIWRANGE query. Unlike an
// nl80211-based query, this can't discover VLAN support, the number of
// simultaneous AP interfaces, or HT/VHT feature bits: SupportVLANs is
// left false, Interfaces is always 1, and HTCapabilities and
// VHTCapabilities are empty maps.
func GetCapabilities(gw *wext.Socket, iface string) (*WifiCapabilities, error) {
	rng, err := gw.GetRange(iface)
	if err != nil {
		return nil, fmt.Errorf("couldn't get range for %s: %v", iface, err)
	}

	w := &WifiCapabilities{
		Interfaces:      1,
		HTCapabilities:  make(map[int]bool),
		VHTCapabilities: make(map[int]bool),
	}
	classify(w, rng.Frequencies)

	return w, nil
}
