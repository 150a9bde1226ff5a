/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

// Package wext speaks the Linux Wireless Extension ioctl protocol: the
// legacy SIOCxIW* ioctls that every WE-capable driver still answers,
// the scan-result event stream they return, and the ethtool/MII ioctls
// used to probe a wired link. golang.org/x/sys/unix doesn't carry these
// (they're outside its generated syscall tables), so the numbers below
// are the well-known, ABI-stable values from <linux/wireless.h>,
// <linux/ethtool.h> and <linux/mii.h>.
package wext

// SIOCxIW ioctl request codes (linux/wireless.h). Only the ones this
// package actually issues are listed; the rest of the WE surface
// (power management, spy lists, private ioctls) has no caller here.
const (
	SIOCSIWCOMMIT = 0x8B00
	SIOCGIWNAME   = 0x8B01
	SIOCSIWFREQ   = 0x8B04
	SIOCGIWFREQ   = 0x8B05
	SIOCSIWMODE   = 0x8B06
	SIOCGIWMODE   = 0x8B07
	SIOCGIWRANGE  = 0x8B0B
	SIOCSIWAP     = 0x8B14
	SIOCGIWAP     = 0x8B15
	SIOCSIWSCAN   = 0x8B18
	SIOCGIWSCAN   = 0x8B19
	SIOCSIWESSID  = 0x8B1A
	SIOCGIWESSID  = 0x8B1B
	SIOCSIWRATE   = 0x8B20
	SIOCGIWRATE   = 0x8B21
	SIOCSIWENCODE = 0x8B2A
	SIOCGIWENCODE = 0x8B2B
	SIOCGIWSTATS  = 0x8B0F
)

// Scan event codes. These ride inside the iw_event stream returned by
// SIOCGIWSCAN and double as the discriminator the decoder switches on.
const (
	IWEVQUAL   = 0x8C01
	IWEVCUSTOM = 0x8C02
	IWEVGENIE  = 0x8C05
)

// Association modes, as reported/set via SIOCxIWMODE.
const (
	IWModeAuto    = 0
	IWModeAdhoc   = 1
	IWModeInfra   = 2
	IWModeMaster  = 3
	IWModeRepeat  = 4
	IWModeSecond  = 5
	IWModeMonitor = 6
)

// iw_quality.updated flag bits: the driver sets these when it couldn't
// fill in the corresponding field.
const (
	IWQualQualInvalid  = 0x10
	IWQualLevelInvalid = 0x20
	IWQualNoiseInvalid = 0x40
)

// IWEncodeDisabled is set in iw_point.flags for SIOCGIWENCODE when the
// card has no key configured at all (as opposed to merely not sending
// one in this event).
const IWEncodeDisabled = 0x8000

// IWESSIDMaxSize is the largest ESSID the wire format allows.
const IWESSIDMaxSize = 32

// weVersionShortHeader is the compiled wireless-extension version at
// and above which "point" events (ESSID, encode, generic-IE, custom)
// drop the now-meaningless kernel pointer from the wire format, per
// WE-19's iwe_stream_add_event() change.
const weVersionShortHeader = 19

// Event header layout. Every iw_event on the wire starts with a 16-bit
// length and a 16-bit command, padded out to the union's natural
// alignment (8 bytes on a 64-bit kernel). "Point" events (those whose
// payload is a struct iw_point: a pointer, a length and a flags word)
// additionally carry a length/flags pair immediately before the
// payload; pre-WE-19 that pair is preceded by the dead pointer field,
// post-WE-19 it is not. These constants reconstruct that layout.
const (
	eventHeaderLen      = 8  // len(2) + cmd(2) + alignment pad(4)
	pointHeaderShort    = eventHeaderLen + 4 // WE >= 19: length(2) + flags(2)
	pointHeaderLong     = eventHeaderLen + 8 + 4 // WE < 19: dead pointer(8) + length(2) + flags(2)
)

// Ethtool / MII ioctls used by the wired carrier probe.
const (
	SIOCETHTOOL  = 0x8946
	SIOCGMIIPHY  = 0x8947
	SIOCGMIIREG  = 0x8948
	ethtoolGlink = 0x0000000a // ETHTOOL_GLINK

	// MII_BMSR is the basic mode status register; bit 2 is link status.
	miiBMSR           = 0x01
	miiBMSRLinkStatus = 0x0004
)

// WPA/RSN information-element identifiers, as carried in IWEVGENIE and
// matched textually (the "wpa_ie="/"rsn_ie=" prefix form) in IWEVCUSTOM.
const (
	ieWPAGeneric = 0xDD // vendor-specific, OUI 00:50:F2 type 1 (WPA)
	ieRSN        = 0x30

	// wpaMaxIELen bounds the hex-decoded custom-event IE buffer (spec
	// 4.3's "protocol maximum"), matching wpa_supplicant's WPA_MAX_IE_LEN.
	wpaMaxIELen = 40
)
