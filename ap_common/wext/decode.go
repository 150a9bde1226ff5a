/*
 * COPYRIGHT 2020 Brightgate Inc.  All rights reserved.
 *
 * This copyright notice is Copyright Management Information under 17 USC 1202
 * and is included to protect this work and deter copyright infringement.
 * Removal or alteration of this Copyright Management Information without the
 * express written permission of Brightgate Inc is prohibited, and any
 * such unauthorized removal or alteration will be a violation of federal law.
 */

package wext

import (
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// hiddenEssidMarker is the literal string some ipw-family drivers
// report as the essid payload, rather than an empty string, when the
// AP is hiding it; spec 4.3 treats both as "no essid decoded" so the
// hidden-essid recovery path runs.
const hiddenEssidMarker = "<hidden>"

// ScanResult is one access point (or ad-hoc cell) entry decoded out of
// a SIOCGIWSCAN event stream. A single cell may be described by several
// events in sequence -- address, essid, frequency, quality, IEs -- so
// the decoder accumulates fields into a ScanResult until the next
// SIOCGIWAP address event starts a new one.
type ScanResult struct {
	BSSID      string
	ESSID      string
	Mode       int
	Frequency  float64
	Quality    Quality
	Encrypted  bool
	GenericIE  []byte
	WPAIE      []byte
	RSNIE      []byte
}

// DecodeScan walks the raw iw_event stream SIOCGIWSCAN hands back and
// produces one ScanResult per cell. weVersion selects the point-event
// header layout (see weVersionShortHeader); callers get it from a
// prior GetRange call and should assume the long (pre-WE-19) header
// when it's unknown (zero).
func DecodeScan(buf []byte, weVersion uint8) ([]ScanResult, error) {
	var results []ScanResult
	var cur *ScanResult

	finish := func() {
		if cur != nil {
			results = append(results, *cur)
			cur = nil
		}
	}

	for len(buf) >= eventHeaderLen {
		evLen := int(binary.LittleEndian.Uint16(buf[0:2]))
		cmd := binary.LittleEndian.Uint16(buf[2:4])
		if evLen < eventHeaderLen || evLen > len(buf) {
			return results, errors.Errorf("wext: truncated scan event (len=%d, remaining=%d)", evLen, len(buf))
		}
		payload := buf[eventHeaderLen:evLen]

		switch cmd {
		case SIOCGIWAP:
			finish()
			cur = &ScanResult{Mode: IWModeAuto}
			if len(payload) >= 8 {
				cur.BSSID = formatMAC(payload[2:8])
			}

		case SIOCGIWMODE:
			if cur != nil && len(payload) >= 4 {
				cur.Mode = int(int32(binary.LittleEndian.Uint32(payload)))
			}

		case SIOCGIWFREQ:
			if cur != nil && len(payload) >= 8 {
				m := int32(binary.LittleEndian.Uint32(payload[0:4]))
				e := int16(binary.LittleEndian.Uint16(payload[4:6]))
				cur.Frequency = freqToFloat(m, e)
			}

		case IWEVQUAL:
			if cur != nil && len(payload) >= 4 {
				cur.Quality = Quality{
					Qual:    payload[0],
					Level:   payload[1],
					Noise:   payload[2],
					Updated: payload[3],
				}
			}

		case SIOCGIWESSID:
			essid, err := decodePointPayload(payload, weVersion)
			if err == nil && cur != nil && len(essid) > 0 && string(essid) != hiddenEssidMarker {
				cur.ESSID = string(essid)
			}

		case SIOCGIWENCODE:
			if cur != nil {
				flags, _, err := decodePointHeader(payload, weVersion)
				if err == nil {
					cur.Encrypted = flags&IWEncodeDisabled == 0
				}
			}

		case IWEVGENIE:
			ie, err := decodePointPayload(payload, weVersion)
			if err == nil && cur != nil && len(ie) > 0 {
				dispatchIE(cur, ie)
			}

		case IWEVCUSTOM:
			text, err := decodePointPayload(payload, weVersion)
			if err == nil && cur != nil {
				dispatchCustom(cur, string(text))
			}
		}

		buf = buf[evLen:]
	}
	finish()
	return results, nil
}

// decodePointHeader returns a point event's (flags, data) split without
// assuming which header layout is in play, returning an error if the
// payload is shorter than even the short header.
func decodePointHeader(payload []byte, weVersion uint8) (flags uint16, data []byte, err error) {
	short := weVersion >= weVersionShortHeader
	hdr := pointHeaderLong - eventHeaderLen
	if short {
		hdr = pointHeaderShort - eventHeaderLen
	}
	if len(payload) < hdr {
		return 0, nil, errors.New("wext: point event shorter than header")
	}
	lengthOff := hdr - 4
	flagsOff := hdr - 2
	length := binary.LittleEndian.Uint16(payload[lengthOff:flagsOff])
	flags = binary.LittleEndian.Uint16(payload[flagsOff:hdr])
	data = payload[hdr:]
	if int(length) < len(data) {
		data = data[:length]
	}
	return flags, data, nil
}

func decodePointPayload(payload []byte, weVersion uint8) ([]byte, error) {
	_, data, err := decodePointHeader(payload, weVersion)
	return data, err
}

// dispatchIE routes a generic information element by its leading
// element-ID byte (spec 4.3's IWEVGENIE handling).
func dispatchIE(cur *ScanResult, ie []byte) {
	switch ie[0] {
	case ieWPAGeneric:
		cur.WPAIE = cloneCapped(ie, wpaMaxIELen)
	case ieRSN:
		cur.RSNIE = cloneCapped(ie, wpaMaxIELen)
	default:
		cur.GenericIE = cloneCapped(ie, wpaMaxIELen)
	}
}

// dispatchCustom decodes the hex-encoded "wpa_ie=" / "rsn_ie=" prefixed
// custom events some drivers emit in place of (or alongside) IWEVGENIE.
func dispatchCustom(cur *ScanResult, text string) {
	switch {
	case strings.HasPrefix(text, "wpa_ie="):
		if b, err := hex.DecodeString(text[len("wpa_ie="):]); err == nil {
			cur.WPAIE = cloneCapped(b, wpaMaxIELen)
		}
	case strings.HasPrefix(text, "rsn_ie="):
		if b, err := hex.DecodeString(text[len("rsn_ie="):]); err == nil {
			cur.RSNIE = cloneCapped(b, wpaMaxIELen)
		}
	}
}

func cloneCapped(b []byte, max int) []byte {
	if len(b) > max {
		b = b[:max]
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// decodeRange parses the subset of struct iw_range this package reads
// out of a SIOCGIWRANGE buffer: the compiled WE version (a single byte
// near the head of the structure), the quality templates, and the
// frequency table. The full struct carries many more fields (bitrate
// tables, retry limits, encoding sizes); nothing here reads them.
func decodeRange(buf []byte) (*Range, error) {
	if len(buf) < 12 {
		return nil, errors.New("wext: range buffer too short")
	}
	r := &Range{
		WEVersionCompiled: buf[10],
		MaxQual: Quality{
			Qual: buf[much(buf, 16, 0)], Level: buf[much(buf, 16, 1)],
			Noise: buf[much(buf, 16, 2)], Updated: buf[much(buf, 16, 3)],
		},
		AvgQual: Quality{
			Qual: buf[much(buf, 20, 0)], Level: buf[much(buf, 20, 1)],
			Noise: buf[much(buf, 20, 2)], Updated: buf[much(buf, 20, 3)],
		},
	}

	const numFreqOff = 180
	if len(buf) > numFreqOff+4 {
		num := int(buf[numFreqOff])
		if num > 32 {
			num = 32
		}
		off := numFreqOff + 4
		for i := 0; i < num && off+8 <= len(buf); i++ {
			m := int32(binary.LittleEndian.Uint32(buf[off : off+4]))
			e := int16(binary.LittleEndian.Uint16(buf[off+4 : off+6]))
			r.Frequencies = append(r.Frequencies, freqToFloat(m, e))
			off += 8
		}
	}
	return r, nil
}

func much(buf []byte, base, i int) int {
	idx := base + i
	if idx >= len(buf) {
		return len(buf) - 1
	}
	return idx
}
