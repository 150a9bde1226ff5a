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
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ifreqSize is the total size of an iwreq/ifreq request block: a
// 16-byte interface name followed by a 16-byte request union.
const ifreqSize = ifNameSize + 16

func newReq(iface string) ([ifreqSize]byte, error) {
	var req [ifreqSize]byte
	if len(iface) >= ifNameSize {
		return req, errors.Errorf("wext: interface name %q too long", iface)
	}
	copy(req[:ifNameSize], iface)
	return req, nil
}

// GetMode reads the device's current association mode (SIOCGIWMODE).
func (s *Socket) GetMode(iface string) (int, error) {
	req, err := newReq(iface)
	if err != nil {
		return IWModeAuto, err
	}
	if err := s.ioctl(SIOCGIWMODE, unsafe.Pointer(&req[0])); err != nil {
		return IWModeAuto, errors.Wrapf(err, "SIOCGIWMODE(%s)", iface)
	}
	mode := int(int32(binary.LittleEndian.Uint32(req[ifNameSize:])))
	return mode, nil
}

// SetMode sets the device's association mode (SIOCSIWMODE).
func (s *Socket) SetMode(iface string, mode int) error {
	req, err := newReq(iface)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(req[ifNameSize:], uint32(mode))
	if err := s.ioctl(SIOCSIWMODE, unsafe.Pointer(&req[0])); err != nil {
		return errors.Wrapf(err, "SIOCSIWMODE(%s, %d)", iface, mode)
	}
	return nil
}

// GetName reads the device's protocol name (SIOCGIWNAME), a fixed
// 16-byte field embedded directly in the request union. Some drivers
// report the literal string "unassociated" here instead of a protocol
// name when the card has no active association; is_associated uses
// this as a fast-path short circuit before falling back to an
// address-validity check.
func (s *Socket) GetName(iface string) (string, error) {
	req, err := newReq(iface)
	if err != nil {
		return "", err
	}
	if err := s.ioctl(SIOCGIWNAME, unsafe.Pointer(&req[0])); err != nil {
		return "", errors.Wrapf(err, "SIOCGIWNAME(%s)", iface)
	}
	name := req[ifNameSize:]
	n := 0
	for n < len(name) && name[n] != 0 {
		n++
	}
	return string(name[:n]), nil
}

// GetFreq reads the device's current operating frequency in Hz
// (SIOCGIWFREQ), expanding the kernel's (mantissa, exponent) encoding.
func (s *Socket) GetFreq(iface string) (float64, error) {
	req, err := newReq(iface)
	if err != nil {
		return 0, err
	}
	if err := s.ioctl(SIOCGIWFREQ, unsafe.Pointer(&req[0])); err != nil {
		return 0, errors.Wrapf(err, "SIOCGIWFREQ(%s)", iface)
	}
	m := int32(binary.LittleEndian.Uint32(req[ifNameSize:]))
	e := int16(binary.LittleEndian.Uint16(req[ifNameSize+4:]))
	return freqToFloat(m, e), nil
}

// SetFreq sets the device's operating frequency. A frequency of zero
// means "auto"; a card that rejects 0 with EOPNOTSUPP/EINVAL is asked
// again with -1, and that second attempt's error is what comes back.
func (s *Socket) SetFreq(iface string, hz float64) error {
	req, err := newReq(iface)
	if err != nil {
		return err
	}
	m, e := floatToFreq(hz)
	binary.LittleEndian.PutUint32(req[ifNameSize:], uint32(m))
	binary.LittleEndian.PutUint16(req[ifNameSize+4:], uint16(e))
	if err := s.ioctl(SIOCSIWFREQ, unsafe.Pointer(&req[0])); err != nil {
		if hz == 0 && (err == unix.EOPNOTSUPP || err == unix.EINVAL) {
			return s.SetFreq(iface, -1)
		}
		return errors.Wrapf(err, "SIOCSIWFREQ(%s, %v)", iface, hz)
	}
	return nil
}

func freqToFloat(m int32, e int16) float64 {
	f := float64(m)
	for i := int16(0); i < e; i++ {
		f *= 10
	}
	return f
}

func floatToFreq(hz float64) (int32, int16) {
	var e int16
	for hz > (1<<31 - 1) {
		hz /= 10
		e++
	}
	return int32(hz), e
}

// GetEssid reads the device's current ESSID (SIOCGIWESSID).
func (s *Socket) GetEssid(iface string) (string, error) {
	req, err := newReq(iface)
	if err != nil {
		return "", err
	}
	buf := make([]byte, IWESSIDMaxSize+1)
	binary.LittleEndian.PutUint64(req[ifNameSize:], uint64(uintptr(unsafe.Pointer(&buf[0]))))
	binary.LittleEndian.PutUint16(req[ifNameSize+8:], IWESSIDMaxSize+1)

	if err := s.ioctl(SIOCGIWESSID, unsafe.Pointer(&req[0])); err != nil {
		return "", errors.Wrapf(err, "SIOCGIWESSID(%s)", iface)
	}
	n := binary.LittleEndian.Uint16(req[ifNameSize+8:])
	if n > IWESSIDMaxSize {
		n = IWESSIDMaxSize
	}
	return string(buf[:n]), nil
}

// SetEssid sets the device's target ESSID (SIOCSIWESSID).
func (s *Socket) SetEssid(iface, essid string) error {
	req, err := newReq(iface)
	if err != nil {
		return err
	}
	if len(essid) > IWESSIDMaxSize {
		essid = essid[:IWESSIDMaxSize]
	}
	buf := make([]byte, len(essid)+1)
	copy(buf, essid)

	binary.LittleEndian.PutUint64(req[ifNameSize:], uint64(uintptr(unsafe.Pointer(&buf[0]))))
	binary.LittleEndian.PutUint16(req[ifNameSize+8:], uint16(len(essid)))
	binary.LittleEndian.PutUint16(req[ifNameSize+10:], 1) // flags: ESSID active

	if err := s.ioctl(SIOCSIWESSID, unsafe.Pointer(&req[0])); err != nil {
		return errors.Wrapf(err, "SIOCSIWESSID(%s, %s)", iface, essid)
	}
	return nil
}

// GetAPAddr reads the BSSID of the AP the device is currently
// associated with (SIOCGIWAP). An all-zero address from the kernel
// comes back as "00:00:00:00:00:00", which IsValidMAC rejects.
func (s *Socket) GetAPAddr(iface string) (string, error) {
	req, err := newReq(iface)
	if err != nil {
		return "", err
	}
	if err := s.ioctl(SIOCGIWAP, unsafe.Pointer(&req[0])); err != nil {
		return "", errors.Wrapf(err, "SIOCGIWAP(%s)", iface)
	}
	mac := req[ifNameSize+2 : ifNameSize+8]
	return formatMAC(mac), nil
}

// GetRate reads the device's current bitrate in bits/second
// (SIOCGIWRATE).
func (s *Socket) GetRate(iface string) (int32, error) {
	req, err := newReq(iface)
	if err != nil {
		return 0, err
	}
	if err := s.ioctl(SIOCGIWRATE, unsafe.Pointer(&req[0])); err != nil {
		return 0, errors.Wrapf(err, "SIOCGIWRATE(%s)", iface)
	}
	return int32(binary.LittleEndian.Uint32(req[ifNameSize:])), nil
}

// SetRateAuto requests automatic bitrate selection (SIOCSIWRATE).
func (s *Socket) SetRateAuto(iface string) error {
	return s.setRate(iface, 0, true)
}

// SetRate requests a fixed bitrate in bits/second.
func (s *Socket) SetRate(iface string, bps int32) error {
	return s.setRate(iface, bps, false)
}

func (s *Socket) setRate(iface string, bps int32, auto bool) error {
	req, err := newReq(iface)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(req[ifNameSize:], uint32(bps))
	if !auto {
		req[ifNameSize+4] = 1 // fixed
	}
	if err := s.ioctl(SIOCSIWRATE, unsafe.Pointer(&req[0])); err != nil {
		return errors.Wrapf(err, "SIOCSIWRATE(%s)", iface)
	}
	return nil
}

// SetEncodeDisabled clears the device's WEP key state (used when
// handing key material to the supplicant collaborator instead).
func (s *Socket) SetEncodeDisabled(iface string) error {
	req, err := newReq(iface)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(req[ifNameSize+10:], IWEncodeDisabled)
	if err := s.ioctl(SIOCSIWENCODE, unsafe.Pointer(&req[0])); err != nil {
		return errors.Wrapf(err, "SIOCSIWENCODE(%s)", iface)
	}
	return nil
}

// GetRange fetches the device's range/capability information
// (SIOCGIWRANGE): the compiled WE version, quality templates, and
// frequency table a device's range block reports. Frequencies comes
// back sized to whatever the driver reports.
func (s *Socket) GetRange(iface string) (*Range, error) {
	req, err := newReq(iface)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 2048)
	binary.LittleEndian.PutUint64(req[ifNameSize:], uint64(uintptr(unsafe.Pointer(&buf[0]))))
	binary.LittleEndian.PutUint16(req[ifNameSize+8:], uint16(len(buf)))

	if err := s.ioctl(SIOCGIWRANGE, unsafe.Pointer(&req[0])); err != nil {
		return nil, errors.Wrapf(err, "SIOCGIWRANGE(%s)", iface)
	}
	return decodeRange(buf)
}

// GetStats reads a live link-quality sample (SIOCGIWSTATS). Unlike the
// fixed-layout ioctls above, struct iw_statistics is too large to fit
// in the request union, so the kernel wants it through the same
// pointer/length point-request layout GetRange and GetScanResults use;
// the iw_quality block this package already knows how to read sits
// right after the 2-byte status field at the head of the structure.
func (s *Socket) GetStats(iface string) (Quality, error) {
	req, err := newReq(iface)
	if err != nil {
		return Quality{}, err
	}
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint64(req[ifNameSize:], uint64(uintptr(unsafe.Pointer(&buf[0]))))
	binary.LittleEndian.PutUint16(req[ifNameSize+8:], uint16(len(buf)))

	if err := s.ioctl(SIOCGIWSTATS, unsafe.Pointer(&req[0])); err != nil {
		return Quality{}, errors.Wrapf(err, "SIOCGIWSTATS(%s)", iface)
	}
	return Quality{
		Qual:    buf[2],
		Level:   buf[3],
		Noise:   buf[4],
		Updated: buf[5],
	}, nil
}

// TriggerScan issues the scan-trigger ioctl (SIOCSIWSCAN) with an
// empty request, asking the driver to perform a full passive/active
// scan of all channels.
func (s *Socket) TriggerScan(iface string) error {
	req, err := newReq(iface)
	if err != nil {
		return err
	}
	if err := s.ioctl(SIOCSIWSCAN, unsafe.Pointer(&req[0])); err != nil {
		return errors.Wrapf(err, "SIOCSIWSCAN(%s)", iface)
	}
	return nil
}

// Scan retry tuning (spec 4.6).
const (
	scanInitialBufSize = 4096
	scanMaxBufSize     = 100000
	scanSleepCenti     = 1 // 10ms granules; matches SCAN_SLEEP_CENTISECONDS style naming
	scanAgainAttempts  = 20 * scanSleepCenti
)

// GetScanResults reads back the scan buffer (SIOCGIWSCAN), retrying on
// the transient conditions the ioctl is documented to return:
// E2BIG means our buffer was too small (doubled up to scanMaxBufSize),
// EAGAIN means the scan hasn't completed yet (retried with a short
// sleep, up to scanAgainAttempts times), and ENODATA is success with
// zero results. Any other errno is a hard failure.
func (s *Socket) GetScanResults(iface string) ([]byte, error) {
	size := scanInitialBufSize
	attempts := 0

	for {
		buf := make([]byte, size)
		req, err := newReq(iface)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint64(req[ifNameSize:], uint64(uintptr(unsafe.Pointer(&buf[0]))))
		binary.LittleEndian.PutUint16(req[ifNameSize+8:], uint16(size))

		ioerr := s.ioctl(SIOCGIWSCAN, unsafe.Pointer(&req[0]))
		if ioerr == nil {
			n := int(binary.LittleEndian.Uint16(req[ifNameSize+8:]))
			if n > size {
				n = size
			}
			return buf[:n], nil
		}

		switch ioerr {
		case unix.E2BIG:
			if size >= scanMaxBufSize {
				return nil, errors.Wrapf(ioerr, "SIOCGIWSCAN(%s): buffer maxed at %d", iface, size)
			}
			size *= 2
			if size > scanMaxBufSize {
				size = scanMaxBufSize
			}
		case unix.EAGAIN:
			attempts++
			if attempts > scanAgainAttempts {
				return nil, errors.Wrapf(ioerr, "SIOCGIWSCAN(%s): scan never completed", iface)
			}
			time.Sleep(100 * time.Millisecond)
		case unix.ENODATA:
			return nil, nil
		default:
			return nil, errors.Wrapf(ioerr, "SIOCGIWSCAN(%s)", iface)
		}
	}
}

func formatMAC(b []byte) string {
	if len(b) < 6 {
		return ""
	}
	const hex = "0123456789abcdef"
	out := make([]byte, 17)
	for i := 0; i < 6; i++ {
		out[i*3] = hex[b[i]>>4]
		out[i*3+1] = hex[b[i]&0xf]
		if i < 5 {
			out[i*3+2] = ':'
		}
	}
	return string(out)
}

// IsValidMAC reports whether mac is usable as an AP identity: not
// empty, not the all-zero address, not the broadcast/all-ones address,
// and not a multicast address (low bit of the first octet set).
func IsValidMAC(mac string) bool {
	if len(mac) != 17 {
		return false
	}
	b, ok := parseMAC(mac)
	if !ok {
		return false
	}
	allZero, allOnes := true, true
	for _, v := range b {
		if v != 0x00 {
			allZero = false
		}
		if v != 0xff {
			allOnes = false
		}
	}
	if allZero || allOnes {
		return false
	}
	return b[0]&0x01 == 0
}

func parseMAC(mac string) ([6]byte, bool) {
	var b [6]byte
	if len(mac) != 17 {
		return b, false
	}
	for i := 0; i < 6; i++ {
		hi, ok1 := hexNibble(mac[i*3])
		lo, ok2 := hexNibble(mac[i*3+1])
		if !ok1 || !ok2 {
			return b, false
		}
		if i < 5 && mac[i*3+2] != ':' {
			return b, false
		}
		b[i] = hi<<4 | lo
	}
	return b, true
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
