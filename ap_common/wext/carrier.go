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
	"io/ioutil"
	"strings"
	"unsafe"
)

// ethtoolCmd mirrors the head of struct ethtool_cmd/ethtool_value: a
// command selector followed by a single 32-bit data word. ETHTOOL_GLINK
// is the only sub-command this package issues.
type ethtoolCmd struct {
	cmd  uint32
	data uint32
}

// ProbeCarrier reports whether a wired interface currently has a link
// partner, trying three sources in order of preference: the ethtool
// GLINK ioctl, the MII BMSR register (for older drivers that predate
// ethtool link reporting), and finally the sysfs carrier file. The
// first source that answers without error wins; when every source
// fails to probe, ProbeCarrier returns false and the sysfs read's
// error.
func (s *Socket) ProbeCarrier(iface string) (bool, error) {
	if up, err := s.ethtoolLink(iface); err == nil {
		return up, nil
	}
	if up, err := s.miiLink(iface); err == nil {
		return up, nil
	}
	return sysfsCarrier(iface)
}

func (s *Socket) ethtoolLink(iface string) (bool, error) {
	req, err := newReq(iface)
	if err != nil {
		return false, err
	}
	cmd := ethtoolCmd{cmd: ethtoolGlink}
	var cmdBuf [8]byte
	binary.LittleEndian.PutUint32(cmdBuf[0:4], cmd.cmd)
	binary.LittleEndian.PutUint32(cmdBuf[4:8], cmd.data)

	binary.LittleEndian.PutUint64(req[ifNameSize:], uint64(uintptr(unsafe.Pointer(&cmdBuf[0]))))
	if err := s.ioctl(SIOCETHTOOL, unsafe.Pointer(&req[0])); err != nil {
		return false, err
	}
	return binary.LittleEndian.Uint32(cmdBuf[4:8]) != 0, nil
}

func (s *Socket) miiLink(iface string) (bool, error) {
	req, err := newReq(iface)
	if err != nil {
		return false, err
	}
	if err := s.ioctl(SIOCGMIIPHY, unsafe.Pointer(&req[0])); err != nil {
		return false, err
	}
	phyID := binary.LittleEndian.Uint16(req[ifNameSize:])

	binary.LittleEndian.PutUint16(req[ifNameSize:], phyID)
	binary.LittleEndian.PutUint16(req[ifNameSize+2:], miiBMSR)
	if err := s.ioctl(SIOCGMIIREG, unsafe.Pointer(&req[0])); err != nil {
		return false, err
	}
	bmsr := binary.LittleEndian.Uint16(req[ifNameSize+6:]) // val_out
	return bmsr&miiBMSRLinkStatus != 0, nil
}

func sysfsCarrier(iface string) (bool, error) {
	b, err := ioutil.ReadFile("/sys/class/net/" + iface + "/carrier")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(b)) == "1", nil
}
