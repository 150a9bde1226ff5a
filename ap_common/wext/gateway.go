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
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Kind classifies a Socket by the ioctls it will be asked to carry. Both
// kinds open an AF_INET/SOCK_DGRAM descriptor today -- that's all a
// modern kernel needs for either the SIOCxIW* or the ethtool/MII
// ioctls -- but keeping the classification explicit leaves room for the
// AF_IPX/AF_AX25 fallbacks that older wireless-tools implementations
// used for cards with no IP stack bound.
type Kind int

// The two socket classifications this gateway issues ioctls through.
const (
	Wireless Kind = iota
	General
)

// ErrUnavailable is returned by Open when the kernel has no socket
// family available to carry the requested ioctl class.
var ErrUnavailable = errors.New("wext: socket unavailable")

// Socket is a scoped handle over a raw ioctl file descriptor. The zero
// value is not usable; construct one with Open and always Close it --
// Close is idempotent, so it is safe to defer unconditionally on every
// exit path, including error returns.
type Socket struct {
	fd     int
	kind   Kind
	closed bool
}

// Open creates a new ioctl-capable socket of the given kind. It either
// returns a live Socket or fails with ErrUnavailable; the gateway does
// no buffering of its own; every other component issues raw ioctls
// through the returned Socket.
func Open(kind Kind) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	return &Socket{fd: fd, kind: kind}, nil
}

// Close releases the underlying descriptor. It is idempotent: calling
// it more than once (e.g. once explicitly and once via a deferred
// cleanup) is a no-op after the first call.
func (s *Socket) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	return unix.Close(s.fd)
}

// ifreq is the fixed-size request block every SIOCxIW* and ethtool/MII
// ioctl shares: a 16-byte interface name followed by a 16-byte union of
// request-specific data. We lay the union out by hand per ioctl rather
// than modeling the full C union, since each ioctl only ever touches
// one member of it.
const ifNameSize = 16

func newIfreq(iface string) ([ifNameSize + 16]byte, error) {
	var req [ifNameSize + 16]byte
	if len(iface) >= ifNameSize {
		return req, errors.Errorf("wext: interface name %q too long", iface)
	}
	copy(req[:ifNameSize], iface)
	return req, nil
}

// ioctl issues the raw ioctl against the gateway's descriptor. req must
// be a pointer to an on-stack buffer (an ifreq, iwreq, or similar fixed
// layout); Go doesn't suffer the alignment-fault problems the original
// C code guarded against by copying to a local, but we still always
// decode through a local, fixed Go struct rather than reading kernel
// memory in place, which gets us the same safety for free.
func (s *Socket) ioctl(request uintptr, req unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(s.fd), request, uintptr(req))
	if errno != 0 {
		return errno
	}
	return nil
}
