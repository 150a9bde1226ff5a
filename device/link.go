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
	"time"

	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
)

// ErrNoDevice is returned when the kernel has no link by this name --
// typically because a hotplug removal raced the caller.
var ErrNoDevice = errors.New("device: no such interface")

func linkByName(iface string) (netlink.Link, error) {
	link, err := netlink.LinkByName(iface)
	if err != nil {
		if _, ok := err.(netlink.LinkNotFoundError); ok {
			return nil, ErrNoDevice
		}
		return nil, errors.Wrapf(err, "LinkByName(%s)", iface)
	}
	return link, nil
}

func linkIsUp(iface string) (bool, error) {
	link, err := linkByName(iface)
	if err != nil {
		return false, err
	}
	return link.Attrs().Flags&netlink.FlagUp != 0, nil
}

// bringUpWait brings iface up and polls until the kernel reflects it,
// or timeout elapses.
func bringUpWait(iface string, timeout time.Duration) error {
	link, err := linkByName(iface)
	if err != nil {
		return err
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return errors.Wrapf(err, "LinkSetUp(%s)", iface)
	}
	return pollUntil(timeout, func() bool {
		up, _ := linkIsUp(iface)
		return up
	})
}

// bringDownWait brings iface down and polls until the kernel reflects
// it, or timeout elapses.
func bringDownWait(iface string, timeout time.Duration) error {
	link, err := linkByName(iface)
	if err != nil {
		return err
	}
	if err := netlink.LinkSetDown(link); err != nil {
		return errors.Wrapf(err, "LinkSetDown(%s)", iface)
	}
	return pollUntil(timeout, func() bool {
		up, _ := linkIsUp(iface)
		return !up
	})
}

func pollUntil(timeout time.Duration, done func() bool) error {
	deadline := time.Now().Add(timeout)
	for {
		if done() {
			return nil
		}
		if time.Now().After(deadline) {
			return errors.New("device: timed out waiting for link state")
		}
		time.Sleep(50 * time.Millisecond)
	}
}
