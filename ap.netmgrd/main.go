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
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/satori/uuid"
	flag "github.com/spf13/pflag"

	"nwmgr/ap_common/aputil"
	"nwmgr/ap_common/wext"
	"nwmgr/appctx"
	"nwmgr/device"
)

const pname = "ap.netmgrd"

var (
	logLevel    = flag.String("log-level", "info", "log level: debug, info, warn, error")
	wiredPrefix = flag.String("wired-prefix", "eth,en", "comma-separated interface name prefixes treated as wired")
)

var cleanup struct {
	wg sync.WaitGroup
}

func signalHandler(cancel context.CancelFunc) {
	sig := make(chan os.Signal, 3)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	<-sig
	cancel()
}

func isWiredName(name string) bool {
	for _, p := range strings.Split(*wiredPrefix, ",") {
		if p != "" && strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func buildDevice(app *appctx.ApplicationContext, iface string) *device.Device {
	gw, err := wext.Open(wext.Wireless)
	if err != nil {
		app.Log.Warnw("opening gateway", "iface", iface, "error", err)
		return nil
	}

	hwaddr := "" // populated from net.InterfaceByName by a real enumerator

	if isWiredName(iface) {
		return device.NewWired(app, iface, hwaddr, gw, false)
	}

	rng, err := gw.GetRange(iface)
	if err != nil {
		// No wireless extension support at all; this interface isn't
		// NM-supported, but it's not an error for the daemon as a
		// whole (spec 7: hardware error -> capability not set).
		app.Log.Debugw("no wireless extensions", "iface", iface, "error", err)
		gw.Close()
		return nil
	}
	if rng.WEVersionCompiled < 16 {
		app.Log.Infow("wireless extension too old, unsupported", "iface", iface,
			"we_version", rng.WEVersionCompiled)
		gw.Close()
		return nil
	}
	return device.NewWireless(app, iface, hwaddr, gw, rng)
}

func main() {
	flag.Parse()

	slog := aputil.NewLogger(pname)
	defer slog.Sync()
	if err := aputil.LogSetLevel(pname, *logLevel); err != nil {
		slog.Warnf("invalid log level %q: %v", *logLevel, err)
	}

	sessionID := uuid.NewV4()
	slog.Infow("starting", "session", sessionID)

	ctx, cancel := context.WithCancel(context.Background())
	app := appctx.New(ctx, slog)
	app.Bus = &logBus{log: slog}
	app.ConfigStore = staticConfigStore{}
	app.Supplicant = &noopSupplicant{log: slog}
	app.KeyPrompt = &logKeyPrompt{log: slog}

	enumerator := netInterfaceEnumerator{}
	for _, iface := range enumerator.Devices() {
		d := buildDevice(app, iface)
		if d == nil {
			continue
		}
		app.RegisterDevice(d)

		if d.Kind() == device.KindWireless {
			cleanup.wg.Add(1)
			go func(d *device.Device) {
				defer cleanup.wg.Done()
				d.RunScanLoop(ctx)
			}(d)

			cleanup.wg.Add(1)
			go func(d *device.Device) {
				defer cleanup.wg.Done()
				d.RunStrengthLoop(ctx)
			}(d)
		}
	}

	go signalHandler(cancel)

	<-ctx.Done()
	slog.Infof("shutting down")
	cleanup.wg.Wait()
	os.Exit(0)
}
