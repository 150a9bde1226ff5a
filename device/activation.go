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
	"nwmgr/ap_common/aplist"
	"nwmgr/appctx"
)

// Stage tracks an activation attempt's progress.
type Stage int

// Stage values.
const (
	StagePending Stage = iota
	StageConfiguring
	StageWaitingLink
	StageComplete
	StageFailed
)

// ActivationRequest is the in-flight attempt to attach a device to a
// chosen AP. It is shared between the device worker (which drives the
// association loop) and the selection policy (which reads
// UserRequested to decide keepability).
type ActivationRequest struct {
	AP            *aplist.AccessPoint
	UserRequested bool
	Stage         Stage
	App           *appctx.ApplicationContext
}

// NewActivationRequest starts a fresh request targeting ap.
func NewActivationRequest(app *appctx.ApplicationContext, ap *aplist.AccessPoint, userRequested bool) *ActivationRequest {
	return &ActivationRequest{
		AP:            ap,
		UserRequested: userRequested,
		Stage:         StagePending,
		App:           app,
	}
}
