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

// Quality mirrors struct iw_quality: a single link-quality sample, as
// reported either by a live SIOCGIWSTATS read or embedded in a scan
// event.
type Quality struct {
	Qual    uint8
	Level   uint8
	Noise   uint8
	Updated uint8
}

func (q Quality) qualInvalid() bool  { return q.Updated&IWQualQualInvalid != 0 }
func (q Quality) levelInvalid() bool { return q.Updated&IWQualLevelInvalid != 0 }
func (q Quality) noiseInvalid() bool { return q.Updated&IWQualNoiseInvalid != 0 }

// Range is the subset of struct iw_range this package consumes: the
// device's quality templates, compiled WE version, and supported
// frequency table. SIOCGIWRANGE returns a much larger structure; the
// rest (bitrates, encoding sizes, retry limits) has no reader here.
type Range struct {
	WEVersionCompiled uint8
	MaxQual           Quality
	AvgQual           Quality
	Frequencies       []float64
}
