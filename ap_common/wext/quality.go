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

// dBm clamp bounds used by the level/noise branch of QualityToPercent.
const (
	dbmFloor = -90
	dbmCeil  = -20
)

// toSignedDBm interprets an on-wire iw_quality level/noise byte as a
// two's-complement signed value: raw encodings at or above 0x80 are
// negative dBm readings and get 0x100 subtracted back out.
func toSignedDBm(raw uint8) int {
	v := int(raw)
	if v >= 0x80 {
		v -= 0x100
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// QualityToPercent implements the card-agnostic quality normalizer: a
// sample paired with its device's max/avg quality templates reduces to
// a 0-100 percentage, or -1 when the sample carries no usable signal
// data at all.
func QualityToPercent(qual, maxQual, avgQual Quality) int {
	percent := -1
	levelPercent := -1
	haveLevelPercent := false

	if maxQual.Qual != 0 && !maxQual.qualInvalid() && !qual.qualInvalid() {
		percent = int(round(100 * float64(qual.Qual) / float64(maxQual.Qual)))
	}

	if maxQual.Level == 0 && !maxQual.levelInvalid() {
		haveNoise := (maxQual.Noise != 0 && !maxQual.noiseInvalid()) ||
			(avgQual.Noise != 0 && !avgQual.noiseInvalid())
		if haveNoise {
			noise := maxQual.Noise
			if noise == 0 {
				noise = avgQual.Noise
			}
			level := clamp(toSignedDBm(qual.Level), dbmFloor, dbmCeil)
			noiseDBm := clamp(toSignedDBm(noise), dbmFloor, dbmCeil)
			levelPercent = int(round(100 - 70*float64(dbmCeil-level)/float64(dbmCeil-noiseDBm)))
			haveLevelPercent = true
		}
	} else if maxQual.Level != 0 {
		levelPercent = int(round(100 * float64(qual.Level) / float64(maxQual.Level)))
		haveLevelPercent = true
	}

	var result int
	if percent < 1 && haveLevelPercent {
		result = levelPercent
	} else {
		result = percent
	}

	if result < 0 {
		return -1
	}
	return clamp(result, 0, 100)
}

func round(f float64) float64 {
	if f < 0 {
		return float64(int(f - 0.5))
	}
	return float64(int(f + 0.5))
}
