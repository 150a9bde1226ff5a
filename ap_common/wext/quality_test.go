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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQualityToPercentCardReported(t *testing.T) {
	assert := require.New(t)

	max := Quality{Qual: 70}
	avg := Quality{}
	qual := Quality{Qual: 35}

	assert.Equal(50, QualityToPercent(qual, max, avg))
}

func TestQualityToPercentDBm(t *testing.T) {
	assert := require.New(t)

	// max_qual.level == 0 (flagged valid) signals dBm mode; noise comes
	// from avg_qual since max_qual carries none.
	max := Quality{Level: 0}
	avg := Quality{Noise: uint8(int(-90) + 0x100)}
	qual := Quality{Level: uint8(int(-55) + 0x100)}

	p := QualityToPercent(qual, max, avg)
	assert.True(p > 0 && p <= 100, "expected a usable percentage, got %d", p)
}

func TestQualityToPercentRawRSSI(t *testing.T) {
	assert := require.New(t)

	max := Quality{Level: 100}
	qual := Quality{Level: 40}

	assert.Equal(40, QualityToPercent(qual, max, Quality{}))
}

func TestQualityToPercentNoData(t *testing.T) {
	assert := require.New(t)

	assert.Equal(-1, QualityToPercent(Quality{}, Quality{}, Quality{}))
}

func TestQualityToPercentInvalidFlagIgnored(t *testing.T) {
	assert := require.New(t)

	max := Quality{Qual: 70}
	qual := Quality{Qual: 70, Updated: IWQualQualInvalid}

	// the card-reported branch is disqualified by the invalid flag, and
	// there's no level data to fall back to.
	assert.Equal(-1, QualityToPercent(qual, max, Quality{}))
}

func TestQualityToPercentClampsToRange(t *testing.T) {
	assert := require.New(t)

	max := Quality{Qual: 10}
	qual := Quality{Qual: 99}

	assert.Equal(100, QualityToPercent(qual, max, Quality{}))
}
