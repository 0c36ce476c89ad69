// Copyright (c) 2013-2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package version

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	require.Equal(t, "beta-1xy", NormalizePreRelString("beta-1+x.y"))
	require.Equal(t, "x.y", NormalizeBuildString("x.y!"))
}

func TestString(t *testing.T) {
	prevPre, prevBuild := PreRelease, BuildMetadata
	defer func() { PreRelease, BuildMetadata = prevPre, prevBuild }()

	base := fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)

	PreRelease, BuildMetadata = "", ""
	require.Equal(t, base, String())

	PreRelease, BuildMetadata = "rc1", "abc.1"
	require.Equal(t, base+"-rc1+abc.1", String())

	// Invalid characters are dropped rather than rejected.
	PreRelease, BuildMetadata = "rc 1", ""
	require.Equal(t, base+"-rc1", String())
}

func TestUserAgent(t *testing.T) {
	prevPre, prevBuild := PreRelease, BuildMetadata
	defer func() { PreRelease, BuildMetadata = prevPre, prevBuild }()

	base := fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)

	PreRelease, BuildMetadata = "", "abc"
	require.Equal(t, "/mempoold:"+base+"/", UserAgent("mempoold"))

	PreRelease = "rc 1"
	require.Equal(t, "/mempoold:"+base+"-rc1/", UserAgent("mempoold"))
}
