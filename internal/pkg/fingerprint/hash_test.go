package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashDeterministic(t *testing.T) {
	fp := Generate()

	first := Hash(fp)
	second := Hash(fp)

	assert.Equal(t, first.Hash, second.Hash)
	assert.Equal(t, first.ShortHash, second.ShortHash)
}

func TestShortHashIsPrefix(t *testing.T) {
	d := Hash(Generate())

	require.Len(t, d.ShortHash, ShortHashLen)
	assert.Equal(t, d.Hash[:ShortHashLen], d.ShortHash)
}

func TestHashChangesWithInput(t *testing.T) {
	a := Generate()
	b := a
	b.Hostname = a.Hostname + "-other"

	assert.NotEqual(t, Hash(a).Hash, Hash(b).Hash)
}

func TestGenerateBestEffort(t *testing.T) {
	fp := Generate()

	// These signals are always derivable from the runtime.
	assert.NotEmpty(t, fp.Platform)
	assert.NotEmpty(t, fp.UserAgent)
	assert.Greater(t, fp.HardwareThreads, 0)

	// Display fields stay zero in a headless run; the snapshot must not
	// fail because of them.
	assert.Zero(t, fp.ScreenWidth)
	assert.Zero(t, fp.CanvasSignature)
}
