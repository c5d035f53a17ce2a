package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintOrderIndependent(t *testing.T) {
	a := Fingerprint([]string{"camera", "drone", "tent"})
	b := Fingerprint([]string{"tent", "camera", "drone"})

	assert.Equal(t, a, b)
}

func TestFingerprintIgnoresDuplicates(t *testing.T) {
	a := Fingerprint([]string{"camera", "camera", "drone"})
	b := Fingerprint([]string{"drone", "camera"})

	assert.Equal(t, a, b)
}

func TestFingerprintDetectsChange(t *testing.T) {
	before := Fingerprint([]string{"camera", "drone"})
	after := Fingerprint([]string{"camera", "drone", "kayak"})

	assert.NotEqual(t, before, after)
}

func TestFingerprintSeparatesBoundaries(t *testing.T) {
	assert.NotEqual(t, Fingerprint([]string{"ab"}), Fingerprint([]string{"a", "b"}))
}

func TestFingerprintEmptyIsStable(t *testing.T) {
	assert.Equal(t, Fingerprint(nil), Fingerprint([]string{}))
	assert.Len(t, Fingerprint(nil), 64)
}
