package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIntegrity_ValidSHA256(t *testing.T) {
	t.Parallel()

	hash := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	integrity, err := NewIntegrity("sha256", hash)

	require.NoError(t, err)
	assert.Equal(t, "sha256", integrity.Algorithm())
	assert.Equal(t, hash, integrity.Hash())
}

func TestNewIntegrity_UnsupportedAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := NewIntegrity("md5", "d41d8cd98f00b204e9800998ecf8427e")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestNewIntegrity_EmptyHash(t *testing.T) {
	t.Parallel()

	_, err := NewIntegrity("sha256", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyHash)
}

func TestNewIntegrity_WrongLength(t *testing.T) {
	t.Parallel()

	_, err := NewIntegrity("sha256", "abcd")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestIntegrityFromData_Verify(t *testing.T) {
	t.Parallel()

	data := []byte("installed file contents")
	integrity := IntegrityFromData(AlgorithmSHA256, data)

	assert.True(t, integrity.Verify(data))
	assert.False(t, integrity.Verify([]byte("tampered")))
}

func TestParseIntegrity_RoundTrip(t *testing.T) {
	t.Parallel()

	original := IntegrityFromData(AlgorithmSHA512, []byte("payload"))
	parsed, err := ParseIntegrity(original.String())

	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestParseIntegrity_MissingSeparator(t *testing.T) {
	t.Parallel()

	_, err := ParseIntegrity("sha256e3b0c44298fc1c14")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidHash)
}
