package smell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/cesrparse/codes"
	"github.com/arloliu/cesrparse/errs"
)

func TestSmell_V1Pattern(t *testing.T) {
	buf := []byte("KERI10JSON0000ab_rest-of-the-message-body-follows-here")

	s, err := Smell(buf)
	require.NoError(t, err)
	assert.Equal(t, "KERI", s.Proto)
	assert.Equal(t, codes.Versionage{Major: 1, Minor: 0}, s.Pvrsn)
	assert.Equal(t, "JSON", s.Kind)
	assert.Equal(t, 0xab, s.Size)
	assert.Nil(t, s.Gvrsn)
}

func TestSmell_V2Pattern(t *testing.T) {
	buf := []byte("ACDCBAABAA" + "JSON" + "AAEA" + "." + "rest of body")

	s, err := Smell(buf)
	require.NoError(t, err)
	assert.Equal(t, "ACDC", s.Proto)
	assert.Equal(t, codes.Versionage{Major: 1, Minor: 0}, s.Pvrsn)
	require.NotNil(t, s.Gvrsn)
	assert.Equal(t, codes.Versionage{Major: 1, Minor: 0}, *s.Gvrsn)
	assert.Equal(t, "JSON", s.Kind)
	assert.Equal(t, 256, s.Size)
}

func TestSmell_ScansWithinOffsetWindow(t *testing.T) {
	prefix := []byte("{\"x\":") // 5 opaque bytes before the version string, within the offset window
	v1 := []byte("KERI10JSON0000ab_")
	buf := append(prefix, v1...)

	s, err := Smell(buf)
	require.NoError(t, err)
	assert.Equal(t, "KERI", s.Proto)
}

func TestSmell_VersionErrorWhenLongEnoughAndNoMatch(t *testing.T) {
	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = 'z'
	}

	_, err := Smell(buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrVersionString)
}

func TestSmell_ShortageWhenTooShort(t *testing.T) {
	buf := []byte("KERI")

	_, err := Smell(buf)
	require.Error(t, err)
	assert.True(t, errs.IsShortage(err))
}
