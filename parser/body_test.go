package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/cesrparse/b64"
	"github.com/arloliu/cesrparse/codes"
)

func verserFieldText(proto, kind string, major, minor int) string {
	raw := append([]byte(proto), []byte(kind)...)
	raw = append(raw, byte(major<<4|minor))
	body, err := b64.EncodeBody(raw)
	if err != nil {
		panic(err)
	}

	return "0O" + body
}

func ilkerFieldText(tag string) string {
	body, err := b64.EncodeBody([]byte(tag))
	if err != nil {
		panic(err)
	}

	return "X" + body
}

func saiderFieldText() string {
	padded := append([]byte{0}, make([]byte, 32)...)
	body, err := b64.EncodeBody(padded)
	if err != nil {
		panic(err)
	}

	return "E" + body
}

func labelFieldText() string {
	soft, err := b64.FromInt(1, 2)
	if err != nil {
		panic(err)
	}
	body, err := b64.EncodeBody([]byte{0, 0, 0})
	if err != nil {
		panic(err)
	}

	return "4B" + soft + body
}

func TestParseNativeBody_FixBodyDoesNotSkipLabelers(t *testing.T) {
	payload := []byte(labelFieldText() + verserFieldText("KERI", "JSON", 2, 0) + ilkerFieldText("icp") + saiderFieldText())

	_, _, _, _, _, err := parseNativeBody(payload, 0, false, codes.DomainText, "-P")
	require.Error(t, err, "a Fix-variant body must not tolerate an interleaved labeler ahead of the verser")
}

func TestParseNativeBody_MapBodySkipsInterleavedLabelers(t *testing.T) {
	payload := []byte(labelFieldText() + verserFieldText("KERI", "JSON", 2, 0) +
		labelFieldText() + ilkerFieldText("icp") +
		labelFieldText() + saiderFieldText())

	native, proto, pvrsn, ilk, said, err := parseNativeBody(payload, 0, true, codes.DomainText, "-R")
	require.NoError(t, err)
	assert.Equal(t, "KERI", proto)
	assert.Equal(t, 2, pvrsn.Major)
	assert.Equal(t, 0, pvrsn.Minor)
	assert.Equal(t, "icp", ilk)
	assert.NotEmpty(t, said)
	require.NotNil(t, native)
	assert.True(t, native.IsMap)

	labelCount := 0
	for _, f := range native.Fields {
		if f.Code == "4B" {
			labelCount++
		}
	}
	assert.Equal(t, 3, labelCount, "all three interleaved labelers should be tokenized as advisory fields")
}

func TestParseNativeBody_FixBodyWithoutLabelersStillWorks(t *testing.T) {
	payload := []byte(verserFieldText("KERI", "JSON", 2, 0) + ilkerFieldText("icp") + saiderFieldText())

	native, proto, pvrsn, ilk, _, err := parseNativeBody(payload, 0, false, codes.DomainText, "-P")
	require.NoError(t, err)
	assert.Equal(t, "KERI", proto)
	assert.Equal(t, 2, pvrsn.Major)
	assert.Equal(t, "icp", ilk)
	require.NotNil(t, native)
	assert.False(t, native.IsMap)
}

func TestParseNativeBody_MapBodyWithoutLabelersStillWorks(t *testing.T) {
	payload := []byte(verserFieldText("KERI", "JSON", 2, 0) + ilkerFieldText("icp") + saiderFieldText())

	native, _, _, _, _, err := parseNativeBody(payload, 0, true, codes.DomainText, "-R")
	require.NoError(t, err)
	require.NotNil(t, native)
	assert.True(t, native.IsMap)
}
