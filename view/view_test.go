package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/cesrparse/errs"
	"github.com/arloliu/cesrparse/indexer"
	"github.com/arloliu/cesrparse/matter"
)

func TestDigester_AcceptsEFamily(t *testing.T) {
	tok := matter.Token{Code: "E", Raw: make([]byte, 32)}

	got, err := Digester(tok)
	require.NoError(t, err)
	assert.Equal(t, tok, got)
}

func TestDigester_RejectsNonDigest(t *testing.T) {
	tok := matter.Token{Code: "D"}

	_, err := Digester(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDeserialize)
}

func TestVerser_ParsesProtoAndVersion(t *testing.T) {
	raw := append([]byte("KERI"), []byte("JSON")...)
	raw = append(raw, byte(2<<4|1))
	tok := matter.Token{Code: "0O", Raw: raw}

	proto, pvrsn, err := Verser(tok)
	require.NoError(t, err)
	assert.Equal(t, "KERI", proto)
	assert.Equal(t, 2, pvrsn.Major)
	assert.Equal(t, 1, pvrsn.Minor)
}

func TestVerser_RejectsWrongCode(t *testing.T) {
	tok := matter.Token{Code: "E", Raw: make([]byte, 9)}

	_, _, err := Verser(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDeserialize)
}

func TestVerser_RejectsShortBody(t *testing.T) {
	tok := matter.Token{Code: "0O", Raw: make([]byte, 5)}

	_, _, err := Verser(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDeserialize)
}

func TestVerser_RejectsUnknownProto(t *testing.T) {
	raw := append([]byte("ABCD"), make([]byte, 5)...)
	tok := matter.Token{Code: "1O", Raw: raw}

	_, _, err := Verser(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDeserialize)
}

func TestIlker_ReturnsTag(t *testing.T) {
	tok := matter.Token{Code: "X", Raw: []byte("icp")}

	tag, err := Ilker(tok)
	require.NoError(t, err)
	assert.Equal(t, "icp", tag)
}

func TestIlker_RejectsWrongCode(t *testing.T) {
	tok := matter.Token{Code: "E"}

	_, err := Ilker(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDeserialize)
}

func TestPrefixer_AcceptsOrdinaryMatter(t *testing.T) {
	tok := matter.Token{Code: "D", Raw: make([]byte, 32)}

	got, err := Prefixer(tok)
	require.NoError(t, err)
	assert.Equal(t, tok, got)
}

func TestPrefixer_RejectsReservedCodes(t *testing.T) {
	for _, code := range []string{"X", "0O", "1O"} {
		_, err := Prefixer(matter.Token{Code: code})
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrDeserialize)
	}
}

func TestSiger_AcceptsControllerAndWitness(t *testing.T) {
	for _, code := range []string{"A", "B"} {
		tok := indexer.Token{Code: code, Raw: make([]byte, 64)}
		got, err := Siger(tok)
		require.NoError(t, err)
		assert.Equal(t, tok, got)
	}
}

func TestSiger_RejectsOtherCodes(t *testing.T) {
	tok := indexer.Token{Code: "0A"}

	_, err := Siger(tok)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrDeserialize)
}
