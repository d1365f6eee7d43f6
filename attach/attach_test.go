package attach

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/cesrparse/b64"
	"github.com/arloliu/cesrparse/codes"
	"github.com/arloliu/cesrparse/indexer"
	"github.com/arloliu/cesrparse/internal/fallback"
)

func counterHeader(code string, count, softLen int) string {
	soft, err := b64.FromInt(int64(count), softLen)
	if err != nil {
		panic(err)
	}

	return code + soft
}

func matterText(code byte, payload [32]byte) string {
	padded := append([]byte{0}, payload[:]...)
	body, err := b64.EncodeBody(padded)
	if err != nil {
		panic(err)
	}

	return string(code) + body
}

func indexerText(index int, sig [64]byte) string {
	idxChar, err := b64.FromInt(int64(index), 1)
	if err != nil {
		panic(err)
	}
	padded := append([]byte{0, 0}, sig[:]...)
	body, err := b64.EncodeBody(padded)
	if err != nil {
		panic(err)
	}

	return "A" + idxChar + body
}

func TestDispatch_ShapeOpaque(t *testing.T) {
	buf := counterHeader("-N", 2, 2) + strings.Repeat("A", 8)

	g, err := Dispatch([]byte(buf), 0, 1, codes.DomainText, StrictMode, nil)
	require.NoError(t, err)
	assert.Equal(t, "-N", g.Token.Code)
	assert.Equal(t, len(buf), g.Consumed)
	assert.Equal(t, []byte(buf), g.Raw)
	require.Len(t, g.Items, 2)
	for _, item := range g.Items {
		raw, ok := item.([]byte)
		require.True(t, ok)
		assert.Len(t, raw, 4)
	}
}

func TestDispatch_ShapeTuple(t *testing.T) {
	var sig [64]byte
	for i := range sig {
		sig[i] = byte(i)
	}
	buf := counterHeader("-A", 1, 2) + indexerText(5, sig)

	g, err := Dispatch([]byte(buf), 0, 1, codes.DomainText, StrictMode, nil)
	require.NoError(t, err)
	assert.Equal(t, "-A", g.Token.Code)
	assert.Equal(t, len(buf), g.Consumed)
	assert.Equal(t, []byte(buf), g.Raw)
	require.Len(t, g.Items, 1)

	item, ok := g.Items[0].(TupleItem)
	require.True(t, ok)
	require.Len(t, item.Slots, 1)
	idxTok, ok := item.Slots[0].(indexer.Token)
	require.True(t, ok)
	assert.Equal(t, 5, idxTok.Index)
}

func TestDispatch_ShapeComposite(t *testing.T) {
	var p1, p2, p3 [32]byte
	p1[0], p2[0], p3[0] = 1, 2, 3
	var sig [64]byte

	lead := matterText('E', p1) + matterText('E', p2) + matterText('E', p3)
	nested := counterHeader("-A", 1, 2) + indexerText(2, sig)
	buf := counterHeader("-F", 1, 2) + lead + nested

	g, err := Dispatch([]byte(buf), 0, 1, codes.DomainText, StrictMode, nil)
	require.NoError(t, err)
	assert.Equal(t, "-F", g.Token.Code)
	assert.Equal(t, len(buf), g.Consumed)
	assert.Equal(t, []byte(buf), g.Raw)
	require.Len(t, g.Items, 1)

	item, ok := g.Items[0].(CompositeItem)
	require.True(t, ok)
	require.Len(t, item.Lead, 3)
	assert.Equal(t, "-A", item.Nested.Token.Code)
	assert.Equal(t, []byte(nested), item.Nested.Raw)
	require.Len(t, item.Nested.Items, 1)
	nestedTuple, ok := item.Nested.Items[0].(TupleItem)
	require.True(t, ok)
	idxTok, ok := nestedTuple.Slots[0].(indexer.Token)
	require.True(t, ok)
	assert.Equal(t, 2, idxTok.Index)
}

func TestDispatch_ShapeComposite_RejectsDisallowedNestedCode(t *testing.T) {
	var p1, p2, p3 [32]byte
	lead := matterText('E', p1) + matterText('E', p2) + matterText('E', p3)
	// "-C" is a valid counter but not in -F's NestedSigerCodes.
	nested := counterHeader("-C", 1, 2) + matterText('E', p1) + matterText('E', p2)
	buf := counterHeader("-F", 1, 2) + lead + nested

	_, err := Dispatch([]byte(buf), 0, 1, codes.DomainText, StrictMode, nil)
	require.Error(t, err)
}

func TestDispatch_ShapeWrapper(t *testing.T) {
	inner := counterHeader("-N", 1, 2) + "AAAA"
	buf := counterHeader("-V", 2, 2) + inner

	g, err := Dispatch([]byte(buf), 0, 1, codes.DomainText, StrictMode, nil)
	require.NoError(t, err)
	assert.Equal(t, "-V", g.Token.Code)
	assert.Equal(t, len(buf), g.Consumed)
	assert.Equal(t, []byte(buf), g.Raw)
	require.Len(t, g.Items, 1)

	inG, ok := g.Items[0].(Group)
	require.True(t, ok)
	assert.Equal(t, "-N", inG.Token.Code)
	assert.Equal(t, []byte(inner), inG.Raw)
}

func TestDispatch_ShapeGenus(t *testing.T) {
	buf := counterHeader("--", 0, 3)

	g, err := Dispatch([]byte(buf), 0, 1, codes.DomainText, StrictMode, nil)
	require.NoError(t, err)
	assert.Equal(t, "--", g.Token.Code)
	assert.Equal(t, 5, g.Consumed)
	assert.Nil(t, g.Items)
}

func TestDispatch_StrictModeRejectsUnknownUnderActiveMajor(t *testing.T) {
	buf := counterHeader("-Z", 1, 2) + counterHeader("-N", 0, 2)

	_, err := Dispatch([]byte(buf), 0, 1, codes.DomainText, StrictMode, nil)
	require.Error(t, err)
}

func TestDispatch_CompatModeFallsBackAndRecords(t *testing.T) {
	nested := counterHeader("-N", 0, 2)
	buf := counterHeader("-Z", 1, 2) + nested

	tracker := fallback.NewTracker()
	g, err := Dispatch([]byte(buf), 0, 1, codes.DomainText, CompatMode, tracker)
	require.NoError(t, err)
	assert.Equal(t, "-Z", g.Token.Code)

	events := tracker.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "-Z", events[0].Code)
	assert.Equal(t, 1, events[0].From)
	assert.Equal(t, 2, events[0].To)
	assert.Equal(t, 1, events[0].Count)
}

func TestDispatch_RawBytesReconstructConsumedStream(t *testing.T) {
	first := counterHeader("-N", 2, 2) + strings.Repeat("A", 8)
	second := counterHeader("--", 0, 3)
	buf := first + second

	g1, err := Dispatch([]byte(buf), 0, 1, codes.DomainText, StrictMode, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte(first), g1.Raw)

	g2, err := Dispatch([]byte(buf)[g1.Consumed:], g1.Consumed, 1, codes.DomainText, StrictMode, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte(second), g2.Raw)

	reconstructed := append(append([]byte{}, g1.Raw...), g2.Raw...)
	assert.Equal(t, []byte(buf), reconstructed)
}

func TestDispatch_CompatModeDeduplicatesRepeatedFallback(t *testing.T) {
	nested := counterHeader("-N", 0, 2)
	single := counterHeader("-Z", 1, 2) + nested
	buf := single + single

	tracker := fallback.NewTracker()
	g1, err := Dispatch([]byte(buf), 0, 1, codes.DomainText, CompatMode, tracker)
	require.NoError(t, err)

	_, err = Dispatch([]byte(buf)[g1.Consumed:], g1.Consumed, 1, codes.DomainText, CompatMode, tracker)
	require.NoError(t, err)

	events := tracker.Events()
	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].Count)
}
