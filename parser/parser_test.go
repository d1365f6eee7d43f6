package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/cesrparse/attach"
	"github.com/arloliu/cesrparse/b64"
	"github.com/arloliu/cesrparse/errs"
	"github.com/arloliu/cesrparse/internal/fallback"
)

func jsonMessage(ilk, said string) []byte {
	json := fmt.Sprintf(`{"v":"KERI10JSON000000_","t":%q,"d":%q}`, ilk, said)
	size := len(json)

	return []byte(fmt.Sprintf(`{"v":"KERI10JSON%06x_","t":%q,"d":%q}`, size, ilk, said))
}

func counterHeader(code string, count, softLen int) string {
	soft, err := b64.FromInt(int64(count), softLen)
	if err != nil {
		panic(err)
	}

	return code + soft
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

func attachTupleA(index int) []byte {
	var sig [64]byte
	for i := range sig {
		sig[i] = byte(i)
	}

	return []byte(counterHeader("-A", 1, 2) + indexerText(index, sig))
}

func TestParser_FeedThenFlushEmitsPendingFrame(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	emissions := p.Feed(jsonMessage("icp", "EAbc"))
	assert.Empty(t, emissions)

	emissions = p.Flush()
	require.Len(t, emissions, 1)
	require.NotNil(t, emissions[0].Frame)
	require.NotNil(t, emissions[0].Frame.Serder.Ilk)
	assert.Equal(t, "icp", *emissions[0].Frame.Serder.Ilk)
}

func TestParser_EmitsImmediatelyOnNextMessageBoundary(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	buf := append(jsonMessage("icp", "EAbc"), jsonMessage("rot", "EXyz")...)
	emissions := p.Feed(buf)

	require.Len(t, emissions, 1)
	require.NotNil(t, emissions[0].Frame)
	assert.Equal(t, "icp", *emissions[0].Frame.Serder.Ilk)

	emissions = p.Flush()
	require.Len(t, emissions, 1)
	assert.Equal(t, "rot", *emissions[0].Frame.Serder.Ilk)
}

func TestParser_AttachmentGroupBeforeNextMessage(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	buf := append(jsonMessage("icp", "EAbc"), attachTupleA(5)...)
	buf = append(buf, jsonMessage("rot", "EXyz")...)

	emissions := p.Feed(buf)
	require.Len(t, emissions, 1)
	frame := emissions[0].Frame
	require.NotNil(t, frame)
	assert.Equal(t, "icp", *frame.Serder.Ilk)
	require.Len(t, frame.Attachments, 1)
	assert.Equal(t, "-A", frame.Attachments[0].Token.Code)

	emissions = p.Flush()
	require.Len(t, emissions, 1)
	assert.Equal(t, "rot", *emissions[0].Frame.Serder.Ilk)
}

func TestParser_PendingFrameResumesAttachmentsAcrossFeedCalls(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	emissions := p.Feed(jsonMessage("icp", "EAbc"))
	assert.Empty(t, emissions)

	emissions = p.Feed(attachTupleA(9))
	assert.Empty(t, emissions, "attachment continuing a Pending frame should not itself emit")

	emissions = p.Flush()
	require.Len(t, emissions, 1)
	frame := emissions[0].Frame
	require.NotNil(t, frame)
	require.Len(t, frame.Attachments, 1)
	assert.Equal(t, "-A", frame.Attachments[0].Token.Code)
}

func TestParser_ChunkBoundariesDoNotAffectResult(t *testing.T) {
	whole := append(jsonMessage("icp", "EAbc"), attachTupleA(1)...)

	pA, err := New()
	require.NoError(t, err)
	emA := pA.Feed(whole)
	emA = append(emA, pA.Flush()...)

	pB, err := New()
	require.NoError(t, err)
	var emB []Emission
	for i := 0; i < len(whole); i++ {
		emB = append(emB, pB.Feed(whole[i:i+1])...)
	}
	emB = append(emB, pB.Flush()...)

	require.Len(t, emA, 1)
	require.Len(t, emB, 1)
	assert.Equal(t, emA[0].Frame.Serder.Ilk, emB[0].Frame.Serder.Ilk)
	assert.Equal(t, len(emA[0].Frame.Attachments), len(emB[0].Frame.Attachments))
}

func TestParser_FramedModeEmitsOneFramePerDrain(t *testing.T) {
	p, err := New(WithFramed(true))
	require.NoError(t, err)

	buf := append(jsonMessage("icp", "EAbc"), jsonMessage("rot", "EXyz")...)
	emissions := p.Feed(buf)

	require.Len(t, emissions, 1)
	assert.Equal(t, "icp", *emissions[0].Frame.Serder.Ilk)

	// The second message is already buffered but framed mode stopped
	// draining after the first frame; another Feed call resumes draining,
	// and since no attachments follow it becomes Pending until Flush.
	emissions = p.Feed(nil)
	assert.Empty(t, emissions)

	emissions = p.Flush()
	require.Len(t, emissions, 1)
	assert.Equal(t, "rot", *emissions[0].Frame.Serder.Ilk)
}

func TestParser_AnnotationBytesSkipped(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	buf := append([]byte{0x00, 0x00}, jsonMessage("icp", "EAbc")...)
	emissions := p.Feed(buf)
	assert.Empty(t, emissions)

	emissions = p.Flush()
	require.Len(t, emissions, 1)
	assert.Equal(t, "icp", *emissions[0].Frame.Serder.Ilk)
}

func TestParser_MalformedStreamResetsState(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = 'z'
	}

	emissions := p.Feed(buf)
	require.Len(t, emissions, 1)
	require.NotNil(t, emissions[0].Err)
	assert.ErrorIs(t, emissions[0].Err, errs.ErrVersionString)

	emissions = p.Feed(jsonMessage("icp", "EAbc"))
	assert.Empty(t, emissions)
	emissions = p.Flush()
	require.Len(t, emissions, 1)
	assert.Equal(t, "icp", *emissions[0].Frame.Serder.Ilk)
}

func TestParser_Reset(t *testing.T) {
	p, err := New()
	require.NoError(t, err)

	p.Feed(jsonMessage("icp", "EAbc"))
	p.Reset()

	emissions := p.Feed(jsonMessage("rot", "EXyz"))
	assert.Empty(t, emissions)
	emissions = p.Flush()
	require.Len(t, emissions, 1)
	assert.Equal(t, "rot", *emissions[0].Frame.Serder.Ilk)
}

func TestParser_VersionFallbackCallbackInvoked(t *testing.T) {
	var seen []fallback.Event
	p, err := New(
		WithDispatchMode(attach.CompatMode),
		WithVersionFallback(func(ev fallback.Event) { seen = append(seen, ev) }),
	)
	require.NoError(t, err)

	genus := []byte("--BAA") // sets active major to 1 via the genus/version counter
	nested := []byte(counterHeader("-N", 0, 2))
	attachZ := append([]byte(counterHeader("-Z", 1, 2)), nested...)

	buf := append(append(genus, jsonMessage("icp", "EAbc")...), attachZ...)

	emissions := p.Feed(buf)
	assert.Empty(t, emissions)

	require.Len(t, seen, 1)
	assert.Equal(t, "-Z", seen[0].Code)
	assert.Equal(t, 1, seen[0].From)
	assert.Equal(t, 2, seen[0].To)

	emissions = p.Flush()
	require.Len(t, emissions, 1)
	frame := emissions[0].Frame
	require.NotNil(t, frame)
	require.Len(t, frame.Attachments, 1)
	assert.Equal(t, "-Z", frame.Attachments[0].Token.Code)
}
