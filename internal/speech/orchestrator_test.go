package speech

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/voicebridge/internal/multimodal/tts"
)

type harness struct {
	standard *fakeProvider
	premium  *fakeProvider
	codec    *fakeCodec
	orch     *Orchestrator
}

func newHarness(capable bool) *harness {
	h := &harness{
		standard: newFakeProvider("standard"),
		premium:  newFakeProvider("premium"),
		codec:    &fakeCodec{},
	}
	h.orch = NewOrchestrator(h.standard, h.premium, NewStaticProbe(capable), NewStitcher(h.codec))
	return h
}

func TestOrchestrator_ScenarioTwoSentencesStitched(t *testing.T) {
	h := newHarness(true)

	out := h.orch.Synthesize(context.Background(), Request{Text: "Hello world. How are you?", Language: "en"})
	require.NoError(t, out.Err())

	assert.Equal(t, OutcomeSuccess, out.Kind)
	assert.Equal(t, PathSegmented, out.Path)
	assert.Equal(t, []string{"Hello world.", "How are you?"}, h.standard.Calls())
	assert.Empty(t, h.premium.Calls())

	require.Len(t, h.codec.Encoded(), 1)
	parts := splitOnGaps(h.codec.Encoded()[0])
	assert.Equal(t, []string{"standard:Hello world.", "standard:How are you?"}, parts)
	assert.Equal(t, []byte("stitched"), out.Fragment.Audio)
}

func TestOrchestrator_ScenarioSingleWordNotCapable(t *testing.T) {
	h := newHarness(false)

	out := h.orch.Synthesize(context.Background(), Request{Text: "Hello", Language: "en"})
	require.NoError(t, out.Err())

	assert.Equal(t, OutcomeSuccess, out.Kind)
	assert.Equal(t, PathSingle, out.Path)
	assert.Equal(t, []string{"Hello"}, h.standard.Calls())
	assert.Empty(t, h.codec.Encoded())
	assert.Equal(t, []byte("standard:Hello"), out.Fragment.Audio)
}

func TestOrchestrator_ScenarioPremiumUnconfigured(t *testing.T) {
	h := newHarness(true)
	h.premium.unconfigured = true

	out := h.orch.Synthesize(context.Background(), Request{Text: "Bonjour", Language: "fr", Quality: QualityPremium})
	require.NoError(t, out.Err())

	assert.Equal(t, OutcomeSuccess, out.Kind)
	assert.Nil(t, out.Reason)
	assert.Empty(t, out.Notices)
	assert.Equal(t, []string{"Bonjour"}, h.standard.Calls())
	assert.Empty(t, h.premium.Calls(), "premium must not be invoked when unconfigured")
	assert.Equal(t, "standard", out.Provider)
}

func TestOrchestrator_NilPremiumDowngrades(t *testing.T) {
	standard := newFakeProvider("standard")
	orch := NewOrchestrator(standard, nil, NewStaticProbe(false), nil)

	out := orch.Synthesize(context.Background(), Request{Text: "Hi", Language: "en", Quality: QualityPremium})
	assert.Equal(t, OutcomeSuccess, out.Kind)
	assert.False(t, orch.PremiumAvailable())
	assert.Equal(t, []string{"Hi"}, standard.Calls())
}

func TestOrchestrator_PremiumSegmented(t *testing.T) {
	h := newHarness(true)

	out := h.orch.Synthesize(context.Background(), Request{Text: "One. Two.", Language: "en", Quality: QualityPremium})
	assert.Equal(t, OutcomeSuccess, out.Kind)
	assert.Equal(t, "premium", out.Provider)
	assert.Equal(t, []string{"One.", "Two."}, h.premium.Calls())
	assert.Empty(t, h.standard.Calls())
}

func TestOrchestrator_NotCapableNeverStitches(t *testing.T) {
	h := newHarness(false)

	out := h.orch.Synthesize(context.Background(), Request{Text: "One. Two. Three.", Language: "en", Quality: QualityPremium})
	require.NoError(t, out.Err())

	assert.Equal(t, OutcomeDegraded, out.Kind)
	assert.Equal(t, PathUnstitched, out.Path)
	assert.ErrorIs(t, out.Reason, ErrEnvironmentUnavailable)
	require.Len(t, out.Notices, 1)
	assert.ErrorIs(t, out.Notices[0].Err, ErrEnvironmentUnavailable)

	// whole text, once, on the standard backend even though premium was asked for
	assert.Equal(t, []string{"One. Two. Three."}, h.standard.Calls())
	assert.Empty(t, h.premium.Calls())
	assert.Empty(t, h.codec.Encoded())
	assert.Empty(t, h.codec.decoded)
}

func TestOrchestrator_PartialSegmentFailure(t *testing.T) {
	h := newHarness(true)
	h.standard.failOn["Two."] = true

	out := h.orch.Synthesize(context.Background(), Request{Text: "One. Two. Three.", Language: "en"})
	require.NoError(t, out.Err())

	assert.Equal(t, OutcomeDegraded, out.Kind)
	assert.Equal(t, PathSegmented, out.Path)
	require.Len(t, out.Notices, 1)
	assert.Equal(t, 1, out.Notices[0].Segment)
	assert.ErrorIs(t, out.Notices[0].Err, tts.ErrProviderFailure)

	// no retry of the failed segment
	assert.Equal(t, []string{"One.", "Two.", "Three."}, h.standard.Calls())
	assert.Equal(t, []string{"standard:One.", "standard:Three."}, splitOnGaps(h.codec.Encoded()[0]))
}

func TestOrchestrator_AllSegmentsFailFallsBackToWholeText(t *testing.T) {
	h := newHarness(true)
	h.premium.failOn["One."] = true
	h.premium.failOn["Two."] = true

	out := h.orch.Synthesize(context.Background(), Request{Text: "One. Two.", Language: "en", Quality: QualityPremium})
	require.NoError(t, out.Err())

	assert.Equal(t, OutcomeDegraded, out.Kind)
	assert.Equal(t, PathFallback, out.Path)
	assert.ErrorIs(t, out.Reason, ErrNoUsableSegments)
	assert.Equal(t, []string{"One. Two."}, h.standard.Calls())
	assert.Equal(t, []byte("standard:One. Two."), out.Fragment.Audio)
	assert.Empty(t, h.codec.Encoded())
	assert.Len(t, out.Notices, 2)
}

func TestOrchestrator_NothingDecodesFallsBack(t *testing.T) {
	h := newHarness(true)
	corrupting := newFakeProvider("corrupt")
	h.orch = NewOrchestrator(h.standard, corrupting, NewStaticProbe(true), NewStitcher(h.codec))

	out := h.orch.Synthesize(context.Background(), Request{Text: "One. Two.", Language: "en", Quality: QualityPremium})
	require.NoError(t, out.Err())

	assert.Equal(t, PathFallback, out.Path)
	assert.ErrorIs(t, out.Reason, ErrNoUsableSegments)
	assert.Equal(t, []string{"One. Two."}, h.standard.Calls())
	// two decode warnings from the stitcher
	require.Len(t, out.Notices, 2)
	assert.ErrorIs(t, out.Notices[0].Err, ErrDecodeFailure)
}

func TestOrchestrator_EncodeFailureFallsBack(t *testing.T) {
	h := newHarness(true)
	h.codec.encodeErr = assert.AnError

	out := h.orch.Synthesize(context.Background(), Request{Text: "One. Two.", Language: "en"})
	require.NoError(t, out.Err())
	assert.Equal(t, PathFallback, out.Path)
	assert.Equal(t, []string{"One.", "Two.", "One. Two."}, h.standard.Calls())
}

func TestOrchestrator_PremiumSingleFailureFallsBack(t *testing.T) {
	h := newHarness(true)
	h.premium.failAll = true

	out := h.orch.Synthesize(context.Background(), Request{Text: "Hello", Language: "en", Quality: QualityPremium})
	require.NoError(t, out.Err())

	assert.Equal(t, OutcomeDegraded, out.Kind)
	assert.Equal(t, PathFallback, out.Path)
	assert.ErrorIs(t, out.Reason, tts.ErrProviderFailure)
	assert.Equal(t, []string{"Hello"}, h.premium.Calls())
	assert.Equal(t, []string{"Hello"}, h.standard.Calls())
}

func TestOrchestrator_EverythingFails(t *testing.T) {
	h := newHarness(true)
	h.standard.failAll = true

	out := h.orch.Synthesize(context.Background(), Request{Text: "One. Two.", Language: "en"})
	assert.Equal(t, OutcomeFailure, out.Kind)
	assert.Nil(t, out.Fragment)
	assert.ErrorIs(t, out.Err(), ErrSynthesisUnavailable)
	assert.ErrorIs(t, out.Err(), tts.ErrProviderFailure)
	// two segment attempts plus the final whole-text call
	assert.Equal(t, []string{"One.", "Two.", "One. Two."}, h.standard.Calls())
}

func TestOrchestrator_StandardSingleFailureIsTerminal(t *testing.T) {
	h := newHarness(true)
	h.standard.failAll = true

	out := h.orch.Synthesize(context.Background(), Request{Text: "Hello", Language: "en"})
	assert.ErrorIs(t, out.Err(), ErrSynthesisUnavailable)
	assert.Equal(t, []string{"Hello"}, h.standard.Calls(), "the same call is never retried")
}

func TestOrchestrator_WholeTextSkipsSegmentation(t *testing.T) {
	h := newHarness(true)

	out := h.orch.Synthesize(context.Background(), Request{Text: "One. Two.", Language: "en", WholeText: true})
	assert.Equal(t, OutcomeSuccess, out.Kind)
	assert.Equal(t, PathSingle, out.Path)
	assert.Equal(t, []string{"One. Two."}, h.standard.Calls())
}

func TestOrchestrator_RejectsInvalidRequests(t *testing.T) {
	h := newHarness(true)

	for _, req := range []Request{
		{Text: "   ", Language: "en"},
		{Text: "Hello", Language: "tlh"},
	} {
		out := h.orch.Synthesize(context.Background(), req)
		assert.Equal(t, OutcomeFailure, out.Kind)
		assert.ErrorIs(t, out.Err(), ErrInvalidRequest)
	}
	assert.Empty(t, h.standard.Calls())
}

func TestOrchestrator_CancelledContextDoesNotFallBack(t *testing.T) {
	h := newHarness(true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := h.orch.Synthesize(ctx, Request{Text: "One. Two.", Language: "en"})
	assert.Equal(t, OutcomeFailure, out.Kind)
	assert.ErrorIs(t, out.Err(), context.Canceled)
	assert.Empty(t, h.standard.Calls())
}

func TestParseQuality(t *testing.T) {
	q, err := ParseQuality("Premium", QualityStandard)
	require.NoError(t, err)
	assert.Equal(t, QualityPremium, q)

	q, err = ParseQuality("", QualityPremium)
	require.NoError(t, err)
	assert.Equal(t, QualityPremium, q)

	_, err = ParseQuality("lossless", QualityStandard)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
