package speech

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nikhilbhutani/voicebridge/internal/multimodal/tts"
)

// fakeProvider records every call and fails inputs listed in failOn.
type fakeProvider struct {
	name         string
	unconfigured bool
	failAll      bool
	failOn       map[string]bool

	mu    sync.Mutex
	calls []string
}

func newFakeProvider(name string) *fakeProvider {
	return &fakeProvider{name: name, failOn: map[string]bool{}}
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Configured() bool { return !f.unconfigured }

func (f *fakeProvider) Synthesize(ctx context.Context, req tts.SynthesisRequest) (*tts.SynthesisResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.Input)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.unconfigured {
		return nil, tts.ErrUnconfigured
	}
	if f.failAll || f.failOn[req.Input] {
		return nil, &tts.ProviderError{Provider: f.name, StatusCode: 503, Reason: "unavailable"}
	}
	return &tts.SynthesisResult{Audio: []byte(f.name + ":" + req.Input), ContentType: "audio/mpeg"}, nil
}

func (f *fakeProvider) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeCodec "decodes" by returning the audio bytes unchanged and rejects
// anything containing "corrupt". Encode records the PCM it was given.
type fakeCodec struct {
	encodeErr error

	mu      sync.Mutex
	decoded [][]byte
	encoded [][]byte
}

func (c *fakeCodec) Decode(ctx context.Context, audio []byte) ([]byte, error) {
	if bytes.Contains(audio, []byte("corrupt")) {
		return nil, errors.New("invalid data found when processing input")
	}
	c.mu.Lock()
	c.decoded = append(c.decoded, audio)
	c.mu.Unlock()
	return audio, nil
}

func (c *fakeCodec) Encode(ctx context.Context, pcm []byte) (*Fragment, error) {
	if c.encodeErr != nil {
		return nil, c.encodeErr
	}
	c.mu.Lock()
	c.encoded = append(c.encoded, append([]byte(nil), pcm...))
	c.mu.Unlock()
	return &Fragment{Audio: []byte("stitched"), ContentType: "audio/mpeg"}, nil
}

func (c *fakeCodec) Encoded() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.encoded
}

// splitOnGaps cuts pcm at every run of exactly one gap of silence.
func splitOnGaps(pcm []byte) []string {
	gap := string(make([]byte, pcmBytes(GapDuration)))
	return strings.Split(string(pcm), gap)
}
