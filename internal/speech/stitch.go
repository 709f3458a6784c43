package speech

import (
	"bytes"
	"context"
	"fmt"
	"time"
)

// PCM layout shared by the codec and the stitcher: signed 16-bit
// little-endian, mono.
const (
	SampleRate     = 24000
	BytesPerSample = 2

	// GapDuration is the silence inserted between consecutive fragments.
	GapDuration = 300 * time.Millisecond
)

// Codec converts encoded audio to raw PCM and back.
type Codec interface {
	Decode(ctx context.Context, audio []byte) ([]byte, error)
	Encode(ctx context.Context, pcm []byte) (*Fragment, error)
}

// StitchResult is the joined audio plus any fragments that were skipped.
type StitchResult struct {
	Fragment *Fragment
	Used     int
	Warnings []Notice
}

// Stitcher joins fragments with a fixed gap between them.
type Stitcher struct {
	codec Codec
	gap   time.Duration
}

func NewStitcher(codec Codec) *Stitcher {
	return &Stitcher{codec: codec, gap: GapDuration}
}

// Stitch decodes each fragment in order, drops the ones that fail to decode,
// and encodes the rest separated by silence. No silence follows the last
// fragment. Returns ErrNoUsableSegments when nothing decodes.
func (s *Stitcher) Stitch(ctx context.Context, fragments []Fragment) (*StitchResult, error) {
	result := &StitchResult{}
	silence := make([]byte, pcmBytes(s.gap))

	var pcm bytes.Buffer
	for i, f := range fragments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		decoded, err := s.codec.Decode(ctx, f.Audio)
		if err != nil || len(decoded) == 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if err == nil {
				err = fmt.Errorf("empty audio")
			}
			result.Warnings = append(result.Warnings, Notice{Segment: i, Err: fmt.Errorf("%w: %v", ErrDecodeFailure, err)})
			continue
		}

		if result.Used > 0 {
			pcm.Write(silence)
		}
		pcm.Write(decoded)
		result.Used++
	}

	if result.Used == 0 {
		return result, ErrNoUsableSegments
	}

	out, err := s.codec.Encode(ctx, pcm.Bytes())
	if err != nil {
		return result, fmt.Errorf("encode stitched audio: %w", err)
	}
	if out.Duration == 0 {
		out.Duration = pcmDuration(pcm.Len())
	}
	result.Fragment = out
	return result, nil
}

func pcmBytes(d time.Duration) int {
	samples := int(d * SampleRate / time.Second)
	return samples * BytesPerSample
}

func pcmDuration(n int) time.Duration {
	samples := n / BytesPerSample
	return time.Duration(samples) * time.Second / SampleRate
}
