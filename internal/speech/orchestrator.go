package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikhilbhutani/voicebridge/internal/language"
	"github.com/nikhilbhutani/voicebridge/internal/multimodal/tts"
)

type Quality int

const (
	QualityStandard Quality = iota
	QualityPremium
)

func (q Quality) String() string {
	if q == QualityPremium {
		return "premium"
	}
	return "standard"
}

// ParseQuality accepts "standard" or "premium"; empty means fallback.
func ParseQuality(s string, fallback Quality) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return fallback, nil
	case "standard":
		return QualityStandard, nil
	case "premium":
		return QualityPremium, nil
	default:
		return fallback, fmt.Errorf("%w: unknown quality %q", ErrInvalidRequest, s)
	}
}

// Request is one synthesis job.
type Request struct {
	Text     string
	Language string
	Quality  Quality
	// WholeText skips sentence segmentation and synthesizes in one call.
	WholeText bool
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: text is empty", ErrInvalidRequest)
	}
	if err := language.Validate(r.Language); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Orchestrator picks a synthesis backend and path for each request and
// falls back toward one whole-text standard call whenever something fails.
// It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	standard tts.TTSProvider
	premium  tts.TTSProvider
	probe    *Probe
	stitcher *Stitcher
}

// NewOrchestrator wires the backends. premium may be nil.
func NewOrchestrator(standard, premium tts.TTSProvider, probe *Probe, stitcher *Stitcher) *Orchestrator {
	return &Orchestrator{
		standard: standard,
		premium:  premium,
		probe:    probe,
		stitcher: stitcher,
	}
}

// PremiumAvailable reports whether premium requests will reach the premium backend.
func (o *Orchestrator) PremiumAvailable() bool {
	if o.premium == nil {
		return false
	}
	if c, ok := o.premium.(tts.Configurable); ok {
		return c.Configured()
	}
	return true
}

// Synthesize runs the request to completion. The returned outcome carries
// audio unless every path, including the final standard call, failed.
func (o *Orchestrator) Synthesize(ctx context.Context, req Request) Outcome {
	start := time.Now()
	out := o.synthesize(ctx, req)
	out.Elapsed = time.Since(start)
	return out
}

func (o *Orchestrator) synthesize(ctx context.Context, req Request) Outcome {
	if err := req.validate(); err != nil {
		return Outcome{Kind: OutcomeFailure, Reason: err}
	}
	text := strings.TrimSpace(req.Text)

	chosen := o.standard
	if req.Quality == QualityPremium && o.PremiumAvailable() {
		chosen = o.premium
	}

	var segments []string
	if !req.WholeText {
		segments = Segment(text)
	}

	if len(segments) <= 1 {
		return o.single(ctx, chosen, text, req.Language)
	}

	if o.stitcher == nil || o.probe == nil || !o.probe.Capable(ctx) {
		notices := []Notice{{Segment: -1, Err: ErrEnvironmentUnavailable}}
		return o.fallback(ctx, text, req.Language, PathUnstitched, ErrEnvironmentUnavailable, notices)
	}

	return o.segmented(ctx, chosen, text, req.Language, segments)
}

// single makes one call on the whole text with the chosen backend. A premium
// failure falls through to the standard backend.
func (o *Orchestrator) single(ctx context.Context, p tts.TTSProvider, text, lang string) Outcome {
	frag, err := o.call(ctx, p, text, lang)
	if err == nil {
		return Outcome{Kind: OutcomeSuccess, Fragment: frag, Path: PathSingle, Provider: p.Name()}
	}
	if ctx.Err() != nil {
		return cancelled(ctx, nil)
	}
	if p == o.standard {
		return Outcome{
			Kind:     OutcomeFailure,
			Path:     PathSingle,
			Provider: p.Name(),
			Reason:   fmt.Errorf("%w: %w", ErrSynthesisUnavailable, err),
		}
	}
	notices := []Notice{{Segment: -1, Err: err}}
	return o.fallback(ctx, text, lang, PathFallback, err, notices)
}

func (o *Orchestrator) segmented(ctx context.Context, p tts.TTSProvider, text, lang string, segments []string) Outcome {
	var notices []Notice
	fragments := make([]Fragment, 0, len(segments))

	for i, seg := range segments {
		if ctx.Err() != nil {
			return cancelled(ctx, notices)
		}
		frag, err := o.call(ctx, p, seg, lang)
		if err != nil {
			if ctx.Err() != nil {
				return cancelled(ctx, notices)
			}
			notices = append(notices, Notice{Segment: i, Err: err})
			continue
		}
		fragments = append(fragments, *frag)
	}

	if len(fragments) == 0 {
		return o.fallback(ctx, text, lang, PathFallback, ErrNoUsableSegments, notices)
	}

	res, err := o.stitcher.Stitch(ctx, fragments)
	if res != nil {
		notices = append(notices, res.Warnings...)
	}
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(ctx, notices)
		}
		if !errors.Is(err, ErrNoUsableSegments) {
			notices = append(notices, Notice{Segment: -1, Err: err})
		}
		return o.fallback(ctx, text, lang, PathFallback, err, notices)
	}

	out := Outcome{
		Kind:     OutcomeSuccess,
		Fragment: res.Fragment,
		Path:     PathSegmented,
		Provider: p.Name(),
		Notices:  notices,
	}
	if res.Used < len(segments) {
		out.Kind = OutcomeDegraded
		out.Reason = fmt.Errorf("%d of %d segments dropped", len(segments)-res.Used, len(segments))
	}
	return out
}

// fallback is the last resort: one whole-text call on the standard backend.
func (o *Orchestrator) fallback(ctx context.Context, text, lang string, path Path, reason error, notices []Notice) Outcome {
	if ctx.Err() != nil {
		return cancelled(ctx, notices)
	}
	frag, err := o.call(ctx, o.standard, text, lang)
	if err != nil {
		if ctx.Err() != nil {
			return cancelled(ctx, notices)
		}
		return Outcome{
			Kind:     OutcomeFailure,
			Path:     path,
			Provider: o.standard.Name(),
			Reason:   fmt.Errorf("%w: %w", ErrSynthesisUnavailable, err),
			Notices:  notices,
		}
	}
	return Outcome{
		Kind:     OutcomeDegraded,
		Fragment: frag,
		Path:     path,
		Provider: o.standard.Name(),
		Reason:   reason,
		Notices:  notices,
	}
}

func (o *Orchestrator) call(ctx context.Context, p tts.TTSProvider, text, lang string) (*Fragment, error) {
	res, err := p.Synthesize(ctx, tts.SynthesisRequest{Input: text, Language: lang})
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.Audio) == 0 {
		return nil, &tts.ProviderError{Provider: p.Name(), Reason: "empty audio"}
	}
	return &Fragment{Audio: res.Audio, ContentType: res.ContentType}, nil
}

func cancelled(ctx context.Context, notices []Notice) Outcome {
	return Outcome{Kind: OutcomeFailure, Reason: ctx.Err(), Notices: notices}
}
