package speech

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	ErrInvalidRequest         = errors.New("invalid synthesis request")
	ErrDecodeFailure          = errors.New("audio fragment could not be decoded")
	ErrNoUsableSegments       = errors.New("no usable audio segments")
	ErrEnvironmentUnavailable = errors.New("natural phrasing unavailable: audio tool not installed")
	ErrSynthesisUnavailable   = errors.New("speech synthesis unavailable")
)

// Fragment is one piece of encoded audio. Duration is zero when unknown.
type Fragment struct {
	Audio       []byte
	ContentType string
	Duration    time.Duration
}

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	// OutcomeDegraded means audio was produced, but not along the requested path.
	OutcomeDegraded
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeFailure:
		return "failure"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Path records which route produced the audio.
type Path string

const (
	PathNone       Path = ""
	PathSingle     Path = "single"     // one call on the whole text
	PathSegmented  Path = "segmented"  // per-sentence calls, stitched
	PathUnstitched Path = "unstitched" // multi-sentence text, stitching unavailable
	PathFallback   Path = "fallback"   // final whole-text standard call
)

// Notice is a warning raised while serving a request. The orchestrator only
// collects notices; callers decide how to log or display them.
type Notice struct {
	Segment int // -1 when not tied to a segment
	Err     error
}

func (n Notice) String() string {
	if n.Segment >= 0 {
		return fmt.Sprintf("segment %d: %v", n.Segment, n.Err)
	}
	return n.Err.Error()
}

// Outcome is the result of one synthesis request.
type Outcome struct {
	Kind     OutcomeKind
	Fragment *Fragment // nil on failure
	Path     Path
	Provider string // backend that produced the final audio
	Reason   error  // why the result was degraded or failed
	Notices  []Notice
	Elapsed  time.Duration
}

// Err returns nil unless the outcome is a failure.
func (o Outcome) Err() error {
	if o.Kind != OutcomeFailure {
		return nil
	}
	return o.Reason
}

// LogNotices writes the outcome and each notice to logger.
func (o Outcome) LogNotices(logger *slog.Logger) {
	for _, n := range o.Notices {
		logger.Warn("synthesis notice", "segment", n.Segment, "error", n.Err)
	}
	attrs := []any{
		"outcome", o.Kind.String(),
		"path", string(o.Path),
		"provider", o.Provider,
		"elapsed_ms", o.Elapsed.Milliseconds(),
	}
	switch o.Kind {
	case OutcomeSuccess:
		logger.Info("speech synthesized", attrs...)
	case OutcomeDegraded:
		logger.Warn("speech synthesized with fallback", append(attrs, "reason", o.Reason)...)
	default:
		logger.Error("speech synthesis failed", append(attrs, "error", o.Reason)...)
	}
}
