package tts

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnconfigured means the backend lacks credentials. It is a state, not
	// a runtime failure: callers downgrade instead of surfacing it.
	ErrUnconfigured = errors.New("tts backend not configured")

	// ErrProviderFailure is matched by every *ProviderError.
	ErrProviderFailure = errors.New("tts provider failure")
)

// SynthesisRequest holds the parameters for text-to-speech generation.
type SynthesisRequest struct {
	Input    string `json:"input"`
	Language string `json:"language"`
}

// SynthesisResult holds the generated audio and its content type.
type SynthesisResult struct {
	Audio       []byte
	ContentType string
}

// TTSProvider is the interface for text-to-speech backends.
type TTSProvider interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
	Name() string
}

// Configurable is implemented by backends that need credentials.
type Configurable interface {
	Configured() bool
}

// ProviderError is a remote call that was rejected or errored.
type ProviderError struct {
	Provider   string
	StatusCode int // 0 for transport errors
	Reason     string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderFailure
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
