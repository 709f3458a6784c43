package stt

import (
	"context"
	"fmt"
)

const defaultWhisperServerURL = "http://localhost:8178"

// LocalSTTConfig points at a self-hosted whisper.cpp server that exposes the
// OpenAI-compatible transcription route.
type LocalSTTConfig struct {
	BaseURL string // default: defaultWhisperServerURL
}

// LocalSTT transcribes on a whisper.cpp server. It speaks the same wire
// format as the hosted API, so requests go through the go-openai client
// without a key.
type LocalSTT struct {
	baseURL string
	client  *OpenAISTT
}

func NewLocalSTT(cfg LocalSTTConfig) *LocalSTT {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultWhisperServerURL
	}
	return &LocalSTT{
		baseURL: cfg.BaseURL,
		client:  NewOpenAISTT(OpenAISTTConfig{BaseURL: cfg.BaseURL}),
	}
}

func (l *LocalSTT) Name() string { return "local-whisper" }

func (l *LocalSTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	resp, err := l.client.Transcribe(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("whisper server %s: %w", l.baseURL, err)
	}
	return resp, nil
}
