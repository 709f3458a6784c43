package stt

import (
	"context"
	"io"
)

// TranscriptionRequest holds the parameters for audio transcription.
// Audio is streamed to the backend; FileName only hints the container format.
type TranscriptionRequest struct {
	Audio    io.Reader `json:"-"`
	FileName string    `json:"file_name"`
	Language string    `json:"language,omitempty"`
	Prompt   string    `json:"prompt,omitempty"`
}

// TranscriptionResponse holds the transcription result.
type TranscriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// STTProvider is the interface for speech-to-text backends.
type STTProvider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}
