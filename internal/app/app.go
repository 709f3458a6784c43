// Package app builds the service graph shared by the API server and the CLI.
package app

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/voicebridge/internal/cache"
	"github.com/nikhilbhutani/voicebridge/internal/config"
	"github.com/nikhilbhutani/voicebridge/internal/multimodal/stt"
	"github.com/nikhilbhutani/voicebridge/internal/multimodal/tts"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
	"github.com/nikhilbhutani/voicebridge/internal/translate"
)

// Synthesis groups the synthesis pipeline with the handles the settings and
// readiness endpoints need.
type Synthesis struct {
	Orchestrator *speech.Orchestrator
	Premium      *tts.AzureTTS
	Probe        *speech.Probe
}

func NewSynthesis(cfg config.SpeechConfig) *Synthesis {
	standard := tts.NewGoogleTTS(tts.GoogleTTSConfig{BaseURL: cfg.GoogleTTSURL})
	premium := tts.NewAzureTTS(tts.AzureTTSConfig{
		APIKey:  cfg.AzureKey,
		Region:  cfg.AzureRegion,
		BaseURL: cfg.AzureBaseURL,
	})
	probe := speech.NewProbe(cfg.FFmpegBin)
	stitcher := speech.NewStitcher(speech.NewFFmpegCodec(cfg.FFmpegBin))

	return &Synthesis{
		Orchestrator: speech.NewOrchestrator(standard, premium, probe, stitcher),
		Premium:      premium,
		Probe:        probe,
	}
}

// NewTranslator returns the Google translator, cached in redis when rdb is
// non-nil.
func NewTranslator(cfg config.TranslateConfig, rdb *redis.Client) translate.Translator {
	var tr translate.Translator = translate.NewGoogleTranslator(translate.GoogleConfig{BaseURL: cfg.BaseURL})
	if rdb == nil {
		return tr
	}
	ttl := time.Duration(cfg.CacheTTLMin) * time.Minute
	return translate.NewCachedTranslator(tr, cache.NewCache(rdb, "voicebridge:"), ttl)
}

// NewSTT returns nil when the selected backend lacks credentials.
func NewSTT(cfg config.STTConfig) stt.STTProvider {
	if !cfg.STTConfigured() {
		return nil
	}
	if cfg.Backend == "local" {
		return stt.NewLocalSTT(stt.LocalSTTConfig{BaseURL: cfg.LocalBaseURL})
	}
	return stt.NewOpenAISTT(stt.OpenAISTTConfig{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})
}
