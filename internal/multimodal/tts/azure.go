package tts

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/nikhilbhutani/voicebridge/internal/language"
)

const azureOutputFormat = "audio-24khz-48kbitrate-mono-mp3"

// Azure region names ("eastus", "westeurope") become part of the endpoint host.
var regionPattern = regexp.MustCompile(`^[a-z0-9]+$`)

// ValidateRegion rejects anything that is not a bare Azure region name.
func ValidateRegion(region string) error {
	if !regionPattern.MatchString(region) {
		return fmt.Errorf("invalid azure region %q", region)
	}
	return nil
}

// AzureTTSConfig holds configuration for the Azure Speech backend.
type AzureTTSConfig struct {
	APIKey  string
	Region  string
	BaseURL string // default: "https://<region>.tts.speech.microsoft.com"
}

// AzureTTS is the premium backend using Azure neural voices.
// Credentials may be replaced at runtime via SetCredentials.
type AzureTTS struct {
	mu         sync.RWMutex
	cfg        AzureTTSConfig
	httpClient *http.Client
}

// NewAzureTTS creates an AzureTTS. Missing credentials are allowed; the
// backend then reports itself unconfigured.
func NewAzureTTS(cfg AzureTTSConfig) *AzureTTS {
	return &AzureTTS{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (a *AzureTTS) Name() string { return "azure-speech" }

// Configured reports whether both the API key and region are set.
func (a *AzureTTS) Configured() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg.APIKey != "" && a.cfg.Region != ""
}

// Region returns the configured region, or "" when unset.
func (a *AzureTTS) Region() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg.Region
}

// SetCredentials swaps the API key and region for subsequent calls. An
// invalid region leaves the current credentials in place.
func (a *AzureTTS) SetCredentials(key, region string) error {
	if err := ValidateRegion(region); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg.APIKey = key
	a.cfg.Region = region
	return nil
}

// Synthesize renders the input with the language's neural voice as MP3.
func (a *AzureTTS) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	a.mu.RLock()
	cfg := a.cfg
	a.mu.RUnlock()

	if cfg.APIKey == "" || cfg.Region == "" {
		return nil, ErrUnconfigured
	}

	text := strings.TrimSpace(req.Input)
	if text == "" {
		return nil, fmt.Errorf("input text required")
	}

	ssml, err := buildSSML(text, language.MustLookup(req.Language))
	if err != nil {
		return nil, fmt.Errorf("build ssml: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		if err := ValidateRegion(cfg.Region); err != nil {
			return nil, err
		}
		baseURL = fmt.Sprintf("https://%s.tts.speech.microsoft.com", cfg.Region)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/cognitiveservices/v1", bytes.NewReader(ssml))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/ssml+xml")
	httpReq.Header.Set("X-Microsoft-OutputFormat", azureOutputFormat)
	httpReq.Header.Set("User-Agent", "voicebridge")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: a.Name(), Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		reason := strings.TrimSpace(string(body))
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return nil, &ProviderError{Provider: a.Name(), StatusCode: resp.StatusCode, Reason: reason}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: a.Name(), Reason: "read audio", Err: err}
	}
	if len(audio) == 0 {
		return nil, &ProviderError{Provider: a.Name(), Reason: "empty audio response"}
	}

	return &SynthesisResult{
		Audio:       audio,
		ContentType: "audio/mpeg",
	}, nil
}

func buildSSML(text string, lang language.Language) ([]byte, error) {
	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(text)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<speak version="1.0" xmlns="http://www.w3.org/2001/10/synthesis" xml:lang="%s">`, lang.Locale)
	fmt.Fprintf(&buf, `<voice name="%s">`, lang.AzureVoice)
	buf.Write(escaped.Bytes())
	buf.WriteString(`</voice></speak>`)
	return buf.Bytes(), nil
}
