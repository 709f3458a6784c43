// Package translate wraps the machine translation service.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nikhilbhutani/voicebridge/internal/language"
)

// Translator turns text into the target language. An empty source means
// auto-detect.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// GoogleConfig holds configuration for the Google translate backend.
type GoogleConfig struct {
	BaseURL string // default: "https://translate.googleapis.com"
}

// GoogleTranslator calls the keyless gtx endpoint used by the web widget.
type GoogleTranslator struct {
	cfg        GoogleConfig
	httpClient *http.Client
}

func NewGoogleTranslator(cfg GoogleConfig) *GoogleTranslator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://translate.googleapis.com"
	}
	return &GoogleTranslator{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	tl, ok := language.Lookup(target)
	if !ok {
		return "", fmt.Errorf("unsupported target language %q", target)
	}
	sl := "auto"
	if l, ok := language.Lookup(source); ok {
		sl = l.GoogleCode
	}
	if sl == tl.GoogleCode {
		return text, nil
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", sl)
	q.Set("tl", tl.GoogleCode)
	q.Set("dt", "t")
	q.Set("q", text)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"/translate_a/single?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return parseGTX(body)
}

// parseGTX joins the translated sentence chunks of a gtx response, whose
// first element is a list of [translated, original, ...] tuples.
func parseGTX(body []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(top) == 0 {
		return "", fmt.Errorf("parse response: empty payload")
	}

	var sentences [][]json.RawMessage
	if err := json.Unmarshal(top[0], &sentences); err != nil {
		return "", fmt.Errorf("parse sentences: %w", err)
	}

	var sb strings.Builder
	for _, s := range sentences {
		if len(s) == 0 {
			continue
		}
		var chunk string
		if err := json.Unmarshal(s[0], &chunk); err != nil {
			continue
		}
		sb.WriteString(chunk)
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("parse response: no translation")
	}
	return sb.String(), nil
}
