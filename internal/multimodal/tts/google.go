package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nikhilbhutani/voicebridge/internal/language"
)

// googleMaxChars is the longest input the translate_tts endpoint accepts.
const googleMaxChars = 100

// GoogleTTSConfig holds configuration for the Google Translate TTS backend.
type GoogleTTSConfig struct {
	BaseURL string // default: "https://translate.google.com/translate_tts"
}

// GoogleTTS is the standard-quality backend. It needs no credentials.
type GoogleTTS struct {
	cfg        GoogleTTSConfig
	httpClient *http.Client
}

// NewGoogleTTS creates a GoogleTTS with sensible defaults applied.
func NewGoogleTTS(cfg GoogleTTSConfig) *GoogleTTS {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://translate.google.com/translate_tts"
	}
	return &GoogleTTS{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *GoogleTTS) Name() string { return "google-tts" }

// Synthesize fetches MP3 audio for each <=100 character chunk of the input
// and concatenates the chunks. MP3 frames are self-delimiting, so the joined
// bytes play back as one stream.
func (g *GoogleTTS) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	text := strings.TrimSpace(req.Input)
	if text == "" {
		return nil, fmt.Errorf("input text required")
	}
	lang := language.MustLookup(req.Language)

	chunks := chunkText(text, googleMaxChars)
	var audio bytes.Buffer
	for i, chunk := range chunks {
		data, err := g.fetch(ctx, chunk, lang.GoogleCode, i, len(chunks))
		if err != nil {
			return nil, err
		}
		audio.Write(data)
	}

	return &SynthesisResult{
		Audio:       audio.Bytes(),
		ContentType: "audio/mpeg",
	}, nil
}

func (g *GoogleTTS) fetch(ctx context.Context, chunk, lang string, idx, total int) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", chunk)
	q.Set("tl", lang)
	q.Set("client", "tw-ob")
	q.Set("ttsspeed", "1")
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) voicebridge")
	httpReq.Header.Set("Referer", "https://translate.google.com/")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: g.Name(), Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ProviderError{Provider: g.Name(), StatusCode: resp.StatusCode, Reason: strings.TrimSpace(string(body))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: g.Name(), Reason: "read audio", Err: err}
	}
	if len(data) == 0 {
		return nil, &ProviderError{Provider: g.Name(), Reason: "empty audio response"}
	}
	return data, nil
}

// chunkText splits text into pieces of at most max runes, breaking on
// whitespace where possible. Words longer than max are cut.
func chunkText(text string, max int) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)
		for wordLen > max {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:max]))
			word = string(runes[max:])
			wordLen -= max
		}
		if wordLen == 0 {
			continue
		}
		if curLen > 0 && curLen+1+wordLen > max {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(word)
		curLen += wordLen
	}
	flush()
	return chunks
}
