package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/nikhilbhutani/voicebridge/internal/history"
	"github.com/nikhilbhutani/voicebridge/internal/language"
	"github.com/nikhilbhutani/voicebridge/internal/multimodal/stt"
	"github.com/nikhilbhutani/voicebridge/internal/speech"
	"github.com/nikhilbhutani/voicebridge/internal/storage"
	"github.com/nikhilbhutani/voicebridge/internal/translate"
)

const maxUploadBytes = 25 << 20

// Synthesizer is satisfied by *speech.Orchestrator.
type Synthesizer interface {
	Synthesize(ctx context.Context, req speech.Request) speech.Outcome
}

type SpeechHandler struct {
	synth          Synthesizer
	translator     translate.Translator
	stt            stt.STTProvider // nil disables transcription
	history        *history.Store
	store          storage.Storage // nil disables uploads
	defaultQuality speech.Quality
}

func NewSpeechHandler(synth Synthesizer, tr translate.Translator, sttProvider stt.STTProvider, hist *history.Store, store storage.Storage, defaultQuality speech.Quality) *SpeechHandler {
	return &SpeechHandler{
		synth:          synth,
		translator:     tr,
		stt:            sttProvider,
		history:        hist,
		store:          store,
		defaultQuality: defaultQuality,
	}
}

type SynthesisInfo struct {
	Outcome  string   `json:"outcome"`
	Path     string   `json:"path,omitempty"`
	Provider string   `json:"provider,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Notices  []string `json:"notices,omitempty"`
}

func synthesisInfo(o speech.Outcome) *SynthesisInfo {
	info := &SynthesisInfo{
		Outcome:  o.Kind.String(),
		Path:     string(o.Path),
		Provider: o.Provider,
	}
	if o.Reason != nil {
		info.Reason = o.Reason.Error()
	}
	for _, n := range o.Notices {
		info.Notices = append(info.Notices, n.String())
	}
	return info
}

type TranslateRequest struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Quality  string `json:"quality"`
	Enhanced *bool  `json:"enhanced"`
}

type TranslateResponse struct {
	HistoryID        string         `json:"history_id"`
	OriginalText     string         `json:"original_text"`
	TranslatedText   string         `json:"translated_text"`
	Source           string         `json:"source"`
	Target           string         `json:"target"`
	OriginalAudio    string         `json:"original_audio,omitempty"`
	TranslatedAudio  string         `json:"translated_audio,omitempty"`
	OriginalSynth    *SynthesisInfo `json:"original_synthesis,omitempty"`
	TranslatedSynth  *SynthesisInfo `json:"translated_synthesis"`
	TranslationError string         `json:"translation_error,omitempty"`
	AudioURL         string         `json:"audio_url,omitempty"`
	ProcessTime      float64        `json:"process_time"`
}

// Translate translates text and voices both the original and the translation.
func (h *SpeechHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text required")
		return
	}

	source, target, err := resolvePair(req.Source, req.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	quality, err := speech.ParseQuality(req.Quality, h.defaultQuality)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	enhanced := enhancedOrDefault(req.Enhanced)

	start := time.Now()
	ctx := r.Context()

	translated, translationErr := h.translateOrKeep(ctx, req.Text, source, target)

	original := h.synthesize(ctx, req.Text, source, quality, enhanced)
	if ctx.Err() != nil {
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}
	result := h.synthesize(ctx, translated, target, quality, enhanced)
	if err := result.Err(); err != nil {
		writeSynthesisError(w, err, translated)
		return
	}

	resp := TranslateResponse{
		OriginalText:     req.Text,
		TranslatedText:   translated,
		Source:           source,
		Target:           target,
		TranslatedAudio:  base64.StdEncoding.EncodeToString(result.Fragment.Audio),
		OriginalSynth:    synthesisInfo(original),
		TranslatedSynth:  synthesisInfo(result),
		TranslationError: translationErr,
	}
	if original.Fragment != nil {
		resp.OriginalAudio = base64.StdEncoding.EncodeToString(original.Fragment.Audio)
	}
	resp.AudioURL = h.upload(ctx, target, result.Fragment)
	resp.ProcessTime = seconds(time.Since(start))

	entry := h.history.Append(history.Entry{
		OriginalText:     req.Text,
		TranslatedText:   translated,
		SourceLang:       source,
		TargetLang:       target,
		Type:             history.TypeText,
		Quality:          quality.String(),
		EnhancedVoice:    enhanced,
		Outcome:          result.Kind.String(),
		Path:             string(result.Path),
		ProcessTime:      resp.ProcessTime,
		TranslationError: translationErr,
		AudioURL:         resp.AudioURL,
	})
	resp.HistoryID = entry.ID.String()

	writeJSON(w, http.StatusOK, resp)
}

type TranscribeResponse struct {
	HistoryID        string         `json:"history_id"`
	TranscribedText  string         `json:"transcribed_text"`
	TranslatedText   string         `json:"translated_text"`
	Source           string         `json:"source"`
	Target           string         `json:"target"`
	TranslatedAudio  string         `json:"translated_audio"`
	TranslatedSynth  *SynthesisInfo `json:"translated_synthesis"`
	TranslationError string         `json:"translation_error,omitempty"`
	AudioURL         string         `json:"audio_url,omitempty"`
	ProcessTime      float64        `json:"process_time"`
}

// Transcribe accepts a multipart upload ("file"), transcribes it, then
// translates and voices the transcript.
func (h *SpeechHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if h.stt == nil {
		writeError(w, http.StatusServiceUnavailable, "transcription is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "audio file required")
		return
	}
	defer file.Close()

	source, target, err := resolvePair(r.FormValue("source"), r.FormValue("target"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	quality, err := speech.ParseQuality(r.FormValue("quality"), h.defaultQuality)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	enhanced := true
	if v := r.FormValue("enhanced"); v != "" {
		enhanced = v == "true" || v == "1" || v == "on"
	}

	start := time.Now()
	ctx := r.Context()

	transcript, err := h.stt.Transcribe(ctx, stt.TranscriptionRequest{
		Audio:    file,
		FileName: header.Filename,
		Language: source,
	})
	if err != nil {
		slog.Error("transcription failed", "provider", h.stt.Name(), "error", err)
		writeError(w, http.StatusBadGateway, "transcription failed: "+err.Error())
		return
	}
	if transcript.Text == "" {
		writeError(w, http.StatusUnprocessableEntity, "no speech recognized")
		return
	}

	translated, translationErr := h.translateOrKeep(ctx, transcript.Text, source, target)

	result := h.synthesize(ctx, translated, target, quality, enhanced)
	if err := result.Err(); err != nil {
		writeSynthesisError(w, err, translated)
		return
	}

	resp := TranscribeResponse{
		TranscribedText:  transcript.Text,
		TranslatedText:   translated,
		Source:           source,
		Target:           target,
		TranslatedAudio:  base64.StdEncoding.EncodeToString(result.Fragment.Audio),
		TranslatedSynth:  synthesisInfo(result),
		TranslationError: translationErr,
	}
	resp.AudioURL = h.upload(ctx, target, result.Fragment)
	resp.ProcessTime = seconds(time.Since(start))

	entry := h.history.Append(history.Entry{
		OriginalText:     transcript.Text,
		TranslatedText:   translated,
		SourceLang:       source,
		TargetLang:       target,
		Type:             history.TypeSpeech,
		Quality:          quality.String(),
		EnhancedVoice:    enhanced,
		Outcome:          result.Kind.String(),
		Path:             string(result.Path),
		ProcessTime:      resp.ProcessTime,
		TranslationError: translationErr,
		AudioURL:         resp.AudioURL,
	})
	resp.HistoryID = entry.ID.String()

	writeJSON(w, http.StatusOK, resp)
}

type SpeakRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Quality  string `json:"quality"`
	Enhanced *bool  `json:"enhanced"`
}

// Speak returns the synthesized audio as the raw response body.
func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req SpeakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	quality, err := speech.ParseQuality(req.Quality, h.defaultQuality)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Language == "" {
		req.Language = language.Default
	}

	out := h.synthesize(r.Context(), req.Text, req.Language, quality, enhancedOrDefault(req.Enhanced))
	if err := out.Err(); err != nil {
		writeSynthesisError(w, err, "")
		return
	}

	w.Header().Set("Content-Type", out.Fragment.ContentType)
	w.Header().Set("X-Synthesis-Outcome", out.Kind.String())
	w.Header().Set("X-Synthesis-Path", string(out.Path))
	w.Header().Set("X-Synthesis-Provider", out.Provider)
	w.WriteHeader(http.StatusOK)
	w.Write(out.Fragment.Audio)
}

func (h *SpeechHandler) synthesize(ctx context.Context, text, lang string, q speech.Quality, enhanced bool) speech.Outcome {
	out := h.synth.Synthesize(ctx, speech.Request{
		Text:      text,
		Language:  lang,
		Quality:   q,
		WholeText: !enhanced,
	})
	out.LogNotices(slog.Default().With("language", lang))
	return out
}

// translateOrKeep falls back to the untranslated text so the caller still
// gets audio; the error is reported alongside the result.
func (h *SpeechHandler) translateOrKeep(ctx context.Context, text, source, target string) (string, string) {
	out, err := h.translator.Translate(ctx, text, source, target)
	if err != nil {
		slog.Warn("translation failed, keeping original text", "source", source, "target", target, "error", err)
		return text, err.Error()
	}
	if strings.TrimSpace(out) == "" {
		return text, "translation returned no text"
	}
	return out, ""
}

func (h *SpeechHandler) upload(ctx context.Context, lang string, f *speech.Fragment) string {
	if h.store == nil || f == nil {
		return ""
	}
	url, err := h.store.Upload(ctx, storage.AudioKey(lang, time.Now()), f.Audio, f.ContentType)
	if err != nil {
		slog.Warn("audio upload failed", "error", err)
		return ""
	}
	return url
}

func resolvePair(source, target string) (string, string, error) {
	if source == "" {
		source = language.Default
	}
	src, ok := language.Lookup(source)
	if !ok {
		return "", "", fmt.Errorf("unsupported source language %q", source)
	}
	dst, ok := language.Lookup(target)
	if !ok {
		return "", "", fmt.Errorf("unsupported target language %q", target)
	}
	return src.Code, dst.Code, nil
}

func enhancedOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

func writeSynthesisError(w http.ResponseWriter, err error, translated string) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, speech.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	body := map[string]string{"error": err.Error()}
	if translated != "" {
		body["translated_text"] = translated
	}
	writeJSON(w, status, body)
}

func seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
